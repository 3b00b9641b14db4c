package mixer

import (
	"math"
	"time"

	"github.com/bskari/go-mixer/table"
)

const (
	SERVO_GIMBAL_PITCH = 0
	SERVO_GIMBAL_ROLL  = 1
	SERVO_ELEVATOR     = 2
	SERVO_FLAPPERON_1  = 3
	SERVO_FLAPPERON_2  = 4
	SERVO_RUDDER       = 5

	GLOBAL_VARIABLE_COUNT = 8
)

// ConditionEvaluator answers whether a logic condition currently holds
type ConditionEvaluator interface {
	ConditionValue(id int) bool
}

// AlwaysTrue treats every logic condition as satisfied
type AlwaysTrue struct{}

func (AlwaysTrue) ConditionValue(id int) bool {
	return true
}

func conditionHolds(cond ConditionEvaluator, id int) bool {
	if id < 0 || cond == nil {
		return true
	}
	return cond.ConditionValue(id)
}

// Attitude is in decidegrees
type Attitude struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

type ServoInput struct {
	Armed      bool
	ManualMode bool
	PID        Axes
	// rcCommand roll, pitch and yaw, [-500, 500]
	Sticks Axes
	// Raw channel values in microseconds: roll, pitch, yaw, throttle, then CH5 on
	RcChannels []uint16
	// Motor mixer throttle command, microseconds
	Throttle        float64
	Attitude        Attitude
	CamStab         bool
	Flaperon        bool
	GlobalVariables [GLOBAL_VARIABLE_COUNT]int32
	MixerTransition bool
	// Head tracker pan, tilt and roll in [-500, 500]
	HeadTracker Axes
	// Reversible motors spinning backward on a multirotor flip the yaw input
	ReversibleYawFlip bool
}

type ServoMixer struct {
	rules      *table.Table[ServoRule]
	params     [MAX_SUPPORTED_SERVOS]ServoParams
	limiters   [MAX_SERVO_RULES]rateLimiter
	input      [INPUT_SOURCE_COUNT]float64
	mix        [MAX_SUPPORTED_SERVOS]float64
	servo      [MAX_SUPPORTED_SERVOS]int16
	count      int
	minCommand int16
	flaperon   int16
}

func NewServoMixer(config *Configuration) *ServoMixer {
	mixer := &ServoMixer{
		rules:      table.FromTerminated(config.ServoMix, MAX_SERVO_RULES, isRuleTerminator),
		minCommand: int16(config.Motor.MinCommand),
		flaperon:   config.ServoConfig.FlaperonThrowOffset,
	}
	for i := range mixer.params {
		if i < len(config.Servos) {
			mixer.params[i] = config.Servos[i]
		} else {
			mixer.params[i] = DefaultServoParams()
		}
	}
	mixer.rules.Each(func(_ int, rule ServoRule) bool {
		if int(rule.Target)+1 > mixer.count {
			mixer.count = int(rule.Target) + 1
		}
		return true
	})
	for i := 0; i < mixer.count; i++ {
		mixer.servo[i] = mixer.params[i].Middle
	}
	return mixer
}

// ServoCount is one more than the highest servo any rule drives
func (m *ServoMixer) ServoCount() int {
	return m.count
}

func (m *ServoMixer) Rules() []ServoRule {
	return m.rules.Items()
}

func (m *ServoMixer) Servo(index int) int16 {
	return m.servo[index]
}

func (m *ServoMixer) Params(index int) ServoParams {
	return m.params[index]
}

func (m *ServoMixer) SetMiddle(index int, middle int16) {
	m.params[index].Middle = middle
}

// Middles returns a copy of every servo's center
func (m *ServoMixer) Middles() []int16 {
	middles := make([]int16, m.count)
	for i := range middles {
		middles[i] = m.params[i].Middle
	}
	return middles
}

// Input is the value of one input source from the last Mix
func (m *ServoMixer) Input(source InputSource) float64 {
	if source >= INPUT_SOURCE_COUNT {
		return 0
	}
	return m.input[source]
}

func (m *ServoMixer) ResetSlew() {
	for i := range m.limiters {
		m.limiters[i].reset(0)
	}
}

func (m *ServoMixer) buildInputs(in *ServoInput) {
	for i := range m.input {
		m.input[i] = 0
	}

	stabilized := in.PID
	if in.ManualMode {
		stabilized = in.Sticks
	}
	if in.ReversibleYawFlip {
		stabilized.Yaw = -stabilized.Yaw
	}
	m.input[INPUT_STABILIZED_ROLL] = stabilized.Roll
	m.input[INPUT_STABILIZED_PITCH] = stabilized.Pitch
	m.input[INPUT_STABILIZED_YAW] = stabilized.Yaw

	m.input[INPUT_STABILIZED_ROLL_PLUS] = constrain(stabilized.Roll, 0, 1000)
	m.input[INPUT_STABILIZED_ROLL_MINUS] = constrain(stabilized.Roll, -1000, 0)
	m.input[INPUT_STABILIZED_PITCH_PLUS] = constrain(stabilized.Pitch, 0, 1000)
	m.input[INPUT_STABILIZED_PITCH_MINUS] = constrain(stabilized.Pitch, -1000, 0)
	m.input[INPUT_STABILIZED_YAW_PLUS] = constrain(stabilized.Yaw, 0, 1000)
	m.input[INPUT_STABILIZED_YAW_MINUS] = constrain(stabilized.Yaw, -1000, 0)

	if in.Flaperon {
		m.input[INPUT_FEATURE_FLAPS] = float64(m.flaperon)
	}
	if in.CamStab {
		m.input[INPUT_GIMBAL_PITCH] = scaleRange(in.Attitude.Pitch, -900, 900, -servoHalfRange, servoHalfRange)
		m.input[INPUT_GIMBAL_ROLL] = scaleRange(in.Attitude.Roll, -1800, 1800, -servoHalfRange, servoHalfRange)
	}

	m.input[INPUT_STABILIZED_THROTTLE] = in.Throttle - PWM_RANGE_MIDDLE

	for source := INPUT_RC_ROLL; source < INPUT_SOURCE_COUNT; source++ {
		channel, ok := source.RcChannel()
		if !ok {
			continue
		}
		if channel < len(in.RcChannels) {
			m.input[source] = float64(in.RcChannels[channel]) - PWM_RANGE_MIDDLE
		}
	}

	for i, value := range in.GlobalVariables {
		m.input[INPUT_GVAR_0+InputSource(i)] = constrain(float64(value), -1000, 1000)
	}

	if in.MixerTransition {
		m.input[INPUT_MIXER_TRANSITION] = servoHalfRange
	}
	m.input[INPUT_HEADTRACKER_PAN] = in.HeadTracker.Yaw
	m.input[INPUT_HEADTRACKER_TILT] = in.HeadTracker.Pitch
	m.input[INPUT_HEADTRACKER_ROLL] = in.HeadTracker.Roll
}

// Mix runs every rule and converts the result into servo microseconds
func (m *ServoMixer) Mix(in *ServoInput, cond ConditionEvaluator, dT time.Duration) {
	m.buildInputs(in)

	for i := 0; i < m.count; i++ {
		m.mix[i] = 0
	}

	m.rules.Each(func(i int, rule ServoRule) bool {
		target := int(rule.Target)
		if target >= m.count || rule.Input >= INPUT_SOURCE_COUNT {
			return true
		}
		input := 0.0
		if conditionHolds(cond, rule.ConditionID()) {
			input = m.input[rule.Input]
		}
		limited := m.limiters[i].apply(input, float64(rule.Speed)*10, dT)
		m.mix[target] += limited * float64(rule.Rate) / 100
		return true
	})

	for i := 0; i < m.count; i++ {
		params := m.params[i]
		value := m.mix[i] * float64(params.Rate) / 100
		if value > 0 {
			value *= params.ScaleMax()
		} else {
			value *= params.ScaleMin()
		}
		value += float64(params.Middle)
		m.servo[i] = int16(math.Round(constrain(value, float64(params.Min), float64(params.Max))))
	}

	if !in.Armed {
		m.rules.Each(func(_ int, rule ServoRule) bool {
			if rule.Input == INPUT_STABILIZED_THROTTLE || rule.Input == INPUT_RC_THROTTLE {
				if int(rule.Target) < m.count {
					m.servo[rule.Target] = m.minCommand
				}
			}
			return true
		})
	}
}
