package mixer

import (
	"math"
	"time"
)

type AutotrimState uint8

const (
	AUTOTRIM_IDLE AutotrimState = iota
	AUTOTRIM_COLLECTING
	AUTOTRIM_SAVE_PENDING
	AUTOTRIM_DONE
)

var autotrimStateNames = []string{"IDLE", "COLLECTING", "SAVE_PENDING", "DONE"}

func (s AutotrimState) String() string {
	return nameOf(autotrimStateNames, int(s))
}

const (
	SERVO_AUTOTRIM_TIMER = 2 * time.Second

	SERVO_AUTOTRIM_FILTER_CUTOFF   = 1.0 // Hz
	SERVO_AUTOTRIM_CENTER_MIN      = 1300
	SERVO_AUTOTRIM_CENTER_MAX      = 1700
	SERVO_AUTOTRIM_UPDATE_SIZE     = 5
	SERVO_AUTOTRIM_ATTITUDE_LIMIT  = 50 // decidegrees
	SERVO_AUTOTRIM_UPDATE_INTERVAL = 500 * time.Millisecond
)

const (
	FD_ROLL  = 0
	FD_PITCH = 1
	FD_YAW   = 2
)

// Integrator is the rate controller's I-term store. Autotrim moves trim out
// of the I-terms and into the servo centers.
type Integrator interface {
	AxisIterm(axis int) float64
	ReduceIterm(axis int, delta float64)
	ResetIterms()
}

type nopIntegrator struct{}

func (nopIntegrator) AxisIterm(axis int) float64 {
	return 0
}

func (nopIntegrator) ReduceIterm(axis int, delta float64) {
}

func (nopIntegrator) ResetIterms() {
}

type AutotrimInput struct {
	Armed           bool
	ModeActive      bool
	FixedWing       bool
	ManualMode      bool
	SticksDeflected bool
	HeadingValid    bool
	// Gyro rotation rate magnitude, radians per second
	RotationRate float64
	// Commanded rotation rate magnitude, degrees per second
	TargetRate float64
	Attitude   Attitude
	// Board level trim on the pitch axis, degrees
	LevelTrim float64
	DT        time.Duration
}

type AutotrimPolicy interface {
	Process(in *AutotrimInput, servos *ServoMixer, cond ConditionEvaluator, integrator Integrator)
	State() AutotrimState
}

// AutotrimBlocksArming is the prearm check: arming with the autotrim switch
// already on would start collecting on the ground
func AutotrimBlocksArming(modeActive bool) bool {
	return modeActive
}

// Only surfaces driven by the stabilized axes are trimmed
func trimmedRule(rule ServoRule) bool {
	return rule.Target >= SERVO_ELEVATOR && rule.Target <= SERVO_RUDDER && rule.Input.Stabilized()
}

// DiscreteAutotrim averages each trimmed servo for a couple of seconds while
// the pilot holds the autotrim switch, then adopts the averages as centers.
// The new centers are saved on the next disarm, or rolled back if the switch
// is released first.
type DiscreteAutotrim struct {
	state       AutotrimState
	elapsed     time.Duration
	backup      [MAX_SUPPORTED_SERVOS]int16
	accumulator [MAX_SUPPORTED_SERVOS]int64
	samples     [MAX_SUPPORTED_SERVOS]int32
	store       TrimStore
}

func NewDiscreteAutotrim(store TrimStore) *DiscreteAutotrim {
	if store == nil {
		store = NopTrimStore{}
	}
	return &DiscreteAutotrim{store: store}
}

func (a *DiscreteAutotrim) State() AutotrimState {
	return a.state
}

func (a *DiscreteAutotrim) setState(state AutotrimState) {
	if state != a.state {
		Logger.Infof("Autotrim %v -> %v", a.state, state)
	}
	a.state = state
}

func (a *DiscreteAutotrim) Process(in *AutotrimInput, servos *ServoMixer, cond ConditionEvaluator, integrator Integrator) {
	if !in.FixedWing {
		return
	}
	if integrator == nil {
		integrator = nopIntegrator{}
	}
	rules := servos.Rules()

	if !in.ModeActive {
		if a.state == AUTOTRIM_SAVE_PENDING {
			for i := 0; i < servos.ServoCount(); i++ {
				servos.SetMiddle(i, a.backup[i])
			}
			Logger.Info("Autotrim cancelled, restored servo centers")
		}
		a.setState(AUTOTRIM_IDLE)
		return
	}

	switch a.state {
	case AUTOTRIM_IDLE:
		if !in.Armed {
			break
		}
		for i := 0; i < servos.ServoCount(); i++ {
			a.backup[i] = servos.Params(i).Middle
			a.accumulator[i] = 0
			a.samples[i] = 0
		}
		a.elapsed = 0
		a.setState(AUTOTRIM_COLLECTING)
		fallthrough

	case AUTOTRIM_COLLECTING:
		if !in.Armed {
			a.setState(AUTOTRIM_IDLE)
			break
		}
		for _, rule := range rules {
			if trimmedRule(rule) && int(rule.Target) < servos.ServoCount() {
				a.accumulator[rule.Target] += int64(servos.Servo(int(rule.Target)))
				a.samples[rule.Target]++
			}
		}
		a.elapsed += in.DT
		if a.elapsed > SERVO_AUTOTRIM_TIMER {
			for i := 0; i < servos.ServoCount(); i++ {
				if a.samples[i] > 0 {
					servos.SetMiddle(i, int16(a.accumulator[i]/int64(a.samples[i])))
				}
			}
			a.setState(AUTOTRIM_SAVE_PENDING)
			integrator.ResetIterms()
		}

	case AUTOTRIM_SAVE_PENDING:
		if !in.Armed {
			if err := a.store.SaveServoCenters(servos.Middles()); err != nil {
				Logger.Errorf("Unable to save servo centers: %v", err)
			}
			a.setState(AUTOTRIM_DONE)
		}

	case AUTOTRIM_DONE:
	}
}

type pt1Filter struct {
	state float64
}

func (f *pt1Filter) apply(input float64, cutoffHz float64, dT time.Duration) float64 {
	seconds := dT.Seconds()
	if seconds <= 0 {
		return f.state
	}
	rc := 1 / (2 * math.Pi * cutoffHz)
	f.state += seconds / (rc + seconds) * (input - f.state)
	return f.state
}

// ContinuousAutotrim nudges servo centers a few units at a time whenever the
// plane is flying straight and level and the I-term is holding a correction
type ContinuousAutotrim struct {
	state         AutotrimState
	sinceUpdate   time.Duration
	rotationRate  pt1Filter
	targetRate    pt1Filter
	rotationLimit float64
	updates       uint32
	store         TrimStore
}

// rotationLimit is in degrees per second
func NewContinuousAutotrim(rotationLimit float64, store TrimStore) *ContinuousAutotrim {
	if store == nil {
		store = NopTrimStore{}
	}
	return &ContinuousAutotrim{rotationLimit: rotationLimit, store: store}
}

func (a *ContinuousAutotrim) State() AutotrimState {
	return a.state
}

// Updates counts the checks that found the plane trimmable
func (a *ContinuousAutotrim) Updates() uint32 {
	return a.updates
}

// Trimmable is the straight-and-level check, also shown on the sensor dump
func (a *ContinuousAutotrim) Trimmable(in *AutotrimInput, rotationRate, targetRate float64) bool {
	straight := rotationRate <= degreesToRadians(a.rotationLimit)
	noRotationCommanded := targetRate <= a.rotationLimit
	level := absolute(in.Attitude.Pitch+in.LevelTrim*10) <= SERVO_AUTOTRIM_ATTITUDE_LIMIT &&
		absolute(in.Attitude.Roll) <= SERVO_AUTOTRIM_ATTITUDE_LIMIT
	return straight && noRotationCommanded && level && !in.SticksDeflected && !in.ManualMode && in.HeadingValid
}

func (a *ContinuousAutotrim) setState(state AutotrimState) {
	if state != a.state {
		Logger.Infof("Autotrim %v -> %v", a.state, state)
	}
	a.state = state
}

func (a *ContinuousAutotrim) Process(in *AutotrimInput, servos *ServoMixer, cond ConditionEvaluator, integrator Integrator) {
	if !in.FixedWing {
		return
	}
	if integrator == nil {
		integrator = nopIntegrator{}
	}
	rotationRate := a.rotationRate.apply(in.RotationRate, SERVO_AUTOTRIM_FILTER_CUTOFF, in.DT)
	targetRate := a.targetRate.apply(in.TargetRate, SERVO_AUTOTRIM_FILTER_CUTOFF, in.DT)

	if !in.Armed {
		if a.state == AUTOTRIM_COLLECTING {
			if err := a.store.SaveServoCenters(servos.Middles()); err != nil {
				Logger.Errorf("Unable to save servo centers: %v", err)
			}
			a.setState(AUTOTRIM_IDLE)
		}
		return
	}

	a.setState(AUTOTRIM_COLLECTING)
	a.sinceUpdate += in.DT
	if a.sinceUpdate <= SERVO_AUTOTRIM_UPDATE_INTERVAL {
		return
	}
	a.sinceUpdate = 0

	if !a.Trimmable(in, rotationRate, targetRate) {
		return
	}
	for _, axis := range []int{FD_ROLL, FD_PITCH} {
		iterm := integrator.AxisIterm(axis)
		if absolute(iterm) <= SERVO_AUTOTRIM_UPDATE_SIZE {
			continue
		}
		step := float64(SERVO_AUTOTRIM_UPDATE_SIZE)
		if iterm < 0 {
			step = -step
		}
		for _, rule := range servos.Rules() {
			if int(rule.Input) != axis || int(rule.Target) >= servos.ServoCount() {
				continue
			}
			if !conditionHolds(cond, rule.ConditionID()) {
				continue
			}
			params := servos.Params(int(rule.Target))
			delta := step * float64(rule.Rate) / 100 * float64(params.Rate) / 100
			middle := constrain(params.Middle+int16(delta), SERVO_AUTOTRIM_CENTER_MIN, SERVO_AUTOTRIM_CENTER_MAX)
			// The center has to stay inside the servo's own travel
			middle = constrain(middle, params.Min, params.Max)
			servos.SetMiddle(int(rule.Target), middle)
		}
		integrator.ReduceIterm(axis, step)
	}
	a.updates++
}
