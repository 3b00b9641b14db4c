package mixer

import (
	"math"

	"github.com/bskari/go-mixer/table"
)

// Axes holds roll, pitch and yaw demands. Stick and PID values are centered
// on 0 and nominally span [-500, 500].
type Axes struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

type MixInput struct {
	Armed    bool
	Failsafe bool
	// Fixed wing in manual mode mixes the sticks instead of the PID output
	ManualPassthrough bool
	PID               Axes
	Sticks            Axes
	// Throttle stick, microseconds
	Throttle              float64
	ThrottleOverride      bool
	ThrottleOverrideValue float64
	// 0 uses the configured scale
	ThrottleScale float64
	// Battery sag compensation factor from ThrottleCompensationFactor, 0 for none
	VoltageCompensation float64
}

type MotorMixer struct {
	weights         *table.Table[MotorMix]
	motor           ActuatorRange
	throttleScale   float64
	yawDirection    float64
	clippingFactor  float64
	motorStop       bool
	reversible      bool
	vbatCompensated bool
	neutral         float64

	rpyMix          [MAX_SUPPORTED_MOTORS]float64
	rpyRange        float64
	throttleRange   float64
	throttleCommand float64
	authority       float64
}

func NewMotorMixer(config *Configuration) *MotorMixer {
	return &MotorMixer{
		weights:         table.FromTerminated(config.MotorMix, MAX_SUPPORTED_MOTORS, isMotorTerminator),
		motor:           config.Motor.Range(),
		throttleScale:   config.Motor.ThrottleScale,
		yawDirection:    float64(config.Motor.YawMotorDirection),
		clippingFactor:  config.Motor.ThrottleClippingFactor,
		motorStop:       config.Features.MotorStop,
		reversible:      config.Features.ReversibleMotors,
		vbatCompensated: config.Features.ThrottleVbatCompensation,
		neutral:         float64(config.Reversible.Neutral),
		authority:       1,
	}
}

func (m *MotorMixer) Count() int {
	return m.weights.Len()
}

func (m *MotorMixer) Weights() []MotorMix {
	return m.weights.Items()
}

// DisarmedValue is what every motor gets while disarmed
func (m *MotorMixer) DisarmedValue() float64 {
	if m.reversible {
		return m.neutral
	}
	return m.motor.Min
}

// StoppedValue is what every motor gets while armed but not allowed to spin
func (m *MotorMixer) StoppedValue() float64 {
	if m.reversible {
		return m.neutral
	}
	if m.motorStop {
		return m.motor.Min
	}
	return m.motor.Center
}

// ThrottleCommand is the throttle demand from the last Mix, after scaling
// and compensation
func (m *MotorMixer) ThrottleCommand() float64 {
	return m.throttleCommand
}

// Saturation is rpy range over throttle range from the last Mix. Anything
// above 1 means attitude authority was scaled down.
func (m *MotorMixer) Saturation() float64 {
	if m.throttleRange <= 0 {
		return 0
	}
	return m.rpyRange / m.throttleRange
}

// AuthorityRatio is the fraction of the requested attitude correction that
// made it into the last Mix, measured after the per-motor clamp. A throttle
// held off-center by the clipping band loses some of the scaled correction
// on one side, so this can be below throttle range over rpy range.
func (m *MotorMixer) AuthorityRatio() float64 {
	return m.authority
}

// Mix fills out with one command per motor, in microseconds, and returns how
// many it wrote
func (m *MotorMixer) Mix(in MixInput, status MotorStatus, reversible *ReversibleThrottle, out []float64) int {
	count := m.Count()
	if len(out) < count {
		count = len(out)
	}

	input := in.PID
	if in.ManualPassthrough {
		input = in.Sticks
	}

	mixerScale := 1.0
	if reversible.Enabled() {
		mixerScale = 0.5
	}

	m.authority = 1
	rpyMin, rpyMax := 0.0, 0.0
	for i := 0; i < count; i++ {
		w := m.weights.At(i)
		m.rpyMix[i] = (input.Pitch*w.Pitch + input.Roll*w.Roll - m.yawDirection*input.Yaw*w.Yaw) * mixerScale
		if i == 0 || m.rpyMix[i] < rpyMin {
			rpyMin = m.rpyMix[i]
		}
		if i == 0 || m.rpyMix[i] > rpyMax {
			rpyMax = m.rpyMix[i]
		}
	}
	m.rpyRange = rpyMax - rpyMin

	var rangeMin, rangeMax float64
	throttleCommand := in.Throttle
	switch {
	case in.ThrottleOverride:
		rangeMin, rangeMax = m.motor.Center, m.motor.Max
		throttleCommand = constrain(in.ThrottleOverrideValue, rangeMin, rangeMax)
	case reversible.Enabled():
		rangeMin, rangeMax = reversible.Range()
		throttleCommand = constrain(in.Throttle, rangeMin, rangeMax)
	default:
		rangeMin, rangeMax = m.motor.Center, m.motor.Max
		scale := in.ThrottleScale
		if scale <= 0 {
			scale = m.throttleScale
		}
		throttleCommand = (throttleCommand-rangeMin)*scale + rangeMin
		if m.vbatCompensated && in.VoltageCompensation > 0 {
			throttleCommand = math.Min(rangeMin+(throttleCommand-rangeMin)*in.VoltageCompensation, rangeMax)
		}
	}
	m.throttleCommand = throttleCommand
	m.throttleRange = rangeMax - rangeMin

	throttleMin, throttleMax := rangeMin, rangeMax
	band := m.throttleRange * m.clippingFactor
	if m.throttleRange > 0 && m.rpyRange > m.throttleRange {
		// Not enough room for the requested correction: scale it down to fit
		// and hold the throttle near the middle
		ratio := m.throttleRange / m.rpyRange
		for i := 0; i < count; i++ {
			m.rpyMix[i] *= ratio
		}
		middle := rangeMin + m.throttleRange/2
		throttleMin = middle - band/2
		throttleMax = middle + band/2
	} else {
		throttleMin = math.Min(rangeMin+m.rpyRange/2, rangeMin+m.throttleRange/2-band/2)
		throttleMax = math.Max(rangeMax-m.rpyRange/2, throttleMin+m.throttleRange/2+band/2)
	}

	if !in.Armed {
		for i := 0; i < count; i++ {
			out[i] = m.DisarmedValue()
		}
		return count
	}

	deliveredMin, deliveredMax := 0.0, 0.0
	for i := 0; i < count; i++ {
		w := m.weights.At(i)
		throttle := constrain(throttleCommand*w.Throttle, throttleMin, throttleMax)
		command := m.rpyMix[i] + throttle
		if in.Failsafe {
			command = constrain(command, m.motor.Min, m.motor.Max)
		} else {
			command = constrain(command, rangeMin, rangeMax)
		}
		delivered := command - throttle
		if i == 0 || delivered < deliveredMin {
			deliveredMin = delivered
		}
		if i == 0 || delivered > deliveredMax {
			deliveredMax = delivered
		}
		if status != MOTOR_RUNNING {
			command = m.StoppedValue()
		}
		out[i] = command
	}
	if m.rpyRange > 0 {
		m.authority = math.Min((deliveredMax-deliveredMin)/m.rpyRange, 1)
	}
	return count
}

// ThrottleCompensationFactor boosts throttle as the battery sags. Weight 0
// disables compensation and 1 fully restores the full-battery thrust.
func ThrottleCompensationFactor(fullVoltage, sagVoltage, weight float64) float64 {
	if sagVoltage <= 0 || fullVoltage <= 0 {
		return 1
	}
	return 1 + (fullVoltage/sagVoltage-1)*constrain(weight, 0, 1)
}
