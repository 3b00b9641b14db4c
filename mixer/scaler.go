package mixer

import "math"

// Scaler turns motor commands in microseconds into wire values for the
// configured protocol. Every value it returns is legal for the protocol.
type Scaler struct {
	protocol   Protocol
	reversible bool
	motor      ActuatorRange
	deadband   ReversibleConfig
}

func NewScaler(config *Configuration) *Scaler {
	return &Scaler{
		protocol:   config.Motor.Protocol,
		reversible: config.Features.ReversibleMotors,
		motor:      config.Motor.Range(),
		deadband:   config.Reversible,
	}
}

func (s *Scaler) Protocol() Protocol {
	return s.protocol
}

// Limits are the smallest and largest wire values Scale can return
func (s *Scaler) Limits() (uint16, uint16) {
	if s.protocol.IsDigital() {
		return DSHOT_DISARM_COMMAND, DSHOT_MAX_THROTTLE
	}
	return roundToUint16(s.motor.Min), roundToUint16(s.motor.Max)
}

func (s *Scaler) Scale(command float64, direction Direction) uint16 {
	if math.IsNaN(command) {
		return s.stopValue()
	}
	if s.protocol.IsDigital() {
		return s.scaleDigital(command, direction)
	}
	return s.scaleLinear(command, direction)
}

// ScaleStopped is Scale for a motor that must not spin. Digital protocols
// always get the stop code, whatever the command.
func (s *Scaler) ScaleStopped(command float64, direction Direction) uint16 {
	if s.protocol.IsDigital() {
		return DSHOT_DISARM_COMMAND
	}
	return s.Scale(command, direction)
}

func (s *Scaler) stopValue() uint16 {
	if s.protocol.IsDigital() {
		return DSHOT_DISARM_COMMAND
	}
	if s.reversible {
		return s.deadband.Neutral
	}
	return roundToUint16(s.motor.Min)
}

func (s *Scaler) scaleLinear(command float64, direction Direction) uint16 {
	if !s.reversible {
		return roundToUint16(s.motor.Clamp(command))
	}
	low := float64(s.deadband.DeadbandLow)
	high := float64(s.deadband.DeadbandHigh)
	neutral := float64(s.deadband.Neutral)
	if command == neutral {
		return s.deadband.Neutral
	}
	if direction == MOTOR_DIRECTION_BACKWARD {
		if command > low {
			return s.deadband.Neutral
		}
		return roundToUint16(constrain(command, s.motor.Min, low))
	}
	if command < high {
		return s.deadband.Neutral
	}
	return roundToUint16(constrain(command, high, s.motor.Max))
}

func (s *Scaler) scaleDigital(command float64, direction Direction) uint16 {
	if !s.reversible {
		if command < s.motor.Center {
			return DSHOT_DISARM_COMMAND
		}
		value := scaleRange(command, s.motor.Center, s.motor.Max, DSHOT_MIN_THROTTLE, DSHOT_MAX_THROTTLE)
		return roundToUint16(constrain(value, DSHOT_MIN_THROTTLE, DSHOT_MAX_THROTTLE))
	}

	low := float64(s.deadband.DeadbandLow)
	high := float64(s.deadband.DeadbandHigh)
	if direction == MOTOR_DIRECTION_BACKWARD {
		if command > low {
			return DSHOT_DISARM_COMMAND
		}
		// The slowest reverse code sits at the deadband so the stick starts
		// from the middle
		value := scaleRange(command, low, s.motor.Min, DSHOT_MIN_THROTTLE, DSHOT_3D_DEADBAND_LOW)
		return roundToUint16(constrain(value, DSHOT_MIN_THROTTLE, DSHOT_3D_DEADBAND_LOW))
	}
	if command < high {
		return DSHOT_DISARM_COMMAND
	}
	value := scaleRange(command, high, s.motor.Max, DSHOT_3D_DEADBAND_HIGH, DSHOT_MAX_THROTTLE)
	return roundToUint16(constrain(value, DSHOT_3D_DEADBAND_HIGH, DSHOT_MAX_THROTTLE))
}
