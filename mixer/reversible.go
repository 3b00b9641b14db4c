package mixer

type Direction uint8

const (
	MOTOR_DIRECTION_FORWARD Direction = iota
	MOTOR_DIRECTION_BACKWARD
)

func (d Direction) String() string {
	if d == MOTOR_DIRECTION_BACKWARD {
		return "BACKWARD"
	}
	return "FORWARD"
}

// ReversibleThrottle tracks which way 3D motors are spinning. The direction
// only flips once the stick leaves the deadband on the other side, so a stick
// wandering inside the deadband never flips it.
type ReversibleThrottle struct {
	enabled   bool
	motor     ActuatorRange
	config    ReversibleConfig
	direction Direction
}

func NewReversibleThrottle(enabled bool, motor ActuatorRange, config ReversibleConfig) *ReversibleThrottle {
	return &ReversibleThrottle{
		enabled:   enabled,
		motor:     motor,
		config:    config,
		direction: MOTOR_DIRECTION_FORWARD,
	}
}

func (r *ReversibleThrottle) Enabled() bool {
	return r.enabled
}

func (r *ReversibleThrottle) Direction() Direction {
	return r.direction
}

func (r *ReversibleThrottle) Neutral() float64 {
	return float64(r.config.Neutral)
}

// Update applies the throttle stick to the direction state
func (r *ReversibleThrottle) Update(throttle float64) Direction {
	if !r.enabled {
		return r.direction
	}
	switch r.direction {
	case MOTOR_DIRECTION_FORWARD:
		if throttle < float64(r.config.DeadbandLow) {
			r.setDirection(MOTOR_DIRECTION_BACKWARD)
		}
	case MOTOR_DIRECTION_BACKWARD:
		if throttle > float64(r.config.DeadbandHigh) {
			r.setDirection(MOTOR_DIRECTION_FORWARD)
		}
	}
	return r.direction
}

// ForceForward is used on arming so the craft never arms spinning backward
func (r *ReversibleThrottle) ForceForward() {
	r.setDirection(MOTOR_DIRECTION_FORWARD)
}

func (r *ReversibleThrottle) setDirection(direction Direction) {
	if direction != r.direction {
		Logger.Infof("Reversible motors now %v", direction)
	}
	r.direction = direction
}

// Range is the throttle band for the current direction
func (r *ReversibleThrottle) Range() (float64, float64) {
	if !r.enabled {
		return r.motor.Center, r.motor.Max
	}
	if r.direction == MOTOR_DIRECTION_BACKWARD {
		return r.motor.Min, float64(r.config.DeadbandLow)
	}
	return float64(r.config.DeadbandHigh), r.motor.Max
}

// reconfigure keeps the direction across a configuration reload
func (r *ReversibleThrottle) reconfigure(enabled bool, motor ActuatorRange, config ReversibleConfig) {
	r.enabled = enabled
	r.motor = motor
	r.config = config
	if !enabled {
		r.direction = MOTOR_DIRECTION_FORWARD
	}
}
