package mixer

const (
	MAX_SUPPORTED_MOTORS = 12
	MAX_SUPPORTED_SERVOS = 18
	MAX_SERVO_RULES      = 48

	PWM_RANGE_MIN    = 1000
	PWM_RANGE_MAX    = 2000
	PWM_RANGE_MIDDLE = 1500

	// Servo and stick inputs are centered on 0 with this half range
	servoHalfRange = 500
)

// ActuatorRange is the legal output span of one motor or servo, in
// microseconds. For motors Center holds the idle value.
type ActuatorRange struct {
	Min    float64
	Max    float64
	Center float64
}

func (r ActuatorRange) Valid() bool {
	return r.Min <= r.Center && r.Center <= r.Max
}

// Clamp is idempotent: clamping an already clamped value returns it unchanged
func (r ActuatorRange) Clamp(value float64) float64 {
	return constrain(value, r.Min, r.Max)
}

func (r ActuatorRange) Contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

func (r ActuatorRange) Span() float64 {
	return r.Max - r.Min
}

// MotorMix is one row of the motor mixer. Throttle is in [0, 1], the rest
// in [-1, 1].
type MotorMix struct {
	Throttle float64 `toml:"throttle" yaml:"throttle"`
	Roll     float64 `toml:"roll" yaml:"roll"`
	Pitch    float64 `toml:"pitch" yaml:"pitch"`
	Yaw      float64 `toml:"yaw" yaml:"yaw"`
}

// ServoParams describe one servo output. Rate is a percentage and may be
// negative to reverse the servo.
type ServoParams struct {
	Min    int16 `toml:"min" yaml:"min"`
	Max    int16 `toml:"max" yaml:"max"`
	Middle int16 `toml:"middle" yaml:"middle"`
	Rate   int16 `toml:"rate" yaml:"rate"`
}

func DefaultServoParams() ServoParams {
	return ServoParams{
		Min:    PWM_RANGE_MIN,
		Max:    PWM_RANGE_MAX,
		Middle: PWM_RANGE_MIDDLE,
		Rate:   100,
	}
}

func (p ServoParams) Range() ActuatorRange {
	return ActuatorRange{Min: float64(p.Min), Max: float64(p.Max), Center: float64(p.Middle)}
}

// Positive excursions are multiplied by this so that +500 lands on Max
func (p ServoParams) ScaleMax() float64 {
	return float64(p.Max-p.Middle) / servoHalfRange
}

// Negative excursions are multiplied by this so that -500 lands on Min
func (p ServoParams) ScaleMin() float64 {
	return float64(p.Middle-p.Min) / servoHalfRange
}
