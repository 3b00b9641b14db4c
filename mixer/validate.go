package mixer

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Every comparison with NaN is false, so range checks alone let it through
func notFinite(value float64) bool {
	return math.IsNaN(value) || math.IsInf(value, 0)
}

// Validate reports every problem with the configuration at once
func (c *Configuration) Validate() error {
	var err error
	add := func(format string, args ...interface{}) {
		err = multierr.Append(err, errors.Errorf(format, args...))
	}

	motor := c.Motor
	if !motor.Range().Valid() {
		add("motor range must satisfy min_command <= min_throttle <= max_throttle, got %v <= %v <= %v",
			motor.MinCommand, motor.MinThrottle, motor.MaxThrottle)
	}
	if motor.MinThrottle == motor.MaxThrottle {
		add("min_throttle and max_throttle must differ")
	}
	if notFinite(motor.ThrottleScale) || motor.ThrottleScale < 0 || motor.ThrottleScale > 1 {
		add("throttle_scale %v must be in [0, 1]", motor.ThrottleScale)
	}
	if motor.YawMotorDirection != 1 && motor.YawMotorDirection != -1 {
		add("yaw_motor_direction must be 1 or -1, got %v", motor.YawMotorDirection)
	}
	if notFinite(motor.ThrottleClippingFactor) || motor.ThrottleClippingFactor <= 0 || motor.ThrottleClippingFactor > 1 {
		add("throttle_clipping_factor %v must be in (0, 1]", motor.ThrottleClippingFactor)
	}
	if int(motor.Protocol) >= len(protocolNames) {
		add("unknown protocol %v", motor.Protocol)
	}

	if c.Features.ReversibleMotors {
		r := c.Reversible
		if !(motor.MinCommand <= r.DeadbandLow && r.DeadbandLow <= r.Neutral &&
			r.Neutral <= r.DeadbandHigh && r.DeadbandHigh <= motor.MaxThrottle) {
			add("reversible deadband must satisfy min_command <= deadband_low <= neutral <= deadband_high <= max_throttle")
		}
	}

	motorCount := c.MotorCount()
	if motorCount > MAX_SUPPORTED_MOTORS {
		add("%v motors configured, at most %v supported", motorCount, MAX_SUPPORTED_MOTORS)
	}
	for i, mix := range c.MotorMix[:motorCount] {
		if notFinite(mix.Throttle) || mix.Throttle < 0 || mix.Throttle > 1 {
			add("motor %v throttle weight %v must be in [0, 1]", i, mix.Throttle)
		}
		for _, weight := range []float64{mix.Roll, mix.Pitch, mix.Yaw} {
			if notFinite(weight) || weight < -1 || weight > 1 {
				add("motor %v weight %v must be in [-1, 1]", i, weight)
			}
		}
	}

	if len(c.Servos) > MAX_SUPPORTED_SERVOS {
		add("%v servos configured, at most %v supported", len(c.Servos), MAX_SUPPORTED_SERVOS)
	}
	for i, servo := range c.Servos {
		if !servo.Range().Valid() || servo.Min == servo.Max {
			add("servo %v must satisfy min < max and min <= middle <= max", i)
		}
		if servo.Rate < -125 || servo.Rate > 125 {
			add("servo %v rate %v must be in [-125, 125]", i, servo.Rate)
		}
	}

	ruleCount := c.ServoRuleCount()
	if ruleCount > MAX_SERVO_RULES {
		add("%v servo rules configured, at most %v supported", ruleCount, MAX_SERVO_RULES)
	}
	for i, rule := range c.ServoMix[:ruleCount] {
		if int(rule.Target) >= MAX_SUPPORTED_SERVOS {
			add("servo rule %v target %v out of range", i, rule.Target)
		}
		if rule.Input >= INPUT_SOURCE_COUNT || rule.Input.String() == "UNKNOWN" {
			add("servo rule %v has unknown input %v", i, uint8(rule.Input))
		}
		if rule.Rate < -1000 || rule.Rate > 1000 {
			add("servo rule %v rate %v must be in [-1000, 1000]", i, rule.Rate)
		}
	}

	if notFinite(c.ServoConfig.AutotrimRotationLimit) || c.ServoConfig.AutotrimRotationLimit < 1 || c.ServoConfig.AutotrimRotationLimit > 60 {
		add("autotrim_rotation_limit %v must be in [1, 60]", c.ServoConfig.AutotrimRotationLimit)
	}
	return err
}
