package output

import (
	"github.com/bskari/go-mixer/mixer"
	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"
)

const SERVO_HERTZ = 50

// The PWM clock runs at hertz * MULTIPLIER, so one cycle is MULTIPLIER
// ticks long. Larger values overflowed on the oscilloscope.
const MULTIPLIER = 20000

// RpioPwm drives servos and linear motor ESCs straight from the Pi's
// hardware PWM pins
type RpioPwm struct {
	servos     []*rpio.Pin
	motors     []*rpio.Pin
	motorHertz uint32
}

// NewRpioPwm claims the given BCM pins. Motors run at the protocol's update
// rate, servos always at 50 Hz. A negative pin number leaves that output
// unconnected; writes to it are dropped.
func NewRpioPwm(servoPins []int, motorPins []int, protocol mixer.Protocol) (*RpioPwm, error) {
	if protocol.IsDigital() {
		return nil, errors.Wrapf(ErrPwmOutputInit, "%v needs a DShot capable output", protocol)
	}
	if err := rpio.Open(); err != nil {
		return nil, initFailed(err, "opening GPIO")
	}

	output := &RpioPwm{motorHertz: uint32(protocol.UpdateRate())}
	for _, number := range servoPins {
		output.servos = append(output.servos, setUpPin(number, SERVO_HERTZ))
	}
	for _, number := range motorPins {
		output.motors = append(output.motors, setUpPin(number, output.motorHertz))
	}
	return output, nil
}

// Param freq should be in range 4688Hz - 19.2MHz to prevent unexpected
// behavior, which SERVO_HERTZ * MULTIPLIER satisfies
func setUpPin(number int, hertz uint32) *rpio.Pin {
	if number < 0 {
		return nil
	}
	pin := rpio.Pin(number)
	pin.Pwm()
	pin.Freq(int(hertz * MULTIPLIER))
	pin.DutyCycle(0, MULTIPLIER)
	return &pin
}

func (r *RpioPwm) WriteServo(index int, value uint16) error {
	if index < 0 || index >= len(r.servos) {
		return errBadIndex("servo", index)
	}
	if r.servos[index] == nil {
		return nil
	}
	r.servos[index].DutyCycle(getDutyCycleForUs(uint32(value), SERVO_HERTZ), MULTIPLIER)
	return nil
}

func (r *RpioPwm) WriteMotor(index int, value uint16) error {
	if index < 0 || index >= len(r.motors) {
		return errBadIndex("motor", index)
	}
	if r.motors[index] == nil {
		return nil
	}
	r.motors[index].DutyCycle(getDutyCycleForUs(uint32(value), r.motorHertz), MULTIPLIER)
	return nil
}

func (r *RpioPwm) Close() error {
	return rpio.Close()
}

// Converts a pulse width into ticks of a MULTIPLIER long cycle
func getDutyCycleForUs(targetUs uint32, hertz uint32) uint32 {
	usPerCycle := (1000 * 1000) / hertz
	if targetUs > usPerCycle {
		targetUs = usPerCycle
	}
	return targetUs * MULTIPLIER / usPerCycle
}
