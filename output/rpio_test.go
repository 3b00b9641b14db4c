package output

import (
	"testing"

	"github.com/bskari/go-mixer/mixer"
	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"
)

func TestGetDutyCycle(t *testing.T) {
	dutyLength := getDutyCycleForUs(0, SERVO_HERTZ)
	if dutyLength != 0 {
		t.Errorf("Bad dutyLength: %v", dutyLength)
	}
	dutyLength = getDutyCycleForUs(1000/SERVO_HERTZ, SERVO_HERTZ)
	if dutyLength != 20 {
		t.Errorf("Bad dutyLength: %v", dutyLength)
	}
	dutyLength = getDutyCycleForUs(1500, SERVO_HERTZ)
	if dutyLength != 1500 {
		t.Errorf("Bad servo dutyLength: %v", dutyLength)
	}
	// 400 Hz has a 2500 us cycle
	dutyLength = getDutyCycleForUs(1250, 400)
	if dutyLength != MULTIPLIER/2 {
		t.Errorf("Bad motor dutyLength: %v", dutyLength)
	}
	dutyLength = getDutyCycleForUs(3000, 400)
	if dutyLength != MULTIPLIER {
		t.Errorf("Pulse longer than the cycle not capped: %v", dutyLength)
	}
}

func TestRpioRejectsDigital(t *testing.T) {
	_, err := NewRpioPwm([]int{12}, []int{13}, mixer.PROTOCOL_DSHOT600)
	if errors.Cause(err) != ErrPwmOutputInit {
		t.Errorf("Bad error: %v", err)
	}
}

func TestRpioUnconnectedPins(t *testing.T) {
	// Pin setup needs /dev/gpiomem, so only the unconnected outputs are built
	output := &RpioPwm{
		servos:     []*rpio.Pin{setUpPin(-1, SERVO_HERTZ), nil},
		motors:     []*rpio.Pin{nil},
		motorHertz: 400,
	}
	if err := output.WriteServo(1, 1500); err != nil {
		t.Errorf("Unconnected servo write failed: %v", err)
	}
	if err := output.WriteMotor(0, 1000); err != nil {
		t.Errorf("Unconnected motor write failed: %v", err)
	}
	if err := output.WriteServo(2, 1500); err == nil {
		t.Error("Write past the last servo succeeded")
	}
}
