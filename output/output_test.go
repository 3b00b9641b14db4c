package output

import (
	"testing"

	"github.com/pkg/errors"
)

type countingDriver struct {
	writes int
	err    error
}

func (c *countingDriver) WriteMotor(index int, value uint16) error {
	c.writes++
	return c.err
}

func (c *countingDriver) WriteServo(index int, value uint16) error {
	c.writes++
	return c.err
}

func TestMultiWritesEverywhere(t *testing.T) {
	broken := &countingDriver{err: errors.New("unplugged")}
	working := &countingDriver{}
	multi := Multi{broken, working, Nop{}}

	if err := multi.WriteServo(0, 1500); err == nil {
		t.Error("Error from broken driver lost")
	}
	if err := multi.WriteMotor(0, 1000); err == nil {
		t.Error("Error from broken driver lost")
	}
	if broken.writes != 2 || working.writes != 2 {
		t.Errorf("Bad write counts: %v %v", broken.writes, working.writes)
	}
}

func TestInitFailedKeepsDriverError(t *testing.T) {
	gpio := errors.New("/dev/gpiomem: permission denied")
	err := initFailed(gpio, "opening GPIO")
	if errors.Cause(err) != ErrPwmOutputInit {
		t.Errorf("Bad cause: %v", errors.Cause(err))
	}
	if !errors.Is(err, gpio) {
		t.Errorf("Lost driver error: %v", err)
	}
	if !errors.Is(err, ErrPwmOutputInit) {
		t.Errorf("Lost init error: %v", err)
	}
	expected := "opening GPIO: /dev/gpiomem: permission denied: PWM output initialization failed"
	if err.Error() != expected {
		t.Errorf("Bad message: %v", err)
	}
}
