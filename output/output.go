// Package output writes mixer wire values to real hardware
package output

import (
	"github.com/bskari/go-mixer/mixer"
	"go.uber.org/multierr"
)

// Multi fans every write out to several drivers
type Multi []mixer.OutputDriver

func (m Multi) WriteMotor(index int, value uint16) error {
	var err error
	for _, driver := range m {
		err = multierr.Append(err, driver.WriteMotor(index, value))
	}
	return err
}

func (m Multi) WriteServo(index int, value uint16) error {
	var err error
	for _, driver := range m {
		err = multierr.Append(err, driver.WriteServo(index, value))
	}
	return err
}

// Nop discards everything. Used when running away from the hardware.
type Nop struct{}

func (Nop) WriteMotor(index int, value uint16) error {
	return nil
}

func (Nop) WriteServo(index int, value uint16) error {
	return nil
}
