package output

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrPwmOutputInit means the output hardware could not be set up for the
// requested protocol
var ErrPwmOutputInit = errors.New("PWM output initialization failed")

// initError is an ErrPwmOutputInit that keeps the driver error underneath
// it. errors.Cause gives ErrPwmOutputInit, errors.Is matches either.
type initError struct {
	message string
	err     error
}

func initFailed(err error, format string, args ...interface{}) error {
	return &initError{message: fmt.Sprintf(format, args...), err: err}
}

func (e *initError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.message, e.err, ErrPwmOutputInit)
}

func (e *initError) Cause() error { return ErrPwmOutputInit }

func (e *initError) Unwrap() []error { return []error{ErrPwmOutputInit, e.err} }

func errBadIndex(kind string, index int) error {
	return errors.Errorf("no %s output %v", kind, index)
}
