package output

import (
	"io"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// Pololu Maestro commands
const (
	MAESTRO_CMD_SET_TARGET = 0x84
	MAESTRO_CMD_GET_ERRORS = 0xA1
	MAESTRO_CMD_GO_HOME    = 0xA2
	MAESTRO_AUTO_BAUD      = 0xAA
)

const (
	// Targets are in quarter microseconds
	MAESTRO_TICKS_PER_US = 4
	MAESTRO_MAX_TARGET   = 0x3FFF
	MAESTRO_CHANNELS     = 24
	MAESTRO_BAUD_RATE    = 115200
)

// Maestro drives a Pololu Maestro USB servo controller. Servo i is channel
// i and motor i is channel MotorChannelOffset + i.
type Maestro struct {
	port               io.ReadWriter
	device             uint8
	compact            bool
	MotorChannelOffset int
}

// OpenMaestro opens the controller's command port, e.g. /dev/ttyACM0
func OpenMaestro(portName string, motorChannelOffset int) (*Maestro, io.Closer, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: MAESTRO_BAUD_RATE})
	if err != nil {
		return nil, nil, initFailed(err, "opening %s", portName)
	}
	maestro, err := NewMaestro(port, 12, true, motorChannelOffset)
	if err != nil {
		port.Close()
		return nil, nil, err
	}
	return maestro, port, nil
}

// NewMaestro uses the compact protocol when it's the only device on the
// port, and the Pololu protocol with the device number otherwise
func NewMaestro(port io.ReadWriter, device uint8, compact bool, motorChannelOffset int) (*Maestro, error) {
	maestro := &Maestro{
		port:               port,
		device:             device,
		compact:            compact,
		MotorChannelOffset: motorChannelOffset,
	}
	// Lets the controller detect the baud rate
	if _, err := port.Write([]byte{MAESTRO_AUTO_BAUD}); err != nil {
		return nil, initFailed(err, "Maestro auto baud")
	}
	return maestro, nil
}

func (m *Maestro) preamble(command byte) []byte {
	if m.compact {
		return []byte{command}
	}
	return []byte{MAESTRO_AUTO_BAUD, m.device, command & 0x7F}
}

func (m *Maestro) setTarget(channel int, us uint16) error {
	if channel < 0 || channel >= MAESTRO_CHANNELS {
		return errors.Errorf("bad Maestro channel %v", channel)
	}
	target := uint32(us) * MAESTRO_TICKS_PER_US
	if target > MAESTRO_MAX_TARGET {
		target = MAESTRO_MAX_TARGET
	}
	command := append(m.preamble(MAESTRO_CMD_SET_TARGET), byte(channel), byte(target&0x7F), byte((target>>7)&0x7F))
	_, err := m.port.Write(command)
	return err
}

func (m *Maestro) WriteServo(index int, value uint16) error {
	return m.setTarget(index, value)
}

func (m *Maestro) WriteMotor(index int, value uint16) error {
	return m.setTarget(index+m.MotorChannelOffset, value)
}

// GoHome sends every channel to its power-on position
func (m *Maestro) GoHome() error {
	_, err := m.port.Write(m.preamble(MAESTRO_CMD_GO_HOME))
	return err
}

// GetErrors returns the controller's error bits, which it clears on read
func (m *Maestro) GetErrors() (uint16, error) {
	if _, err := m.port.Write(m.preamble(MAESTRO_CMD_GET_ERRORS)); err != nil {
		return 0, err
	}
	var buffer [2]byte
	if _, err := io.ReadFull(m.port, buffer[:]); err != nil {
		return 0, errors.Wrap(err, "reading Maestro errors")
	}
	return uint16(buffer[0]&0x7F) | uint16(buffer[1]&0x7F)<<8, nil
}
