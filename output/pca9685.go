package output

import (
	"encoding/binary"
	"math"
	"time"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/mmr"
)

// PCA9685 registers
const (
	PCA9685_MODE1_REGISTER     = 0x00
	PCA9685_MODE2_REGISTER     = 0x01
	PCA9685_LED0_ON_L_REGISTER = 0x06
	PCA9685_PRESCALE_REGISTER  = 0xFE
)

// MODE1 bits
const (
	PCA9685_MODE1_ALLCALL        = 0x01
	PCA9685_MODE1_SLEEP          = 0x10
	PCA9685_MODE1_AUTO_INCREMENT = 0x20
	PCA9685_MODE1_RESTART        = 0x80
)

const (
	PCA9685_ADDRESS       = 0x40
	PCA9685_OSCILLATOR_HZ = 25000000
	PCA9685_CHANNELS      = 16
	PCA9685_STEPS         = 4096
	// Servos use channels 0-7 and motors 8-15
	PCA9685_MOTOR_OFFSET = 8
	// With the smallest prescale of 3
	PCA9685_MAX_HERTZ = 1526
)

// Pca9685 is the 16 channel I2C PWM board. Every channel shares one
// frequency, so servos and linear ESCs both run at the board's rate.
type Pca9685 struct {
	mmr   mmr.Dev8
	hertz int
}

func NewPca9685(bus i2c.Bus, hertz int) (*Pca9685, error) {
	if hertz > PCA9685_MAX_HERTZ {
		hertz = PCA9685_MAX_HERTZ
	}
	device := &Pca9685{
		mmr: mmr.Dev8{
			Conn: &i2c.Dev{Bus: bus, Addr: PCA9685_ADDRESS},
			// Only single byte registers are read
			Order: binary.LittleEndian,
		},
		hertz: hertz,
	}

	// There's no ID register, so a successful read is the best probe we have
	mode, err := device.mmr.ReadUint8(PCA9685_MODE1_REGISTER)
	if err != nil {
		return nil, initFailed(err, "no PCA9685 detected")
	}
	if err := device.setFrequency(mode, hertz); err != nil {
		return nil, initFailed(err, "setting PCA9685 frequency")
	}
	return device, nil
}

func getPrescale(hertz int) uint8 {
	prescale := math.Round(PCA9685_OSCILLATOR_HZ/(PCA9685_STEPS*float64(hertz))) - 1
	return uint8(math.Max(3, math.Min(255, prescale)))
}

// The prescaler can only be written while the oscillator sleeps
func (p *Pca9685) setFrequency(mode uint8, hertz int) error {
	sleeping := (mode &^ PCA9685_MODE1_RESTART) | PCA9685_MODE1_SLEEP
	err := p.mmr.WriteUint8(PCA9685_MODE1_REGISTER, sleeping)
	if err != nil {
		return err
	}
	err = p.mmr.WriteUint8(PCA9685_PRESCALE_REGISTER, getPrescale(hertz))
	if err != nil {
		return err
	}
	awake := (mode &^ (PCA9685_MODE1_SLEEP | PCA9685_MODE1_RESTART)) | PCA9685_MODE1_AUTO_INCREMENT
	err = p.mmr.WriteUint8(PCA9685_MODE1_REGISTER, awake)
	if err != nil {
		return err
	}
	// The oscillator needs 500 us to settle
	time.Sleep(5 * time.Millisecond)
	return p.mmr.WriteUint8(PCA9685_MODE1_REGISTER, awake|PCA9685_MODE1_RESTART)
}

func getTicksForUs(us uint16, hertz int) uint16 {
	ticks := uint64(us) * uint64(hertz) * PCA9685_STEPS / 1000000
	if ticks > PCA9685_STEPS-1 {
		ticks = PCA9685_STEPS - 1
	}
	return uint16(ticks)
}

// Pulses always start at tick 0, so only the off time changes
func (p *Pca9685) setPulse(channel int, us uint16) error {
	off := getTicksForUs(us, p.hertz)
	register := byte(PCA9685_LED0_ON_L_REGISTER + 4*channel)
	return p.mmr.Conn.Tx([]byte{register, 0, 0, byte(off & 0xFF), byte(off >> 8)}, nil)
}

func (p *Pca9685) WriteServo(index int, value uint16) error {
	if index < 0 || index >= PCA9685_MOTOR_OFFSET {
		return errBadIndex("servo", index)
	}
	return p.setPulse(index, value)
}

func (p *Pca9685) WriteMotor(index int, value uint16) error {
	if index < 0 || index+PCA9685_MOTOR_OFFSET >= PCA9685_CHANNELS {
		return errBadIndex("motor", index)
	}
	return p.setPulse(index+PCA9685_MOTOR_OFFSET, value)
}
