package output

import (
	"testing"

	"periph.io/x/periph/conn/i2c/i2ctest"
)

func TestPrescale(t *testing.T) {
	if prescale := getPrescale(50); prescale != 121 {
		t.Errorf("Bad prescale: %v", prescale)
	}
	if prescale := getPrescale(1000000); prescale != 3 {
		t.Errorf("Bad prescale: %v", prescale)
	}
	if prescale := getPrescale(1); prescale != 255 {
		t.Errorf("Bad prescale: %v", prescale)
	}
}

func TestTicks(t *testing.T) {
	if ticks := getTicksForUs(1500, 50); ticks != 307 {
		t.Errorf("Bad ticks: %v", ticks)
	}
	if ticks := getTicksForUs(60000, 50); ticks != 4095 {
		t.Errorf("Bad ticks: %v", ticks)
	}
}

func TestPca9685Writes(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: PCA9685_ADDRESS, W: []byte{PCA9685_MODE1_REGISTER}, R: []byte{0x11}},
			{Addr: PCA9685_ADDRESS, W: []byte{PCA9685_MODE1_REGISTER, 0x11}},
			{Addr: PCA9685_ADDRESS, W: []byte{PCA9685_PRESCALE_REGISTER, 121}},
			{Addr: PCA9685_ADDRESS, W: []byte{PCA9685_MODE1_REGISTER, 0x21}},
			{Addr: PCA9685_ADDRESS, W: []byte{PCA9685_MODE1_REGISTER, 0xA1}},
			// Servo 2 at 1500 us
			{Addr: PCA9685_ADDRESS, W: []byte{0x0E, 0, 0, 0x33, 0x01}},
			// Motor 1 lands on channel 9
			{Addr: PCA9685_ADDRESS, W: []byte{0x2A, 0, 0, 0xCC, 0x00}},
		},
		DontPanic: true,
	}
	device, err := NewPca9685(bus, SERVO_HERTZ)
	if err != nil {
		t.Fatalf("Unable to create: %v", err)
	}
	if err := device.WriteServo(2, 1500); err != nil {
		t.Errorf("Unable to write servo: %v", err)
	}
	if err := device.WriteMotor(1, 1000); err != nil {
		t.Errorf("Unable to write motor: %v", err)
	}
	if err := device.WriteServo(8, 1500); err == nil {
		t.Error("Servo on a motor channel accepted")
	}
	if err := device.WriteMotor(8, 1500); err == nil {
		t.Error("Motor past the last channel accepted")
	}
	if err := bus.Close(); err != nil {
		t.Errorf("Not every operation ran: %v", err)
	}
}
