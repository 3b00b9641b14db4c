package mixer

import (
	"bytes"
	"testing"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureDriver struct {
	motors map[int]uint16
	servos map[int]uint16
	err    error
}

func newCaptureDriver() *captureDriver {
	return &captureDriver{motors: map[int]uint16{}, servos: map[int]uint16{}}
}

func (d *captureDriver) WriteMotor(index int, value uint16) error {
	d.motors[index] = value
	return d.err
}

func (d *captureDriver) WriteServo(index int, value uint16) error {
	d.servos[index] = value
	return d.err
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	config := Default()
	config.Motor.ThrottleClippingFactor = 2
	if _, err := New(config, nil); err == nil {
		t.Error("Bad configuration accepted")
	}
}

func TestQuadEndToEnd(t *testing.T) {
	config := quadConfig()
	mixer, err := New(config, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, mixer.MotorCount())
	assert.Equal(t, 0, mixer.ServoCount())

	mixer.Tick(&Inputs{Armed: true, Throttle: 1500, PID: Axes{Roll: 400}, DT: tick})
	assert.True(t, mixer.MotorRunning())
	expected := []uint16{1100, 1100, 1900, 1900}
	for i, value := range expected {
		if mixer.MotorValue(i) != value {
			t.Errorf("Bad motor %v: %v", i, mixer.MotorValue(i))
		}
	}

	driver := newCaptureDriver()
	require.NoError(t, mixer.Write(driver))
	assert.Equal(t, uint16(1900), driver.motors[3])
	assert.Len(t, driver.servos, 0)
}

func TestDigitalEndToEnd(t *testing.T) {
	config := quadConfig()
	config.Motor.Protocol = PROTOCOL_DSHOT600
	mixer, err := New(config, nil)
	require.NoError(t, err)

	mixer.Tick(&Inputs{Throttle: 1500})
	for i := 0; i < 4; i++ {
		if mixer.MotorValue(i) != DSHOT_DISARM_COMMAND {
			t.Errorf("Disarmed motor %v not stopped: %v", i, mixer.MotorValue(i))
		}
	}
	mixer.Tick(&Inputs{Armed: true, Throttle: 2000})
	for i := 0; i < 4; i++ {
		if mixer.MotorValue(i) != DSHOT_MAX_THROTTLE {
			t.Errorf("Bad full throttle motor %v: %v", i, mixer.MotorValue(i))
		}
	}
}

func TestDigitalDisarmedWithIdleAtMinCommand(t *testing.T) {
	config := quadConfig()
	config.Motor.Protocol = PROTOCOL_DSHOT600
	config.Motor.MinCommand = 1100
	mixer, err := New(config, nil)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		if mixer.MotorValue(i) != DSHOT_DISARM_COMMAND {
			t.Errorf("Motor %v not stopped after reset: %v", i, mixer.MotorValue(i))
		}
	}

	mixer.Tick(&Inputs{Throttle: 1500})
	for i := 0; i < 4; i++ {
		if mixer.MotorValue(i) != DSHOT_DISARM_COMMAND {
			t.Errorf("Disarmed motor %v spinning: %v", i, mixer.MotorValue(i))
		}
	}

	// Armed with the stick low and motor_stop stops, without it idles
	config.Features.MotorStop = true
	require.NoError(t, mixer.Reload(config))
	mixer.Tick(&Inputs{Armed: true, ThrottleLow: true, Throttle: 1100})
	assert.Equal(t, MOTOR_STOPPED_USER, mixer.MotorStatus())
	assert.Equal(t, uint16(DSHOT_DISARM_COMMAND), mixer.MotorValue(0))

	config.Features.MotorStop = false
	require.NoError(t, mixer.Reload(config))
	mixer.Tick(&Inputs{Armed: true, ThrottleLow: true, Throttle: 1100})
	assert.Equal(t, uint16(DSHOT_MIN_THROTTLE), mixer.MotorValue(0))
}

func TestDigitalReversibleDisarmedAtDeadbandEdge(t *testing.T) {
	config := quadConfig()
	config.Motor.Protocol = PROTOCOL_DSHOT600
	config.Features.ReversibleMotors = true
	config.Reversible.Neutral = config.Reversible.DeadbandHigh
	mixer, err := New(config, nil)
	require.NoError(t, err)

	mixer.Tick(&Inputs{Throttle: 1500})
	for i := 0; i < 4; i++ {
		if mixer.MotorValue(i) != DSHOT_DISARM_COMMAND {
			t.Errorf("Disarmed reversible motor %v spinning: %v", i, mixer.MotorValue(i))
		}
	}
}

func TestStatusFromInputs(t *testing.T) {
	mixer, err := New(Default(), nil)
	require.NoError(t, err)
	mixer.Tick(&Inputs{Armed: true, ThrottleLow: true, Throttle: 1000})
	assert.Equal(t, MOTOR_STOPPED_USER, mixer.MotorStatus())
	assert.False(t, mixer.MotorRunning())
	assert.Equal(t, 1150.0, mixer.MotorCommand(0))
}

func TestStatusChangesLoggedAtInfo(t *testing.T) {
	defer ConfigureLogger(nil, logging.INFO, false)
	for level, logged := range map[logging.Level]bool{logging.INFO: true, logging.WARNING: false} {
		var buffer bytes.Buffer
		ConfigureLogger(&buffer, level, false)
		mixer, err := New(Default(), nil)
		require.NoError(t, err)
		mixer.Tick(&Inputs{Armed: true, Throttle: 1500})
		mixer.Tick(&Inputs{Armed: true, ThrottleLow: true, Throttle: 1000})
		if bytes.Contains(buffer.Bytes(), []byte("Motor status")) != logged {
			t.Errorf("Bad log at %v: %q", level, buffer.String())
		}
	}
}

func TestArmingForcesForward(t *testing.T) {
	config := quadConfig()
	config.Features.ReversibleMotors = true
	mixer, err := New(config, nil)
	require.NoError(t, err)

	mixer.Tick(&Inputs{Throttle: 1200})
	assert.Equal(t, MOTOR_DIRECTION_BACKWARD, mixer.Direction())
	mixer.Tick(&Inputs{Armed: true, Throttle: 1200})
	assert.Equal(t, MOTOR_DIRECTION_FORWARD, mixer.Direction())
	mixer.Tick(&Inputs{Armed: true, Throttle: 1200})
	assert.Equal(t, MOTOR_DIRECTION_BACKWARD, mixer.Direction())

	// Reload keeps the direction
	require.NoError(t, mixer.Reload(config))
	assert.Equal(t, MOTOR_DIRECTION_BACKWARD, mixer.Direction())
}

func TestWriteErrors(t *testing.T) {
	mixer, err := New(Default(), nil)
	require.NoError(t, err)
	mixer.Tick(&Inputs{Armed: true, Throttle: 1500, PID: Axes{Pitch: 100}})

	driver := newCaptureDriver()
	driver.err = errors.New("bus fault")
	assert.Error(t, mixer.Write(driver))
	assert.True(t, mixer.PwmOutputError())
	// Every output was still attempted
	assert.Len(t, driver.motors, 1)
	assert.Len(t, driver.servos, 6)
	assert.Equal(t, uint16(1600), driver.servos[SERVO_ELEVATOR])

	driver.err = nil
	assert.NoError(t, mixer.Write(driver))
	assert.False(t, mixer.PwmOutputError())
}

func TestAutotrimThroughMixer(t *testing.T) {
	store := &recordingStore{}
	mixer, err := New(Default(), store)
	require.NoError(t, err)

	in := &Inputs{Armed: true, AutotrimMode: true, Throttle: 1500, PID: Axes{Pitch: 40}, DT: tick}
	for i := 0; i < 21; i++ {
		mixer.Tick(in)
	}
	assert.Equal(t, AUTOTRIM_SAVE_PENDING, mixer.AutotrimState())
	assert.Equal(t, int16(1540), mixer.Servos().Params(SERVO_ELEVATOR).Middle)

	in.Armed = false
	mixer.Tick(in)
	assert.Equal(t, AUTOTRIM_DONE, mixer.AutotrimState())
	assert.Len(t, store.saved, 1)
}

func TestResetDisarmed(t *testing.T) {
	mixer, err := New(quadConfig(), nil)
	require.NoError(t, err)
	mixer.Tick(&Inputs{Armed: true, Throttle: 1800})
	mixer.ResetDisarmed()
	for i := 0; i < mixer.MotorCount(); i++ {
		if mixer.MotorCommand(i) != 1000 || mixer.MotorValue(i) != 1000 {
			t.Errorf("Motor %v not reset: %v %v", i, mixer.MotorCommand(i), mixer.MotorValue(i))
		}
	}
}
