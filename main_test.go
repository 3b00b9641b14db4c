package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bskari/go-mixer/mixer"
	"github.com/bskari/go-mixer/output"
	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePins(t *testing.T) {
	pins, err := parsePins("-1, -1,13")
	require.NoError(t, err)
	assert.Equal(t, []int{-1, -1, 13}, pins)

	pins, err = parsePins("")
	require.NoError(t, err)
	if len(pins) != 0 {
		t.Errorf("Bad empty pins: %v", pins)
	}

	_, err = parsePins("12,x")
	if err == nil {
		t.Error("Bad pin accepted")
	}
}

func TestLoadMissingConfiguration(t *testing.T) {
	config, store, err := loadConfiguration(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	if config.Platform != mixer.PLATFORM_AIRPLANE {
		t.Errorf("Bad default platform: %v", config.Platform)
	}
	if store == nil {
		t.Error("No trim store")
	}
}

func TestLoadConfigurationAppliesCenters(t *testing.T) {
	directory := t.TempDir()
	centersPath := filepath.Join(directory, "centers.toml")
	err := mixer.NewFileTrimStore(centersPath).SaveServoCenters([]int16{1500, 1500, 1520, 1480})
	require.NoError(t, err)

	contents, err := os.ReadFile("conf.toml")
	require.NoError(t, err)
	replaced := strings.Replace(string(contents), `"servo_centers.toml"`, `"`+filepath.ToSlash(centersPath)+`"`, 1)
	configPath := filepath.Join(directory, "conf.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(replaced), 0644))

	config, store, err := loadConfiguration(configPath)
	require.NoError(t, err)
	if config.Servos[2].Middle != 1520 || config.Servos[3].Middle != 1480 {
		t.Errorf("Centers not applied: %v", config.Servos)
	}
	if _, ok := store.(*mixer.FileTrimStore); !ok {
		t.Errorf("Bad store: %T", store)
	}
}

func TestOpenUnknownOutput(t *testing.T) {
	_, _, err := openOutput("smoke", "", pinConfig{}, mixer.Default())
	if err == nil {
		t.Error("Unknown output accepted")
	}
	driver, closer, err := openOutput("none", "", pinConfig{}, mixer.Default())
	require.NoError(t, err)
	if _, ok := driver.(output.Nop); !ok || closer != nil {
		t.Errorf("Bad none output: %T %v", driver, closer)
	}
}

func TestSimulationKeys(t *testing.T) {
	sim := newSimulation()
	running, _ := sim.handleKey(0, 'a')
	if !running || !sim.armed {
		t.Error("a didn't arm")
	}
	sim.handleKey(termbox.KeyArrowRight, 0)
	sim.handleKey(termbox.KeyArrowUp, 0)
	sim.handleKey(0, 'x')
	sim.handleKey(0, 'w')
	if sim.sticks.Roll != STICK_STEP || sim.sticks.Pitch != STICK_STEP || sim.sticks.Yaw != STICK_STEP {
		t.Errorf("Bad sticks: %v", sim.sticks)
	}
	if sim.throttle != mixer.PWM_RANGE_MIN+THROTTLE_STEP {
		t.Errorf("Bad throttle: %v", sim.throttle)
	}
	for i := 0; i < 20; i++ {
		sim.handleKey(termbox.KeyArrowLeft, 0)
	}
	if sim.sticks.Roll != -500 {
		t.Errorf("Roll not limited: %v", sim.sticks.Roll)
	}
	sim.handleKey(0, 'c')
	if sim.sticksDeflected() {
		t.Error("Sticks not centered")
	}

	if running, _ := sim.handleKey(termbox.KeyEsc, 0); running {
		t.Error("Esc didn't quit")
	}
	if running, _ := sim.handleKey(0, 'q'); running {
		t.Error("q didn't quit")
	}
}

func TestSimulationAutotrimBlocksArming(t *testing.T) {
	sim := newSimulation()
	sim.handleKey(0, 't')
	_, message := sim.handleKey(0, 'a')
	if sim.armed {
		t.Error("Armed with autotrim on")
	}
	if message == "" {
		t.Error("No message for blocked arming")
	}
	// Turning it on once armed is how autotrim is used
	sim.handleKey(0, 't')
	sim.handleKey(0, 'a')
	sim.handleKey(0, 't')
	if !sim.armed || !sim.autotrim {
		t.Errorf("Bad state: armed %v autotrim %v", sim.armed, sim.autotrim)
	}
}

func TestSimulationInputs(t *testing.T) {
	sim := newSimulation()
	sim.handleKey(termbox.KeyArrowRight, 0)
	in := sim.inputs(SIMULATION_PERIOD)
	if in.RcChannels[0] != 1550 || in.RcChannels[1] != 1500 || in.RcChannels[3] != 1000 {
		t.Errorf("Bad channels: %v", in.RcChannels)
	}
	if !in.ThrottleLow || !in.SticksDeflected {
		t.Errorf("Bad flags: %v %v", in.ThrottleLow, in.SticksDeflected)
	}
	if in.Integrator.AxisIterm(mixer.FD_PITCH) != 0 {
		t.Error("I-term drifted while disarmed")
	}

	sim.handleKey(0, 'a')
	sim.inputs(SIMULATION_PERIOD)
	if sim.integrator.AxisIterm(mixer.FD_PITCH) != PITCH_ITERM_DRIFT {
		t.Errorf("Bad drift: %v", sim.integrator.AxisIterm(mixer.FD_PITCH))
	}
	sim.integrator.ReduceIterm(mixer.FD_PITCH, PITCH_ITERM_DRIFT)
	assert.InDelta(t, 0, sim.integrator.AxisIterm(mixer.FD_PITCH), 1e-9)
}

func TestSimulationFliesTheMixer(t *testing.T) {
	mix, err := mixer.New(mixer.Default(), nil)
	require.NoError(t, err)
	sim := newSimulation()
	sim.handleKey(0, 'a')
	for i := 0; i < 8; i++ {
		sim.handleKey(0, 'w')
	}
	for i := 0; i < 10; i++ {
		mix.Tick(sim.inputs(SIMULATION_PERIOD))
		require.NoError(t, mix.Write(output.Nop{}))
	}
	if !mix.MotorRunning() {
		t.Errorf("Motor not running: %v", mix.MotorStatus())
	}
	if mix.MotorValue(0) != 1200 {
		t.Errorf("Bad motor value: %v", mix.MotorValue(0))
	}
}

func TestSweepInputs(t *testing.T) {
	mix, err := mixer.New(mixer.Default(), nil)
	require.NoError(t, err)
	mix.Tick(sweepInputs(0, time.Second))
	center := mix.ServoValue(mixer.SERVO_ELEVATOR)
	mix.Tick(sweepInputs(200, time.Second))
	if mix.ServoValue(mixer.SERVO_ELEVATOR) <= center {
		t.Errorf("Elevator didn't move: %v %v", center, mix.ServoValue(mixer.SERVO_ELEVATOR))
	}
	if mix.MotorRunning() {
		t.Error("Motor running during a servo sweep")
	}
}

func TestMaestroRejectsDigital(t *testing.T) {
	config := mixer.Default()
	config.Motor.Protocol = mixer.PROTOCOL_DSHOT600
	// Never reaches the serial port
	_, _, err := openOutput("maestro", "/dev/nonexistent", pinConfig{}, config)
	require.Error(t, err)
	if errors.Cause(err) != output.ErrPwmOutputInit {
		t.Errorf("Bad error: %v", err)
	}
	assert.Contains(t, err.Error(), "Maestro")
}
