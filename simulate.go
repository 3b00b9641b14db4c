package main

import (
	"fmt"
	"math"
	"time"

	"github.com/bskari/go-mixer/mixer"
	"github.com/nsf/termbox-go"
)

const SIMULATION_PERIOD = 10 * time.Millisecond
const STICK_STEP = 50.0
const THROTTLE_STEP = 25.0
const THROTTLE_LOW_US = 1050
const RC_CHANNEL_COUNT = 16

// Pretend the airframe is out of trim, so the pitch I-term winds up while
// flying until autotrim takes it out
const PITCH_ITERM_DRIFT = 0.05
const PITCH_ITERM_LIMIT = 60.0

type simIntegrator struct {
	iterm [3]float64
}

func (s *simIntegrator) AxisIterm(axis int) float64 {
	return s.iterm[axis]
}

func (s *simIntegrator) ReduceIterm(axis int, delta float64) {
	s.iterm[axis] -= delta
}

func (s *simIntegrator) ResetIterms() {
	s.iterm = [3]float64{}
}

func (s *simIntegrator) drift() {
	s.iterm[mixer.FD_PITCH] = math.Min(s.iterm[mixer.FD_PITCH]+PITCH_ITERM_DRIFT, PITCH_ITERM_LIMIT)
}

// simulation is the keyboard's view of the sticks and switches
type simulation struct {
	armed    bool
	failsafe bool
	autotrim bool
	manual   bool
	sticks   mixer.Axes
	throttle float64

	integrator simIntegrator
	channels   [RC_CHANNEL_COUNT]uint16
}

func newSimulation() *simulation {
	return &simulation{throttle: mixer.PWM_RANGE_MIN}
}

// handleKey applies one key press, returning false on quit
func (s *simulation) handleKey(key termbox.Key, ch rune) (bool, string) {
	switch key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		return false, ""
	case termbox.KeyArrowLeft:
		s.sticks.Roll = stickStep(s.sticks.Roll, -STICK_STEP)
	case termbox.KeyArrowRight:
		s.sticks.Roll = stickStep(s.sticks.Roll, STICK_STEP)
	case termbox.KeyArrowUp:
		s.sticks.Pitch = stickStep(s.sticks.Pitch, STICK_STEP)
	case termbox.KeyArrowDown:
		s.sticks.Pitch = stickStep(s.sticks.Pitch, -STICK_STEP)
	}

	switch ch {
	case 'q':
		return false, ""
	case 'a':
		// Autotrim mode blocks arming, like the prearm check
		if !s.armed && mixer.AutotrimBlocksArming(s.autotrim) {
			return true, "Can't arm with autotrim on"
		}
		s.armed = !s.armed
		if s.armed {
			return true, "Armed"
		}
		return true, "Disarmed"
	case 'f':
		s.failsafe = !s.failsafe
		return true, fmt.Sprintf("Failsafe %v", s.failsafe)
	case 't':
		s.autotrim = !s.autotrim
		return true, fmt.Sprintf("Autotrim %v", s.autotrim)
	case 'm':
		s.manual = !s.manual
		return true, fmt.Sprintf("Manual %v", s.manual)
	case 'z':
		s.sticks.Yaw = stickStep(s.sticks.Yaw, -STICK_STEP)
	case 'x':
		s.sticks.Yaw = stickStep(s.sticks.Yaw, STICK_STEP)
	case 'w':
		s.throttle = math.Min(s.throttle+THROTTLE_STEP, mixer.PWM_RANGE_MAX)
	case 's':
		s.throttle = math.Max(s.throttle-THROTTLE_STEP, mixer.PWM_RANGE_MIN)
	case 'c':
		s.sticks = mixer.Axes{}
	}
	return true, ""
}

func stickStep(value float64, step float64) float64 {
	return math.Max(-500, math.Min(500, value+step))
}

func (s *simulation) sticksDeflected() bool {
	return s.sticks.Roll != 0 || s.sticks.Pitch != 0 || s.sticks.Yaw != 0
}

// inputs builds one tick's worth of flight controller state. The sticks
// stand in for the rate controller's output.
func (s *simulation) inputs(dT time.Duration) *mixer.Inputs {
	if s.armed && !s.manual {
		s.integrator.drift()
	}
	for i := range s.channels {
		s.channels[i] = mixer.PWM_RANGE_MIDDLE
	}
	s.channels[0] = uint16(mixer.PWM_RANGE_MIDDLE + s.sticks.Roll)
	s.channels[1] = uint16(mixer.PWM_RANGE_MIDDLE + s.sticks.Pitch)
	s.channels[2] = uint16(mixer.PWM_RANGE_MIDDLE + s.sticks.Yaw)
	s.channels[3] = uint16(s.throttle)

	targetRate := math.Sqrt(s.sticks.Roll*s.sticks.Roll+s.sticks.Pitch*s.sticks.Pitch) / 5
	return &mixer.Inputs{
		Armed:          s.armed,
		FailsafeActive: s.failsafe,
		ThrottleLow:    s.throttle < THROTTLE_LOW_US,
		ManualMode:     s.manual,
		PID:            s.sticks,
		Sticks:         s.sticks,
		Throttle:       s.throttle,
		RcChannels:     s.channels[:],
		AutotrimMode:   s.autotrim,

		SticksDeflected: s.sticksDeflected(),
		HeadingValid:    true,
		TargetRate:      targetRate,
		Conditions:      mixer.AlwaysTrue{},
		Integrator:      &s.integrator,
		DT:              dT,
	}
}

func simulate(mix *mixer.Mixer, driver mixer.OutputDriver) {
	err := termbox.Init()
	if err != nil {
		panic(err)
	}
	defer termbox.Close()

	eventQueue := make(chan termbox.Event)
	go func() {
		for {
			eventQueue <- termbox.PollEvent()
		}
	}()

	sim := newSimulation()
	board := newDashboard()
	board.log("Simulation started")
	ticker := time.NewTicker(SIMULATION_PERIOD)
	defer ticker.Stop()
	previous := time.Now()
	previousState := mix.AutotrimState()

	for {
		select {
		case event := <-eventQueue:
			if event.Type != termbox.EventKey {
				continue
			}
			running, message := sim.handleKey(event.Key, event.Ch)
			if !running {
				return
			}
			if message != "" {
				board.log(message)
			}
		case now := <-ticker.C:
			mix.Tick(sim.inputs(now.Sub(previous)))
			previous = now
			if err := mix.Write(driver); err != nil {
				mixer.Logger.Debugf("Write failed: %v", err)
			}
			if state := mix.AutotrimState(); state != previousState {
				board.log(fmt.Sprintf("Autotrim %v", state))
				previousState = state
			}
			board.update(mix, sim)
		}
	}
}
