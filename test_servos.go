package main

import (
	"fmt"
	"time"

	"github.com/bskari/go-mixer/mixer"
)

const SWEEP_STICK_STEP = 50.0
const SWEEP_HOLD = 250 * time.Millisecond

// sweepInputs holds the stick at deflection on roll and pitch together.
// Disarmed manual mode passes the sticks to the servos while motors stay
// stopped.
func sweepInputs(deflection float64, dT time.Duration) *mixer.Inputs {
	sticks := mixer.Axes{Roll: deflection, Pitch: deflection}
	return &mixer.Inputs{
		ManualMode:  true,
		ThrottleLow: true,
		PID:         sticks,
		Sticks:      sticks,
		Throttle:    mixer.PWM_RANGE_MIN,
		Conditions:  mixer.AlwaysTrue{},
		DT:          dT,
	}
}

func testServos(mix *mixer.Mixer, driver mixer.OutputDriver) {
	setStick := func(deflection float64) {
		mix.Tick(sweepInputs(deflection, SWEEP_HOLD))
		if err := mix.Write(driver); err != nil {
			fmt.Printf("Write failed: %v\n", err)
		}
		fmt.Printf("Stick %4.0f:", deflection)
		for i := 0; i < mix.ServoCount(); i++ {
			fmt.Printf(" %4d", mix.ServoValue(i))
		}
		fmt.Println()
		time.Sleep(SWEEP_HOLD)
	}

	// Pause a bit after setting the first position
	deflection := -500.0
	setStick(deflection)
	time.Sleep(3 * time.Second)

	for deflection < 500 {
		deflection += SWEEP_STICK_STEP
		setStick(deflection)
	}
	// Pause a bit after setting the last position
	time.Sleep(3 * time.Second)

	// Reset back to center
	setStick(0)
	time.Sleep(1 * time.Second)
}
