package mixer

import (
	"testing"
)

func newTestReversible() *ReversibleThrottle {
	config := Default()
	return NewReversibleThrottle(true, config.Motor.Range(), config.Reversible)
}

func TestReversibleHysteresis(t *testing.T) {
	reversible := newTestReversible()
	// Strictly inside the deadband nothing changes
	for throttle := 1407.0; throttle < 1514; throttle += 3 {
		if reversible.Update(throttle) != MOTOR_DIRECTION_FORWARD {
			t.Errorf("Direction flipped inside deadband at %v", throttle)
		}
	}

	if reversible.Update(1405) != MOTOR_DIRECTION_BACKWARD {
		t.Error("Direction did not flip below deadband")
	}
	for throttle := 1513.0; throttle > 1406; throttle -= 3 {
		if reversible.Update(throttle) != MOTOR_DIRECTION_BACKWARD {
			t.Errorf("Direction flipped inside deadband at %v", throttle)
		}
	}
	if reversible.Update(1515) != MOTOR_DIRECTION_FORWARD {
		t.Error("Direction did not flip above deadband")
	}
}

func TestReversibleRanges(t *testing.T) {
	reversible := newTestReversible()
	low, high := reversible.Range()
	if low != 1514 || high != 1850 {
		t.Errorf("Bad forward range: %v %v", low, high)
	}
	reversible.Update(1200)
	low, high = reversible.Range()
	if low != 1000 || high != 1406 {
		t.Errorf("Bad backward range: %v %v", low, high)
	}
	reversible.ForceForward()
	if reversible.Direction() != MOTOR_DIRECTION_FORWARD {
		t.Errorf("Bad direction after force: %v", reversible.Direction())
	}
}

func TestReversibleDisabled(t *testing.T) {
	config := Default()
	reversible := NewReversibleThrottle(false, config.Motor.Range(), config.Reversible)
	if reversible.Update(1000) != MOTOR_DIRECTION_FORWARD {
		t.Error("Disabled reversible changed direction")
	}
	low, high := reversible.Range()
	if low != 1150 || high != 1850 {
		t.Errorf("Bad range: %v %v", low, high)
	}
}
