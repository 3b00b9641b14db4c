package mixer

import (
	"testing"
)

func TestMotorStatus(t *testing.T) {
	cases := []struct {
		name     string
		input    MotorStatusInput
		expected MotorStatus
	}{
		{"idle stick", MotorStatusInput{Armed: true}, MOTOR_RUNNING},
		{"failsafe stop", MotorStatusInput{FailsafeRequiresMotorStop: true, ThrottleLow: true, NavOverride: NOMS_ALL_NAV, NavAutoThrottle: true}, MOTOR_STOPPED_AUTO},
		{"nav stop", MotorStatusInput{NavMotorStopOrIdle: true}, MOTOR_STOPPED_AUTO},
		{"nav stop ignored in failsafe", MotorStatusInput{NavMotorStopOrIdle: true, FailsafeActive: true}, MOTOR_RUNNING},
		{"low stick", MotorStatusInput{ThrottleLow: true}, MOTOR_STOPPED_USER},
		{"low stick airmode", MotorStatusInput{ThrottleLow: true, AirmodeActive: true}, MOTOR_RUNNING},
		{"low stick airmode fixed wing", MotorStatusInput{ThrottleLow: true, AirmodeActive: true, FixedWing: true}, MOTOR_STOPPED_USER},
		{"all nav auto throttle", MotorStatusInput{ThrottleLow: true, NavOverride: NOMS_ALL_NAV, NavAutoThrottle: true}, MOTOR_RUNNING},
		{"all nav manual throttle", MotorStatusInput{ThrottleLow: true, NavOverride: NOMS_ALL_NAV}, MOTOR_STOPPED_USER},
		{"auto only autonomous", MotorStatusInput{ThrottleLow: true, NavOverride: NOMS_AUTO_ONLY, NavAutonomous: true}, MOTOR_RUNNING},
		{"auto only not autonomous", MotorStatusInput{ThrottleLow: true, NavOverride: NOMS_AUTO_ONLY, NavAutoThrottle: true}, MOTOR_STOPPED_USER},
		{"off", MotorStatusInput{ThrottleLow: true, NavOverride: NOMS_OFF, NavAutoThrottle: true, NavAutonomous: true}, MOTOR_STOPPED_USER},
		{"off always in failsafe", MotorStatusInput{ThrottleLow: true, NavOverride: NOMS_OFF_ALWAYS, FailsafeActive: true}, MOTOR_STOPPED_USER},
		{"off in failsafe", MotorStatusInput{ThrottleLow: true, NavOverride: NOMS_OFF, FailsafeActive: true}, MOTOR_RUNNING},
	}
	for _, c := range cases {
		status := ResolveMotorStatus(c.input)
		if status != c.expected {
			t.Errorf("Bad status for %v: %v, expected %v", c.name, status, c.expected)
		}
	}
}

func TestMotorStatusIsPure(t *testing.T) {
	input := MotorStatusInput{ThrottleLow: true, NavOverride: NOMS_ALL_NAV, NavAutoThrottle: true}
	first := ResolveMotorStatus(input)
	for i := 0; i < 10; i++ {
		if status := ResolveMotorStatus(input); status != first {
			t.Errorf("Status changed between calls: %v %v", first, status)
		}
	}
}
