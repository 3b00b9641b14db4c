package main

import (
	"fmt"

	"github.com/bskari/go-mixer/mixer"
	"github.com/fatih/color"
)

const SWEEP_STEPS = 10

var heading = color.New(color.FgCyan, color.Bold)
var warning = color.New(color.FgYellow)

func dumpMixer(config *mixer.Configuration) {
	heading.Printf("%v, %v at %v Hz\n", config.Platform, config.Motor.Protocol, config.Motor.Protocol.UpdateRate())
	fmt.Printf("min_command %v, idle %v, max %v\n",
		config.Motor.MinCommand, config.Motor.MinThrottle, config.Motor.MaxThrottle)

	motors := mixer.NewMotorMixer(config)
	heading.Printf("Motors (%v)\n", motors.Count())
	fmt.Printf("%3s %9s %7s %7s %7s\n", "#", "throttle", "roll", "pitch", "yaw")
	for i, weight := range motors.Weights() {
		fmt.Printf("%3d %9.3f %7.3f %7.3f %7.3f\n", i, weight.Throttle, weight.Roll, weight.Pitch, weight.Yaw)
	}

	servos := mixer.NewServoMixer(config)
	heading.Printf("Servo rules (%v rules, %v servos)\n", len(servos.Rules()), servos.ServoCount())
	fmt.Printf("%3s %6s %-24s %6s %6s %9s\n", "#", "target", "input", "rate", "speed", "condition")
	for i, rule := range servos.Rules() {
		fmt.Printf("%3d %6d %-24v %6d %6d %9d\n", i, rule.Target, rule.Input, rule.Rate, rule.Speed, rule.ConditionID())
	}
	heading.Println("Servos")
	fmt.Printf("%3s %5s %6s %5s %5s\n", "#", "min", "middle", "max", "rate")
	for i := 0; i < servos.ServoCount(); i++ {
		params := servos.Params(i)
		fmt.Printf("%3d %5d %6d %5d %5d\n", i, params.Min, params.Middle, params.Max, params.Rate)
	}

	dumpSweep(config)
}

// dumpSweep shows what goes on the wire across the whole command range
func dumpSweep(config *mixer.Configuration) {
	scaler := mixer.NewScaler(config)
	motorRange := config.Motor.Range()
	reversible := config.Features.ReversibleMotors

	heading.Println("Wire values")
	if reversible {
		fmt.Printf("%8s %8s %8s\n", "command", "forward", "backward")
	} else {
		fmt.Printf("%8s %8s\n", "command", "value")
	}
	step := motorRange.Span() / SWEEP_STEPS
	for i := 0; i <= SWEEP_STEPS; i++ {
		command := motorRange.Min + step*float64(i)
		forward := scaler.Scale(command, mixer.MOTOR_DIRECTION_FORWARD)
		if reversible {
			backward := scaler.Scale(command, mixer.MOTOR_DIRECTION_BACKWARD)
			fmt.Printf("%8.1f %8d %8d\n", command, forward, backward)
		} else {
			fmt.Printf("%8.1f %8d\n", command, forward)
		}
	}
	low, high := scaler.Limits()
	fmt.Printf("Wire limits %v to %v\n", low, high)
	if config.Motor.Protocol.IsDigital() && !config.Features.MotorStop {
		warning.Println("Digital protocol without motor_stop: idle motors keep spinning when throttle is low")
	}
}
