package mixer

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// OutputDriver puts wire values on the actual pins
type OutputDriver interface {
	WriteMotor(index int, value uint16) error
	WriteServo(index int, value uint16) error
}

// Inputs is everything the mixer reads from the rest of the flight
// controller on one tick
type Inputs struct {
	Armed                     bool
	FailsafeActive            bool
	FailsafeRequiresMotorStop bool
	ThrottleLow               bool
	AirmodeActive             bool
	ManualMode                bool
	NavMotorStopOrIdle        bool
	NavAutoThrottle           bool
	NavAutonomous             bool

	PID    Axes
	Sticks Axes
	// Throttle stick, microseconds
	Throttle              float64
	ThrottleOverride      bool
	ThrottleOverrideValue float64
	ThrottleScale         float64
	VoltageCompensation   float64

	RcChannels      []uint16
	Attitude        Attitude
	CamStab         bool
	Flaperon        bool
	MixerTransition bool
	GlobalVariables [GLOBAL_VARIABLE_COUNT]int32
	HeadTracker     Axes

	AutotrimMode    bool
	SticksDeflected bool
	HeadingValid    bool
	// Radians per second
	RotationRate float64
	// Degrees per second
	TargetRate float64
	LevelTrim  float64

	Conditions ConditionEvaluator
	Integrator Integrator
	DT         time.Duration
}

// Mixer owns all state that lives between ticks: reversible direction, slew
// limiters, autotrim session and the output buffers
type Mixer struct {
	config     *Configuration
	store      TrimStore
	status     MotorStatus
	reversible *ReversibleThrottle
	motors     *MotorMixer
	scaler     *Scaler
	servos     *ServoMixer
	autotrim   AutotrimPolicy

	motorCommand   [MAX_SUPPORTED_MOTORS]float64
	motorValue     [MAX_SUPPORTED_MOTORS]uint16
	armed          bool
	pwmOutputError bool
}

func New(config *Configuration, store TrimStore) (*Mixer, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid mixer configuration")
	}
	if store == nil {
		store = NopTrimStore{}
	}
	mixer := &Mixer{
		store:      store,
		status:     MOTOR_STOPPED_USER,
		reversible: NewReversibleThrottle(config.Features.ReversibleMotors, config.Motor.Range(), config.Reversible),
	}
	mixer.build(config)
	Logger.Infof("Mixer ready: %v %v motors, %v servos, %v",
		config.Platform, mixer.motors.Count(), mixer.servos.ServoCount(), config.Motor.Protocol)
	return mixer, nil
}

func (m *Mixer) build(config *Configuration) {
	m.config = config
	m.motors = NewMotorMixer(config)
	m.scaler = NewScaler(config)
	m.servos = NewServoMixer(config)
	if config.Features.FwAutotrim {
		m.autotrim = NewContinuousAutotrim(config.ServoConfig.AutotrimRotationLimit, m.store)
	} else {
		m.autotrim = NewDiscreteAutotrim(m.store)
	}
	m.ResetDisarmed()
}

// Reload swaps in a new configuration. The reversible direction survives;
// slew limiters and any autotrim session start over.
func (m *Mixer) Reload(config *Configuration) error {
	if err := config.Validate(); err != nil {
		return errors.Wrap(err, "invalid mixer configuration")
	}
	m.reversible.reconfigure(config.Features.ReversibleMotors, config.Motor.Range(), config.Reversible)
	m.build(config)
	Logger.Info("Mixer configuration reloaded")
	return nil
}

// ResetDisarmed puts every motor at its disarmed value
func (m *Mixer) ResetDisarmed() {
	for i := 0; i < m.motors.Count(); i++ {
		m.motorCommand[i] = m.motors.DisarmedValue()
		m.motorValue[i] = m.scaler.ScaleStopped(m.motorCommand[i], m.reversible.Direction())
	}
}

func (m *Mixer) Tick(in *Inputs) {
	armedEdge := in.Armed && !m.armed
	if in.Armed != m.armed {
		if in.Armed {
			Logger.Info("Armed")
		} else {
			Logger.Info("Disarmed")
		}
	}
	m.armed = in.Armed

	status := ResolveMotorStatus(MotorStatusInput{
		Armed:                     in.Armed,
		FailsafeActive:            in.FailsafeActive,
		FailsafeRequiresMotorStop: in.FailsafeRequiresMotorStop,
		NavMotorStopOrIdle:        in.NavMotorStopOrIdle,
		ThrottleLow:               in.ThrottleLow,
		AirmodeActive:             in.AirmodeActive,
		FixedWing:                 m.config.Platform.FixedWing(),
		NavOverride:               m.config.Nav.OverridesMotorStop,
		NavAutoThrottle:           in.NavAutoThrottle,
		NavAutonomous:             in.NavAutonomous,
	})
	if status != m.status {
		Logger.Infof("Motor status %v -> %v", m.status, status)
		m.status = status
	}

	if armedEdge {
		m.reversible.ForceForward()
	} else {
		m.reversible.Update(in.Throttle)
	}

	count := m.motors.Mix(MixInput{
		Armed:                 in.Armed,
		Failsafe:              in.FailsafeActive,
		ManualPassthrough:     in.ManualMode && m.config.Platform.FixedWing(),
		PID:                   in.PID,
		Sticks:                in.Sticks,
		Throttle:              in.Throttle,
		ThrottleOverride:      in.ThrottleOverride,
		ThrottleOverrideValue: in.ThrottleOverrideValue,
		ThrottleScale:         in.ThrottleScale,
		VoltageCompensation:   in.VoltageCompensation,
	}, m.status, m.reversible, m.motorCommand[:])
	// Stopped without motor_stop means spinning at idle
	stopped := !in.Armed || (m.status != MOTOR_RUNNING &&
		(m.config.Features.MotorStop || m.config.Features.ReversibleMotors))
	for i := 0; i < count; i++ {
		if stopped {
			m.motorValue[i] = m.scaler.ScaleStopped(m.motorCommand[i], m.reversible.Direction())
		} else {
			m.motorValue[i] = m.scaler.Scale(m.motorCommand[i], m.reversible.Direction())
		}
	}

	if m.servos.ServoCount() == 0 {
		return
	}
	platform := m.config.Platform
	yawFlip := m.reversible.Enabled() && in.Throttle < PWM_RANGE_MIDDLE &&
		(platform == PLATFORM_MULTIROTOR || platform == PLATFORM_TRICOPTER)
	m.servos.Mix(&ServoInput{
		Armed:             in.Armed,
		ManualMode:        in.ManualMode,
		PID:               in.PID,
		Sticks:            in.Sticks,
		RcChannels:        in.RcChannels,
		Throttle:          m.motors.ThrottleCommand(),
		Attitude:          in.Attitude,
		CamStab:           in.CamStab,
		Flaperon:          in.Flaperon,
		GlobalVariables:   in.GlobalVariables,
		MixerTransition:   in.MixerTransition,
		HeadTracker:       in.HeadTracker,
		ReversibleYawFlip: yawFlip,
	}, in.Conditions, in.DT)

	m.autotrim.Process(&AutotrimInput{
		Armed:           in.Armed,
		ModeActive:      in.AutotrimMode,
		FixedWing:       platform.FixedWing(),
		ManualMode:      in.ManualMode,
		SticksDeflected: in.SticksDeflected,
		HeadingValid:    in.HeadingValid,
		RotationRate:    in.RotationRate,
		TargetRate:      in.TargetRate,
		Attitude:        in.Attitude,
		LevelTrim:       in.LevelTrim,
		DT:              in.DT,
	}, m.servos, in.Conditions, in.Integrator)
}

// Write pushes the last tick's values through driver. Every output is
// attempted even if an earlier one fails.
func (m *Mixer) Write(driver OutputDriver) error {
	var err error
	for i := 0; i < m.motors.Count(); i++ {
		err = multierr.Append(err, driver.WriteMotor(i, m.motorValue[i]))
	}
	for i := 0; i < m.servos.ServoCount(); i++ {
		err = multierr.Append(err, driver.WriteServo(i, uint16(m.servos.Servo(i))))
	}
	if err != nil && !m.pwmOutputError {
		Logger.Errorf("Output write failed: %v", err)
	}
	m.pwmOutputError = err != nil
	return err
}

func (m *Mixer) Configuration() *Configuration {
	return m.config
}

func (m *Mixer) MotorCount() int {
	return m.motors.Count()
}

func (m *Mixer) ServoCount() int {
	return m.servos.ServoCount()
}

func (m *Mixer) Saturation() float64 {
	return m.motors.Saturation()
}

func (m *Mixer) AuthorityRatio() float64 {
	return m.motors.AuthorityRatio()
}

func (m *Mixer) MotorStatus() MotorStatus {
	return m.status
}

// MotorRunning is true when armed motors are allowed to spin
func (m *Mixer) MotorRunning() bool {
	return m.armed && m.status == MOTOR_RUNNING
}

func (m *Mixer) Direction() Direction {
	return m.reversible.Direction()
}

// MotorCommand is the mixed command in microseconds, before protocol scaling
func (m *Mixer) MotorCommand(index int) float64 {
	return m.motorCommand[index]
}

// MotorValue is the wire value for the configured protocol
func (m *Mixer) MotorValue(index int) uint16 {
	return m.motorValue[index]
}

func (m *Mixer) ServoValue(index int) int16 {
	return m.servos.Servo(index)
}

func (m *Mixer) Servos() *ServoMixer {
	return m.servos
}

func (m *Mixer) Motors() *MotorMixer {
	return m.motors
}

func (m *Mixer) Scaler() *Scaler {
	return m.scaler
}

func (m *Mixer) AutotrimState() AutotrimState {
	return m.autotrim.State()
}

func (m *Mixer) Autotrim() AutotrimPolicy {
	return m.autotrim
}

func (m *Mixer) PwmOutputError() bool {
	return m.pwmOutputError
}
