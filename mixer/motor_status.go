package mixer

type MotorStatus uint8

const (
	MOTOR_STOPPED_USER MotorStatus = iota
	MOTOR_STOPPED_AUTO
	MOTOR_RUNNING
)

var motorStatusNames = []string{"STOPPED_USER", "STOPPED_AUTO", "RUNNING"}

func (s MotorStatus) String() string {
	return nameOf(motorStatusNames, int(s))
}

// NavOverride decides whether navigation may spin the motors while the
// throttle stick is low
type NavOverride uint8

const (
	NOMS_OFF_ALWAYS NavOverride = iota
	NOMS_OFF
	NOMS_AUTO_ONLY
	NOMS_ALL_NAV
)

var navOverrideNames = []string{"OFF_ALWAYS", "OFF", "AUTO_ONLY", "ALL_NAV"}

func (o NavOverride) String() string {
	return nameOf(navOverrideNames, int(o))
}

func (o NavOverride) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *NavOverride) UnmarshalText(text []byte) error {
	index, err := parseName(navOverrideNames, "motor stop override", string(text))
	if err != nil {
		return err
	}
	*o = NavOverride(index)
	return nil
}

func (o *NavOverride) UnmarshalTOML(data interface{}) error {
	text, err := tomlString(data, "motor stop override")
	if err != nil {
		return err
	}
	return o.UnmarshalText([]byte(text))
}

type MotorStatusInput struct {
	Armed                     bool
	FailsafeActive            bool
	FailsafeRequiresMotorStop bool
	NavMotorStopOrIdle        bool
	ThrottleLow               bool
	AirmodeActive             bool
	FixedWing                 bool
	NavOverride               NavOverride
	NavAutoThrottle           bool
	NavAutonomous             bool
}

// ResolveMotorStatus decides whether the motors may spin this tick. The
// checks are ordered: a failsafe stop beats navigation, which beats the
// throttle stick.
func ResolveMotorStatus(in MotorStatusInput) MotorStatus {
	if in.FailsafeRequiresMotorStop {
		return MOTOR_STOPPED_AUTO
	}

	if !in.FailsafeActive && in.NavMotorStopOrIdle {
		return MOTOR_STOPPED_AUTO
	}

	if in.ThrottleLow && (in.FixedWing || !in.AirmodeActive) {
		if in.NavOverride == NOMS_OFF_ALWAYS && in.FailsafeActive {
			return MOTOR_STOPPED_USER
		}
		if !in.FailsafeActive {
			switch in.NavOverride {
			case NOMS_ALL_NAV:
				if in.NavAutoThrottle {
					return MOTOR_RUNNING
				}
				return MOTOR_STOPPED_USER
			case NOMS_AUTO_ONLY:
				if in.NavAutonomous {
					return MOTOR_RUNNING
				}
				return MOTOR_STOPPED_USER
			default:
				return MOTOR_STOPPED_USER
			}
		}
	}

	return MOTOR_RUNNING
}
