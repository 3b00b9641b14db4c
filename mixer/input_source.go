package mixer

import "github.com/pkg/errors"

// InputSource selects which signal a servo rule reads. The numbering matches
// the configuration tools, so do not reorder.
type InputSource uint8

const (
	INPUT_STABILIZED_ROLL InputSource = iota
	INPUT_STABILIZED_PITCH
	INPUT_STABILIZED_YAW
	INPUT_STABILIZED_THROTTLE
	INPUT_RC_ROLL
	INPUT_RC_PITCH
	INPUT_RC_YAW
	INPUT_RC_THROTTLE
	INPUT_RC_CH5
	INPUT_RC_CH6
	INPUT_RC_CH7
	INPUT_RC_CH8
	INPUT_GIMBAL_PITCH
	INPUT_GIMBAL_ROLL
	INPUT_FEATURE_FLAPS
	INPUT_RC_CH9
	INPUT_RC_CH10
	INPUT_RC_CH11
	INPUT_RC_CH12
	INPUT_RC_CH13
	INPUT_RC_CH14
	INPUT_RC_CH15
	INPUT_RC_CH16
	INPUT_STABILIZED_ROLL_PLUS
	INPUT_STABILIZED_ROLL_MINUS
	INPUT_STABILIZED_PITCH_PLUS
	INPUT_STABILIZED_PITCH_MINUS
	INPUT_STABILIZED_YAW_PLUS
	INPUT_STABILIZED_YAW_MINUS
	_ // reserved
	INPUT_GVAR_0
	INPUT_GVAR_1
	INPUT_GVAR_2
	INPUT_GVAR_3
	INPUT_GVAR_4
	INPUT_GVAR_5
	INPUT_GVAR_6
	INPUT_GVAR_7
	INPUT_MIXER_TRANSITION
	INPUT_HEADTRACKER_PAN
	INPUT_HEADTRACKER_TILT
	INPUT_HEADTRACKER_ROLL
	INPUT_RC_CH17
	INPUT_RC_CH18
	INPUT_RC_CH19
	INPUT_RC_CH20
	INPUT_RC_CH21
	INPUT_RC_CH22
	INPUT_RC_CH23
	INPUT_RC_CH24
	INPUT_RC_CH25
	INPUT_RC_CH26
	INPUT_RC_CH27
	INPUT_RC_CH28
	INPUT_RC_CH29
	INPUT_RC_CH30
	INPUT_RC_CH31
	INPUT_RC_CH32
	INPUT_RC_CH33
	INPUT_RC_CH34
	INPUT_SOURCE_COUNT
)

var inputSourceNames = []string{
	"stabilized_roll",
	"stabilized_pitch",
	"stabilized_yaw",
	"stabilized_throttle",
	"rc_roll",
	"rc_pitch",
	"rc_yaw",
	"rc_throttle",
	"rc_ch5",
	"rc_ch6",
	"rc_ch7",
	"rc_ch8",
	"gimbal_pitch",
	"gimbal_roll",
	"feature_flaps",
	"rc_ch9",
	"rc_ch10",
	"rc_ch11",
	"rc_ch12",
	"rc_ch13",
	"rc_ch14",
	"rc_ch15",
	"rc_ch16",
	"stabilized_roll_plus",
	"stabilized_roll_minus",
	"stabilized_pitch_plus",
	"stabilized_pitch_minus",
	"stabilized_yaw_plus",
	"stabilized_yaw_minus",
	"",
	"gvar_0",
	"gvar_1",
	"gvar_2",
	"gvar_3",
	"gvar_4",
	"gvar_5",
	"gvar_6",
	"gvar_7",
	"mixer_transition",
	"headtracker_pan",
	"headtracker_tilt",
	"headtracker_roll",
	"rc_ch17",
	"rc_ch18",
	"rc_ch19",
	"rc_ch20",
	"rc_ch21",
	"rc_ch22",
	"rc_ch23",
	"rc_ch24",
	"rc_ch25",
	"rc_ch26",
	"rc_ch27",
	"rc_ch28",
	"rc_ch29",
	"rc_ch30",
	"rc_ch31",
	"rc_ch32",
	"rc_ch33",
	"rc_ch34",
}

func ParseInputSource(name string) (InputSource, error) {
	index, err := parseName(inputSourceNames, "input source", name)
	return InputSource(index), err
}

func (s InputSource) String() string {
	return nameOf(inputSourceNames, int(s))
}

// Stabilized reports whether the source is one of the PID controlled axes
func (s InputSource) Stabilized() bool {
	return s <= INPUT_STABILIZED_YAW
}

// RcChannel returns the zero based RC channel index the source reads, if any
func (s InputSource) RcChannel() (int, bool) {
	switch {
	case s >= INPUT_RC_ROLL && s <= INPUT_RC_THROTTLE:
		return int(s - INPUT_RC_ROLL), true
	case s >= INPUT_RC_CH5 && s <= INPUT_RC_CH8:
		return int(s-INPUT_RC_CH5) + 4, true
	case s >= INPUT_RC_CH9 && s <= INPUT_RC_CH16:
		return int(s-INPUT_RC_CH9) + 8, true
	case s >= INPUT_RC_CH17 && s <= INPUT_RC_CH34:
		return int(s-INPUT_RC_CH17) + 16, true
	}
	return 0, false
}

func (s InputSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *InputSource) UnmarshalText(text []byte) error {
	parsed, err := ParseInputSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *InputSource) UnmarshalTOML(data interface{}) error {
	if number, ok := data.(int64); ok {
		if number < 0 || number >= int64(INPUT_SOURCE_COUNT) {
			return errors.Errorf("input source %v out of range", number)
		}
		*s = InputSource(number)
		return nil
	}
	text, err := tomlString(data, "input source")
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(text))
}
