package mixer

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bskari/go-mixer/table"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Platform uint8

const (
	PLATFORM_MULTIROTOR Platform = iota
	PLATFORM_AIRPLANE
	PLATFORM_HELICOPTER
	PLATFORM_TRICOPTER
	PLATFORM_ROVER
	PLATFORM_BOAT
)

var platformNames = []string{"MULTIROTOR", "AIRPLANE", "HELICOPTER", "TRICOPTER", "ROVER", "BOAT"}

func (p Platform) String() string {
	return nameOf(platformNames, int(p))
}

func (p Platform) FixedWing() bool {
	return p == PLATFORM_AIRPLANE
}

func (p Platform) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Platform) UnmarshalText(text []byte) error {
	index, err := parseName(platformNames, "platform", string(text))
	if err != nil {
		return err
	}
	*p = Platform(index)
	return nil
}

func (p *Platform) UnmarshalTOML(data interface{}) error {
	text, err := tomlString(data, "platform")
	if err != nil {
		return err
	}
	return p.UnmarshalText([]byte(text))
}

type MotorConfig struct {
	Protocol               Protocol `toml:"protocol" yaml:"protocol"`
	MinCommand             uint16   `toml:"min_command" yaml:"min_command"`
	MinThrottle            uint16   `toml:"min_throttle" yaml:"min_throttle"`
	MaxThrottle            uint16   `toml:"max_throttle" yaml:"max_throttle"`
	ThrottleScale          float64  `toml:"throttle_scale" yaml:"throttle_scale"`
	YawMotorDirection      int8     `toml:"yaw_motor_direction" yaml:"yaw_motor_direction"`
	ThrottleClippingFactor float64  `toml:"throttle_clipping_factor" yaml:"throttle_clipping_factor"`
}

// Range is the motor actuator range with the idle value as its center
func (c MotorConfig) Range() ActuatorRange {
	return ActuatorRange{
		Min:    float64(c.MinCommand),
		Max:    float64(c.MaxThrottle),
		Center: float64(c.MinThrottle),
	}
}

type FeatureConfig struct {
	ReversibleMotors         bool `toml:"reversible_motors" yaml:"reversible_motors"`
	MotorStop                bool `toml:"motor_stop" yaml:"motor_stop"`
	FwAutotrim               bool `toml:"fw_autotrim" yaml:"fw_autotrim"`
	ThrottleVbatCompensation bool `toml:"throttle_vbat_compensation" yaml:"throttle_vbat_compensation"`
}

type ReversibleConfig struct {
	DeadbandLow  uint16 `toml:"deadband_low" yaml:"deadband_low"`
	DeadbandHigh uint16 `toml:"deadband_high" yaml:"deadband_high"`
	Neutral      uint16 `toml:"neutral" yaml:"neutral"`
}

type NavConfig struct {
	OverridesMotorStop NavOverride `toml:"overrides_motor_stop" yaml:"overrides_motor_stop"`
}

// ServoRule feeds one input into one servo. Speed limits how fast the input
// may change, in tens of units per second; 0 means unlimited. A missing
// condition means the rule is always active.
type ServoRule struct {
	Target    uint8       `toml:"target" yaml:"target"`
	Input     InputSource `toml:"input" yaml:"input"`
	Rate      int16       `toml:"rate" yaml:"rate"`
	Speed     uint8       `toml:"speed" yaml:"speed"`
	Condition *int        `toml:"condition" yaml:"condition"`
}

func (r ServoRule) ConditionID() int {
	if r.Condition == nil {
		return -1
	}
	return *r.Condition
}

type ServoConfig struct {
	FlaperonThrowOffset int16 `toml:"flaperon_throw_offset" yaml:"flaperon_throw_offset"`
	// Degrees per second
	AutotrimRotationLimit float64 `toml:"autotrim_rotation_limit" yaml:"autotrim_rotation_limit"`
}

type AutotrimConfig struct {
	CentersFile string `toml:"centers_file" yaml:"centers_file"`
}

type Configuration struct {
	Platform    Platform         `toml:"platform" yaml:"platform"`
	Motor       MotorConfig      `toml:"motor" yaml:"motor"`
	Features    FeatureConfig    `toml:"features" yaml:"features"`
	Reversible  ReversibleConfig `toml:"reversible" yaml:"reversible"`
	Nav         NavConfig        `toml:"nav" yaml:"nav"`
	MotorMix    []MotorMix       `toml:"motor_mix" yaml:"motor_mix"`
	Servos      []ServoParams    `toml:"servo" yaml:"servo"`
	ServoMix    []ServoRule      `toml:"servo_mix" yaml:"servo_mix"`
	ServoConfig ServoConfig      `toml:"servo_config" yaml:"servo_config"`
	Autotrim    AutotrimConfig   `toml:"autotrim" yaml:"autotrim"`
}

const (
	DEFAULT_MIN_COMMAND              = 1000
	DEFAULT_MIN_THROTTLE             = 1150
	DEFAULT_MAX_THROTTLE             = 1850
	DEFAULT_DEADBAND_LOW             = 1406
	DEFAULT_DEADBAND_HIGH            = 1514
	DEFAULT_NEUTRAL                  = 1460
	DEFAULT_THROTTLE_CLIPPING_FACTOR = 0.33
	DEFAULT_AUTOTRIM_ROTATION_LIMIT  = 15.0
	DEFAULT_CENTERS_FILE             = "servo_centers.toml"
)

// QuadX is the motor table for a quadcopter in X configuration, props in
// with the rear right motor first
func QuadX() []MotorMix {
	return []MotorMix{
		{Throttle: 1, Roll: -1, Pitch: 1, Yaw: -1},
		{Throttle: 1, Roll: -1, Pitch: -1, Yaw: 1},
		{Throttle: 1, Roll: 1, Pitch: 1, Yaw: 1},
		{Throttle: 1, Roll: 1, Pitch: -1, Yaw: -1},
	}
}

// Default is a conventional airplane: one pusher motor, ailerons on servos
// 3 and 4, elevator on 2 and rudder on 5
func Default() *Configuration {
	config := &Configuration{
		Platform: PLATFORM_AIRPLANE,
		Motor: MotorConfig{
			Protocol: PROTOCOL_STANDARD,
		},
		MotorMix: []MotorMix{{Throttle: 1}},
		ServoMix: []ServoRule{
			{Target: 2, Input: INPUT_STABILIZED_PITCH, Rate: 100},
			{Target: 3, Input: INPUT_STABILIZED_ROLL, Rate: 100},
			{Target: 4, Input: INPUT_STABILIZED_ROLL, Rate: 100},
			{Target: 5, Input: INPUT_STABILIZED_YAW, Rate: 100},
		},
	}
	config.applyDefaults()
	return config
}

// Zero values mean "not configured" for everything that has a default
func (c *Configuration) applyDefaults() {
	if c.Motor.MinCommand == 0 {
		c.Motor.MinCommand = DEFAULT_MIN_COMMAND
	}
	if c.Motor.MinThrottle == 0 {
		c.Motor.MinThrottle = DEFAULT_MIN_THROTTLE
	}
	if c.Motor.MaxThrottle == 0 {
		c.Motor.MaxThrottle = DEFAULT_MAX_THROTTLE
	}
	if c.Motor.ThrottleScale == 0 {
		c.Motor.ThrottleScale = 1
	}
	if c.Motor.YawMotorDirection == 0 {
		c.Motor.YawMotorDirection = 1
	}
	if c.Motor.ThrottleClippingFactor == 0 {
		c.Motor.ThrottleClippingFactor = DEFAULT_THROTTLE_CLIPPING_FACTOR
	}
	if c.Reversible.DeadbandLow == 0 {
		c.Reversible.DeadbandLow = DEFAULT_DEADBAND_LOW
	}
	if c.Reversible.DeadbandHigh == 0 {
		c.Reversible.DeadbandHigh = DEFAULT_DEADBAND_HIGH
	}
	if c.Reversible.Neutral == 0 {
		c.Reversible.Neutral = DEFAULT_NEUTRAL
	}
	if c.ServoConfig.AutotrimRotationLimit == 0 {
		c.ServoConfig.AutotrimRotationLimit = DEFAULT_AUTOTRIM_ROTATION_LIMIT
	}
	if c.Autotrim.CentersFile == "" {
		c.Autotrim.CentersFile = DEFAULT_CENTERS_FILE
	}

	for i := range c.Servos {
		if c.Servos[i].Min == 0 && c.Servos[i].Max == 0 && c.Servos[i].Middle == 0 {
			rate := c.Servos[i].Rate
			c.Servos[i] = DefaultServoParams()
			if rate != 0 {
				c.Servos[i].Rate = rate
			}
		}
		if c.Servos[i].Rate == 0 {
			c.Servos[i].Rate = 100
		}
	}
	// Every servo a rule points at needs parameters
	for _, rule := range c.ServoMix[:c.ServoRuleCount()] {
		if int(rule.Target) >= MAX_SUPPORTED_SERVOS {
			continue
		}
		for len(c.Servos) <= int(rule.Target) {
			c.Servos = append(c.Servos, DefaultServoParams())
		}
	}
}

// LoadConfiguration decodes a TOML configuration and fills in defaults
func LoadConfiguration(reader io.Reader) (*Configuration, error) {
	var config Configuration
	if _, err := toml.DecodeReader(reader, &config); err != nil {
		return nil, errors.Wrap(err, "decoding TOML configuration")
	}
	config.applyDefaults()
	return &config, nil
}

// LoadYamlConfiguration is LoadConfiguration for YAML input
func LoadYamlConfiguration(reader io.Reader) (*Configuration, error) {
	var config Configuration
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding YAML configuration")
	}
	config.applyDefaults()
	return &config, nil
}

// LoadConfigurationFile picks the decoder from the file extension and
// validates the result
func LoadConfigurationFile(path string) (*Configuration, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening configuration %s", path)
	}
	defer file.Close()

	var config *Configuration
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		config, err = LoadYamlConfiguration(file)
	default:
		config, err = LoadConfiguration(file)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid configuration %s", path)
	}
	return config, nil
}

// MotorCount is the number of weight rows before the first row with zero
// throttle
func (c *Configuration) MotorCount() int {
	return table.TerminatedLength(c.MotorMix, isMotorTerminator)
}

// ServoRuleCount is the number of rules before the first rule with zero rate
func (c *Configuration) ServoRuleCount() int {
	return table.TerminatedLength(c.ServoMix, isRuleTerminator)
}

func isMotorTerminator(mix MotorMix) bool {
	return mix.Throttle == 0
}

func isRuleTerminator(rule ServoRule) bool {
	return rule.Rate == 0
}
