package mixer

type Protocol uint8

const (
	PROTOCOL_STANDARD Protocol = iota
	PROTOCOL_ONESHOT125
	PROTOCOL_ONESHOT42
	PROTOCOL_MULTISHOT
	PROTOCOL_BRUSHED
	PROTOCOL_DSHOT150
	PROTOCOL_DSHOT300
	PROTOCOL_DSHOT600
	PROTOCOL_DSHOT1200
)

const (
	DSHOT_DISARM_COMMAND   = 0
	DSHOT_MIN_THROTTLE     = 48
	DSHOT_MAX_THROTTLE     = 2047
	DSHOT_3D_DEADBAND_LOW  = 1047
	DSHOT_3D_DEADBAND_HIGH = 1048
)

var protocolNames = []string{
	"STANDARD",
	"ONESHOT125",
	"ONESHOT42",
	"MULTISHOT",
	"BRUSHED",
	"DSHOT150",
	"DSHOT300",
	"DSHOT600",
	"DSHOT1200",
}

func ParseProtocol(name string) (Protocol, error) {
	index, err := parseName(protocolNames, "protocol", name)
	return Protocol(index), err
}

func (p Protocol) String() string {
	return nameOf(protocolNames, int(p))
}

func (p Protocol) IsDigital() bool {
	return p >= PROTOCOL_DSHOT150 && p <= PROTOCOL_DSHOT1200
}

// UpdateRate is the frame rate in Hz a linear output should be driven at.
// Digital protocols are framed by the ESC link and return 0.
func (p Protocol) UpdateRate() int {
	switch p {
	case PROTOCOL_STANDARD:
		return 400
	case PROTOCOL_ONESHOT125:
		return 1000
	case PROTOCOL_ONESHOT42, PROTOCOL_MULTISHOT:
		return 2000
	case PROTOCOL_BRUSHED:
		return 16000
	}
	return 0
}

func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Protocol) UnmarshalText(text []byte) error {
	parsed, err := ParseProtocol(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p *Protocol) UnmarshalTOML(data interface{}) error {
	text, err := tomlString(data, "protocol")
	if err != nil {
		return err
	}
	return p.UnmarshalText([]byte(text))
}
