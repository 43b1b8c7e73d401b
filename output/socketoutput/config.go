package socketoutput

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/pcdshub/pcdslog/defs"
)

// ErrInvalidProtocol is returned (wrapped) for protocols other than tcp and udp
var ErrInvalidProtocol = errors.New("invalid protocol")

// ErrPayloadTooLarge is returned when a payload doesn't fit in one datagram
var ErrPayloadTooLarge = errors.New("payload too large for one datagram")

// Protocol selects the wire mode of a transport
type Protocol string

// Supported protocols
const (
	ProtocolTCP Protocol = "tcp" // stream, one payload per line
	ProtocolUDP Protocol = "udp" // one payload per datagram
)

// ParseProtocol resolves a protocol name case-insensitively
func ParseProtocol(name string) (Protocol, error) {
	switch Protocol(strings.ToLower(name)) {
	case ProtocolTCP:
		return ProtocolTCP, nil
	case ProtocolUDP:
		return ProtocolUDP, nil
	default:
		return "", fmt.Errorf("%w %q: must be tcp or udp", ErrInvalidProtocol, name)
	}
}

// Config defines the connection to the central log collector
type Config struct {
	Protocol        string            `yaml:"protocol"`
	Address         string            `yaml:"address"`
	MaxDatagramSize datasize.ByteSize `yaml:"maxDatagramSize"`
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	if _, err := ParseProtocol(cfg.Protocol); err != nil {
		return fmt.Errorf(".protocol: %w", err)
	}
	if len(cfg.Address) == 0 {
		return fmt.Errorf(".address is unspecified")
	}
	if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
		return fmt.Errorf(".address is invalid: %w", err)
	}
	return nil
}

func (cfg *Config) maxDatagramSize() int {
	if cfg.MaxDatagramSize == 0 {
		return defs.TransportMaxDatagramSize
	}
	return int(cfg.MaxDatagramSize.Bytes())
}
