package central

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/output/socketoutput"
	"github.com/relex/gotils/logger"
)

// Config defines the central collector and the handler installed for it
type Config struct {
	Host            string            `yaml:"host"`
	Port            int               `yaml:"port"`
	Protocol        string            `yaml:"protocol"`
	Level           interface{}       `yaml:"level"` // level name or number, see base.ValidateLevel
	QueueSize       int               `yaml:"queueSize"`
	MaxDatagramSize datasize.ByteSize `yaml:"maxDatagramSize"`
	AllowedDomains  []string          `yaml:"allowedDomains"`
}

// BuiltinConfig returns the built-in defaults without environment overrides
func BuiltinConfig() Config {
	return Config{
		Host:           defs.DefaultLogHost,
		Port:           defs.DefaultLogPort,
		Protocol:       defs.DefaultLogProto,
		Level:          defs.DefaultLevelName,
		QueueSize:      defs.DispatchQueueSize,
		AllowedDomains: strings.Fields(defs.DefaultAllowedDomains),
	}
}

// DefaultConfig returns the built-in defaults overridden by environment variables
//
// Invalid environment values are reported in logs and ignored
func DefaultConfig() Config {
	cfg := BuiltinConfig()
	if err := cfg.ApplyEnvironment(); err != nil {
		logger.Warnf("ignored invalid environment: %s", err.Error())
	}
	return cfg
}

// ApplyEnvironment overrides fields by PCDS_LOG_HOST, PCDS_LOG_PORT, PCDS_LOG_PROTO and PCDS_LOG_DOMAINS if set
//
// All valid overrides are applied even if an error is returned
func (cfg *Config) ApplyEnvironment() error {
	var firstErr error
	if host, ok := os.LookupEnv(defs.EnvLogHost); ok && host != "" {
		cfg.Host = host
	}
	if portText, ok := os.LookupEnv(defs.EnvLogPort); ok && portText != "" {
		port, err := strconv.Atoi(portText)
		if err != nil {
			firstErr = fmt.Errorf("%s=%q: %w", defs.EnvLogPort, portText, err)
		} else {
			cfg.Port = port
		}
	}
	if protocol, ok := os.LookupEnv(defs.EnvLogProto); ok && protocol != "" {
		cfg.Protocol = protocol
	}
	if domains, ok := os.LookupEnv(defs.EnvLogDomains); ok {
		cfg.AllowedDomains = strings.Fields(domains)
	}
	return firstErr
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Host) == 0 {
		return fmt.Errorf(".host is unspecified")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf(".port is invalid: %d", cfg.Port)
	}
	if _, err := socketoutput.ParseProtocol(cfg.Protocol); err != nil {
		return fmt.Errorf(".protocol: %w", err)
	}
	if _, err := cfg.ResolveLevel(); err != nil {
		return fmt.Errorf(".level: %w", err)
	}
	if cfg.QueueSize < 0 {
		return fmt.Errorf(".queueSize is negative: %d", cfg.QueueSize)
	}
	return nil
}

// ResolveLevel validates the level, DEBUG if unset
func (cfg *Config) ResolveLevel() (base.Level, error) {
	if cfg.Level == nil {
		return base.ValidateLevel(defs.DefaultLevelName)
	}
	return base.ValidateLevel(cfg.Level)
}

// Address returns "host:port"
func (cfg *Config) Address() string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

func (cfg *Config) transportConfig() socketoutput.Config {
	return socketoutput.Config{
		Protocol:        cfg.Protocol,
		Address:         cfg.Address(),
		MaxDatagramSize: cfg.MaxDatagramSize,
	}
}
