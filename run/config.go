package run

import (
	"fmt"

	"github.com/pcdshub/pcdslog/base/bconfig"
	"github.com/pcdshub/pcdslog/central"
	"github.com/pcdshub/pcdslog/demote"
	"github.com/pcdshub/pcdslog/util"
)

// Config defines the root of pcdslog config file
type Config struct {
	Central         central.Config                  `yaml:"central"`
	CaptureWarnings bool                            `yaml:"captureWarnings"` // send ShowWarning to the warnings logger
	Filters         []bconfig.LogFilterConfigHolder `yaml:"filters"`
}

func init() {
	demote.Register()
}

// DefaultConfig returns the configuration used without config file: built-in defaults and environment overrides
func DefaultConfig() *Config {
	return &Config{
		Central: central.DefaultConfig(),
	}
}

// LoadConfigFile loads config from the path, applies environment overrides and verifies the result
func LoadConfigFile(filepath string) (*Config, error) {
	cref := &Config{Central: central.BuiltinConfig()}
	if err := util.UnmarshalYamlFile(filepath, cref); err != nil {
		return nil, err
	}
	if err := finishConfig(cref); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath, err)
	}
	return cref, nil
}

// LoadConfigString is LoadConfigFile for config contents in string
func LoadConfigString(contents string) (*Config, error) {
	cref := &Config{Central: central.BuiltinConfig()}
	if err := util.UnmarshalYamlString(contents, cref); err != nil {
		return nil, err
	}
	if err := finishConfig(cref); err != nil {
		return nil, err
	}
	return cref, nil
}

func finishConfig(cref *Config) error {
	if err := cref.Central.ApplyEnvironment(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return VerifyConfig(cref)
}

// VerifyConfig verifies all sections
func VerifyConfig(cref *Config) error {
	if err := cref.Central.VerifyConfig(); err != nil {
		return fmt.Errorf("central%w", prefixError(err))
	}
	for i, holder := range cref.Filters {
		if err := holder.Value.VerifyConfig(); err != nil {
			return fmt.Errorf("filters[%d] (%s at %s)%w", i, holder.Value.GetType(), holder.Location, prefixError(err))
		}
	}
	return nil
}

type prefixedError struct {
	err error
}

func (e prefixedError) Error() string {
	message := e.err.Error()
	if len(message) > 0 && message[0] == '.' {
		return message
	}
	return ": " + message
}

func (e prefixedError) Unwrap() error {
	return e.err
}

// prefixError makes "section" + err read as "section.field: problem" or "section: problem"
func prefixError(err error) error {
	return prefixedError{err}
}
