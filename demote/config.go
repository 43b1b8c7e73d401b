package demote

import (
	"fmt"
	"sync"

	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/base/bconfig"
)

// FilterConfig defines the common parts of demotion filter configs
type FilterConfig struct {
	bconfig.Header `yaml:",inline"`
	Logger         string      `yaml:"logger"`         // logger to install on, the policy default if empty
	Level          interface{} `yaml:"level"`          // level to demote to, DEBUG if unset
	OnlyDuplicates *bool       `yaml:"onlyDuplicates"` // true if unset
}

// MessageDemoterConfig defines the config of a filter with MessagePolicy
type MessageDemoterConfig struct {
	FilterConfig `yaml:",inline"`
	Match        string `yaml:"match"` // glob pattern of messages, all messages if empty
}

// WarningDemoterConfig defines the config of a filter with WarningPolicy
type WarningDemoterConfig struct {
	FilterConfig `yaml:",inline"`
}

// CallbackExceptionDemoterConfig defines the config of a filter with CallbackExceptionPolicy
type CallbackExceptionDemoterConfig struct {
	FilterConfig `yaml:",inline"`
}

var registerOnce sync.Once

// Register registers the config types of demotion filters
func Register() {
	registerOnce.Do(func() {
		bconfig.RegisterConfigConstructors(bconfig.LogFilterConfigCreatorTable{
			"messageDemoter":           func() bconfig.LogFilterConfig { return &MessageDemoterConfig{} },
			"warningDemoter":           func() bconfig.LogFilterConfig { return &WarningDemoterConfig{} },
			"callbackExceptionDemoter": func() bconfig.LogFilterConfig { return &CallbackExceptionDemoterConfig{} },
		})
	})
}

// VerifyConfig checks configuration
func (cfg *FilterConfig) VerifyConfig() error {
	if _, err := cfg.level(); err != nil {
		return fmt.Errorf(".level: %w", err)
	}
	return nil
}

// VerifyConfig checks configuration
func (cfg *MessageDemoterConfig) VerifyConfig() error {
	if err := cfg.FilterConfig.VerifyConfig(); err != nil {
		return err
	}
	if _, err := NewMessagePolicy(cfg.Match); err != nil {
		return fmt.Errorf(".match: %w", err)
	}
	return nil
}

// InstallFilter creates the filter and installs it
func (cfg *MessageDemoterConfig) InstallFilter(loggers *base.LoggerRegistry) (bconfig.InstalledFilter, error) {
	policy, err := NewMessagePolicy(cfg.Match)
	if err != nil {
		return nil, err
	}
	return cfg.install(policy, loggers)
}

// InstallFilter creates the filter and installs it
func (cfg *WarningDemoterConfig) InstallFilter(loggers *base.LoggerRegistry) (bconfig.InstalledFilter, error) {
	return cfg.install(WarningPolicy{}, loggers)
}

// InstallFilter creates the filter and installs it
func (cfg *CallbackExceptionDemoterConfig) InstallFilter(loggers *base.LoggerRegistry) (bconfig.InstalledFilter, error) {
	return cfg.install(CallbackExceptionPolicy{}, loggers)
}

func (cfg *FilterConfig) install(policy Policy, loggers *base.LoggerRegistry) (bconfig.InstalledFilter, error) {
	level, err := cfg.level()
	if err != nil {
		return nil, err
	}
	name := cfg.Logger
	if name == "" {
		name = policy.DefaultLoggerName()
	}
	onlyDuplicates := cfg.OnlyDuplicates == nil || *cfg.OnlyDuplicates
	filter, err := Install(policy, level, onlyDuplicates, loggers.GetLogger(name))
	if err != nil {
		return nil, err
	}
	return filter, nil
}

func (cfg *FilterConfig) level() (base.Level, error) {
	if cfg.Level == nil {
		return base.DEBUG, nil
	}
	return base.ValidateLevel(cfg.Level)
}
