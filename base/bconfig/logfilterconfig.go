package bconfig

import (
	"github.com/pcdshub/pcdslog/base"
)

// LogFilterConfig provides an interface to the configuration of filters installed on named loggers
type LogFilterConfig interface {
	BaseConfig

	// VerifyConfig checks configuration
	VerifyConfig() error

	// InstallFilter creates the filter and installs it on its logger from the given registry
	InstallFilter(loggers *base.LoggerRegistry) (InstalledFilter, error)
}

// InstalledFilter is a LogFilter attached to a logger, which can be detached later
type InstalledFilter interface {
	base.LogFilter

	// Uninstall detaches the filter. Calling it again has no effect.
	Uninstall()
}

// LogFilterConfigHolder holds a LogFilterConfig
type LogFilterConfigHolder = ConfigHolder[LogFilterConfig]

// LogFilterConfigCreatorTable provides a map of filter types to their config constructors
type LogFilterConfigCreatorTable = ConfigCreatorTable[LogFilterConfig]
