package run

import (
	"fmt"
	"sync"

	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/base/bconfig"
	"github.com/pcdshub/pcdslog/central"
	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/demote"
	"github.com/pcdshub/pcdslog/util"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
)

// SetupOptions contains optional parameters of Setup
type SetupOptions struct {
	Force         bool                  // install the central handler even if the host is outside of allowed domains
	Loggers       *base.LoggerRegistry  // nil for the default registry
	MetricCreator promreg.MetricCreator // nil for a new factory with prefix "pcdslog_"
	FQDN          string                // empty for the local host's name
}

// Session holds everything installed by Setup
type Session struct {
	Loggers       *base.LoggerRegistry
	Registry      *central.Registry
	CentralLogger *base.EventLogger
	Enabled       bool // whether the central handler is installed

	logger   logger.Logger
	lock     sync.Mutex
	config   *Config
	filters  []bconfig.InstalledFilter
	warnings *demote.Filter
	closed   bool
}

// Setup builds the central logger and installs the handler and filters by the given config
//
// The central handler is skipped when the host is not in the allowed domains, unless forced. Filters are installed
// regardless.
func Setup(cfg *Config, opts SetupOptions) (*Session, error) {
	loggers := opts.Loggers
	if loggers == nil {
		loggers = base.DefaultRegistry()
	}
	metricCreator := opts.MetricCreator
	if metricCreator == nil {
		metricCreator = promreg.NewMetricFactory("pcdslog_", nil, nil)
	}
	fqdn := opts.FQDN
	if fqdn == "" {
		fqdn = util.GetFullyQualifiedDomainName()
	}

	slogger := logger.WithField(defs.LabelComponent, "Session")
	centralLogger := central.NewCentralLogger(loggers)
	session := &Session{
		Loggers:       loggers,
		Registry:      central.NewRegistry(logger.Root(), centralLogger, metricCreator),
		CentralLogger: centralLogger,
		Enabled:       opts.Force || central.EnabledFor(fqdn, cfg.Central.AllowedDomains),
		logger:        slogger,
	}
	if !session.Enabled {
		slogger.Infof("central logging is disabled for host %s", fqdn)
	}

	if err := session.Reload(cfg); err != nil {
		session.Shutdown()
		return nil, err
	}
	setupCounter.Inc()
	return session, nil
}

// Config returns the config in effect
func (s *Session) Config() *Config {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.config
}

// Filters returns the filters installed by config
func (s *Session) Filters() []bconfig.InstalledFilter {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]bconfig.InstalledFilter(nil), s.filters...)
}

// WarningFilter returns the demoter of captured warnings, or nil if warnings are not captured
func (s *Session) WarningFilter() *demote.Filter {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.warnings
}

// Reload applies a new config to the session
//
// On error nothing installed before is changed: new filters are installed beside the old ones, then the central
// handler is replaced, and only then the old filters are removed.
func (s *Session) Reload(cfg *Config) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return fmt.Errorf("session is shut down")
	}

	newFilters := make([]bconfig.InstalledFilter, 0, len(cfg.Filters))
	abort := func() {
		for _, f := range newFilters {
			f.Uninstall()
		}
	}
	for i, holder := range cfg.Filters {
		filter, err := holder.Value.InstallFilter(s.Loggers)
		if err != nil {
			abort()
			return fmt.Errorf("filters[%d] (%s at %s): %w", i, holder.Value.GetType(), holder.Location, err)
		}
		newFilters = append(newFilters, filter)
	}

	if s.Enabled {
		if _, err := s.Registry.Install(cfg.Central); err != nil {
			abort()
			return fmt.Errorf("central: %w", err)
		}
	}

	for _, f := range s.filters {
		f.Uninstall()
	}
	s.filters = newFilters

	if err := s.applyWarningCapture(cfg.CaptureWarnings); err != nil {
		s.logger.Errorf("failed to apply captureWarnings: %s", err.Error())
	}

	s.config = cfg
	s.logger.Infof("applied config: %d filters, central=%t, captureWarnings=%t", len(newFilters), s.Enabled, cfg.CaptureWarnings)
	return nil
}

func (s *Session) applyWarningCapture(capture bool) error {
	switch {
	case capture && s.warnings == nil:
		target := s.Loggers.GetLogger(defs.CentralLoggerName + ".warnings")
		filter, err := demote.Install(demote.WarningPolicy{}, base.DEBUG, true, target)
		if err != nil {
			return fmt.Errorf("captureWarnings: %w", err)
		}
		central.InstallWarningHandler(target)
		s.warnings = filter
	case !capture && s.warnings != nil:
		central.UninstallWarningHandler()
		s.warnings.Uninstall()
		s.warnings = nil
	}
	return nil
}

// Shutdown uninstalls filters and warning capture, and stops the central handler after pending events are sent
//
// It's safe to call Shutdown multiple times
func (s *Session) Shutdown() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	_ = s.applyWarningCapture(false)
	for _, f := range s.filters {
		f.Uninstall()
	}
	s.filters = nil
	if s.Registry.Remove() {
		s.logger.Info("stopped central handler")
	}
}
