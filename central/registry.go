// Package central ships log events to the central collector through exactly one active handler at a time
package central

import (
	"sync"

	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/output/dispatch"
	"github.com/pcdshub/pcdslog/output/jsonevent"
	"github.com/pcdshub/pcdslog/output/socketoutput"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
)

// Registry tracks the current central Handler of a target logger
//
// Installing a new handler detaches and stops the previous one, so that no more than one dispatch worker and one
// connection are active per registry
type Registry struct {
	logger        logger.Logger
	target        *base.EventLogger
	metricCreator promreg.MetricCreator
	lock          sync.Mutex
	current       *Handler
}

// NewRegistry creates a Registry for handlers on the target logger
func NewRegistry(parentLogger logger.Logger, target *base.EventLogger, metricCreator promreg.MetricCreator) *Registry {
	return &Registry{
		logger: parentLogger.WithFields(logger.Fields{
			defs.LabelComponent: "CentralRegistry",
			defs.LabelLogger:    target.Name(),
		}),
		target:        target,
		metricCreator: metricCreator,
	}
}

// Target returns the logger handlers are installed on
func (reg *Registry) Target() *base.EventLogger {
	return reg.target
}

// Install connects to the collector and replaces the current handler by a new one
//
// Invalid level or connection errors are returned without touching the current handler. The target logger's level
// is lowered to the handler's level if it was less permissive, never raised.
func (reg *Registry) Install(cfg Config) (*Handler, error) {
	level, err := cfg.ResolveLevel()
	if err != nil {
		return nil, err
	}
	transport, err := socketoutput.Open(reg.logger, cfg.transportConfig(), reg.metricCreator)
	if err != nil {
		return nil, err
	}
	handler := &Handler{
		level:  level,
		config: cfg,
		queue:  dispatch.NewQueue(reg.logger, jsonevent.NewEventSerializer(reg.logger), transport, cfg.QueueSize, reg.metricCreator),
	}

	reg.lock.Lock()
	defer reg.lock.Unlock()
	if previous := reg.current; previous != nil {
		reg.target.RemoveHandler(previous)
		previous.Stop()
		reg.logger.Infof("replaced handler for %s", previous.config.Address())
	}
	reg.target.AddHandler(handler)
	reg.current = handler
	if reg.target.EffectiveLevel() > level {
		reg.target.SetLevel(level)
	}
	reg.logger.Infof("installed handler for %s %s level=%s", cfg.Protocol, cfg.Address(), level)
	return handler, nil
}

// CurrentHandler returns the handler installed by the last Install, or nil
func (reg *Registry) CurrentHandler() *Handler {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	return reg.current
}

// Remove detaches and stops the current handler, and returns whether there was one
func (reg *Registry) Remove() bool {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	if reg.current == nil {
		return false
	}
	reg.target.RemoveHandler(reg.current)
	reg.current.Stop()
	reg.current = nil
	return true
}

// NewCentralLogger returns the "pcds-logging" logger of the given registry, with propagation to ancestors disabled
func NewCentralLogger(loggers *base.LoggerRegistry) *base.EventLogger {
	lg := loggers.GetLogger(defs.CentralLoggerName)
	lg.SetPropagate(false)
	return lg
}
