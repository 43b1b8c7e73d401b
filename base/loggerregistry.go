package base

import (
	"strings"

	"github.com/puzpuzpuz/xsync"
)

// RootLoggerName is the name of the top logger in every registry
const RootLoggerName = "root"

// LoggerRegistry holds a hierarchy of named loggers, where dots in names separate levels
type LoggerRegistry struct {
	root    *EventLogger
	loggers *xsync.MapOf[*EventLogger]
}

var defaultRegistry = NewLoggerRegistry()

// NewLoggerRegistry creates a registry with a root logger at WARNING level
func NewLoggerRegistry() *LoggerRegistry {
	return &LoggerRegistry{
		root:    newEventLogger(RootLoggerName, nil, WARNING),
		loggers: xsync.NewMapOf[*EventLogger](),
	}
}

// DefaultRegistry returns the process-wide registry
func DefaultRegistry() *LoggerRegistry {
	return defaultRegistry
}

// Root returns the root logger of this registry
func (reg *LoggerRegistry) Root() *EventLogger {
	return reg.root
}

// GetLogger finds or creates the logger by dotted name, creating missing ancestors too
//
// Empty name or "root" returns the root logger. The same name always returns the same logger.
func (reg *LoggerRegistry) GetLogger(name string) *EventLogger {
	if name == "" || name == RootLoggerName {
		return reg.root
	}
	if lg, ok := reg.loggers.Load(name); ok {
		return lg
	}
	parent := reg.root
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		parent = reg.GetLogger(name[:dot])
	}
	lg, _ := reg.loggers.LoadOrStore(name, newEventLogger(name, parent, NOTSET))
	return lg
}

// LoggerNames lists the names of all non-root loggers created so far, in no particular order
func (reg *LoggerRegistry) LoggerNames() []string {
	var names []string
	reg.loggers.Range(func(name string, _ *EventLogger) bool {
		names = append(names, name)
		return true
	})
	return names
}

// GetLogger finds or creates the logger by dotted name in the default registry
func GetLogger(name string) *EventLogger {
	return defaultRegistry.GetLogger(name)
}

// Root returns the root logger of the default registry
func Root() *EventLogger {
	return defaultRegistry.root
}
