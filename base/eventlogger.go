package base

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/pcdshub/pcdslog/util"
	"golang.org/x/exp/slices"
)

var (
	processID   = os.Getpid()
	processName = filepath.Base(os.Args[0])
)

// EventLogger is a named logger in a hierarchy, dispatching events through its filters to the handlers of itself and
// its ancestors
//
// Filters and handlers are replaced copy-on-write, so log calls never wait for configuration changes
type EventLogger struct {
	name      string
	parent    *EventLogger
	level     atomic.Int32
	propagate atomic.Bool
	filters   util.AtomicRef[[]LogFilter]
	handlers  util.AtomicRef[[]LogHandler]
}

func newEventLogger(name string, parent *EventLogger, level Level) *EventLogger {
	lg := &EventLogger{
		name:   name,
		parent: parent,
	}
	lg.level.Store(int32(level))
	lg.propagate.Store(true)
	return lg
}

// Name returns the dotted name of this logger
func (lg *EventLogger) Name() string {
	return lg.name
}

// Parent returns the parent logger, nil for root
func (lg *EventLogger) Parent() *EventLogger {
	return lg.parent
}

// Level returns the level set on this logger, NOTSET if it inherits from the parent
func (lg *EventLogger) Level() Level {
	return Level(lg.level.Load())
}

// SetLevel sets the minimum level of this logger, NOTSET to inherit from the parent
func (lg *EventLogger) SetLevel(level Level) {
	lg.level.Store(int32(level))
}

// EffectiveLevel returns the first level set on this logger or its ancestors
func (lg *EventLogger) EffectiveLevel() Level {
	for l := lg; l != nil; l = l.parent {
		if level := l.Level(); level != NOTSET {
			return level
		}
	}
	return NOTSET
}

// IsEnabledFor checks whether events of the given level would be processed by this logger
func (lg *EventLogger) IsEnabledFor(level Level) bool {
	return level >= lg.EffectiveLevel()
}

// Propagate tells whether events are passed to the handlers of ancestors
func (lg *EventLogger) Propagate() bool {
	return lg.propagate.Load()
}

// SetPropagate sets whether events are passed to the handlers of ancestors
func (lg *EventLogger) SetPropagate(propagate bool) {
	lg.propagate.Store(propagate)
}

// AddFilter appends a filter. Adding the same filter twice has no effect.
func (lg *EventLogger) AddFilter(filter LogFilter) {
	lg.filters.Update(func(current *[]LogFilter) *[]LogFilter {
		var list []LogFilter
		if current != nil {
			if slices.Contains(*current, filter) {
				return current
			}
			list = append(list, *current...)
		}
		list = append(list, filter)
		return &list
	})
}

// RemoveFilter removes a filter by identity and returns whether it was present
func (lg *EventLogger) RemoveFilter(filter LogFilter) bool {
	removed := false
	lg.filters.Update(func(current *[]LogFilter) *[]LogFilter {
		removed = false
		if current == nil {
			return current
		}
		index := slices.Index(*current, filter)
		if index == -1 {
			return current
		}
		removed = true
		list := slices.Delete(slices.Clone(*current), index, index+1)
		return &list
	})
	return removed
}

// Filters returns a snapshot of the installed filters
func (lg *EventLogger) Filters() []LogFilter {
	if list := lg.filters.Get(); list != nil {
		return *list
	}
	return nil
}

// AddHandler appends a handler. Adding the same handler twice has no effect.
func (lg *EventLogger) AddHandler(handler LogHandler) {
	lg.handlers.Update(func(current *[]LogHandler) *[]LogHandler {
		var list []LogHandler
		if current != nil {
			if slices.Contains(*current, handler) {
				return current
			}
			list = append(list, *current...)
		}
		list = append(list, handler)
		return &list
	})
}

// RemoveHandler removes a handler by identity and returns whether it was present
func (lg *EventLogger) RemoveHandler(handler LogHandler) bool {
	removed := false
	lg.handlers.Update(func(current *[]LogHandler) *[]LogHandler {
		removed = false
		if current == nil {
			return current
		}
		index := slices.Index(*current, handler)
		if index == -1 {
			return current
		}
		removed = true
		list := slices.Delete(slices.Clone(*current), index, index+1)
		return &list
	})
	return removed
}

// HasHandler checks whether the handler is attached to this logger (not ancestors)
func (lg *EventLogger) HasHandler(handler LogHandler) bool {
	return slices.Contains(lg.Handlers(), handler)
}

// Handlers returns a snapshot of the handlers attached to this logger
func (lg *EventLogger) Handlers() []LogHandler {
	if list := lg.handlers.Get(); list != nil {
		return *list
	}
	return nil
}

// Log logs a message template with arguments at the given level
func (lg *EventLogger) Log(level Level, template string, args ...interface{}) {
	lg.LogDepth(1, level, nil, nil, template, args...)
}

// Debugf logs at DEBUG level
func (lg *EventLogger) Debugf(template string, args ...interface{}) {
	lg.LogDepth(1, DEBUG, nil, nil, template, args...)
}

// Infof logs at INFO level
func (lg *EventLogger) Infof(template string, args ...interface{}) {
	lg.LogDepth(1, INFO, nil, nil, template, args...)
}

// Warnf logs at WARNING level
func (lg *EventLogger) Warnf(template string, args ...interface{}) {
	lg.LogDepth(1, WARNING, nil, nil, template, args...)
}

// Errorf logs at ERROR level
func (lg *EventLogger) Errorf(template string, args ...interface{}) {
	lg.LogDepth(1, ERROR, nil, nil, template, args...)
}

// Criticalf logs at CRITICAL level
func (lg *EventLogger) Criticalf(template string, args ...interface{}) {
	lg.LogDepth(1, CRITICAL, nil, nil, template, args...)
}

// Exception logs at ERROR level with the given error attached as exception info
func (lg *EventLogger) Exception(err error, template string, args ...interface{}) {
	lg.LogDepth(1, ERROR, ExceptionInfoFromError(err), nil, template, args...)
}

// WithExtra returns an entry which logs with the given extra fields
func (lg *EventLogger) WithExtra(extra map[string]interface{}) *EventEntry {
	return &EventEntry{logger: lg, extra: extra}
}

// LogDepth logs with provenance taken from the caller "depth" frames above the caller of LogDepth
//
// It's meant for helpers which log on behalf of their callers
func (lg *EventLogger) LogDepth(depth int, level Level, exception *ExceptionInfo, extra map[string]interface{},
	template string, args ...interface{}) {

	if !lg.IsEnabledFor(level) {
		return
	}
	event := lg.NewEvent(level, exception, extra, template, args...)
	if pc, file, line, ok := runtime.Caller(depth + 1); ok {
		event.SetCaller(pc, file, line)
	}
	lg.LogEvent(event)
}

// NewEvent creates an event of this logger without provenance
func (lg *EventLogger) NewEvent(level Level, exception *ExceptionInfo, extra map[string]interface{},
	template string, args ...interface{}) *LogEvent {

	goroutineID := util.CurrentGoroutineID()
	return &LogEvent{
		Time:          time.Now(),
		Level:         level,
		LevelName:     LevelName(level),
		LoggerName:    lg.name,
		Template:      template,
		Args:          args,
		Exception:     exception,
		ProcessID:     processID,
		ProcessName:   processName,
		GoroutineID:   goroutineID,
		GoroutineName: fmt.Sprintf("goroutine-%d", goroutineID),
		Extra:         extra,
	}
}

// SetCaller sets provenance fields from a program counter and source location
func (event *LogEvent) SetCaller(pc uintptr, file string, line int) {
	event.Pathname = file
	event.Filename = filepath.Base(file)
	event.Line = line
	if fn := runtime.FuncForPC(pc); fn != nil {
		event.Function = fn.Name()
	}
}

// LogEvent runs the event through the filters of this logger and passes it to handlers, without checking level
func (lg *EventLogger) LogEvent(event *LogEvent) {
	for _, filter := range lg.Filters() {
		if filter.Filter(event) == DROP {
			return
		}
	}
	for l := lg; l != nil; l = l.parent {
		for _, handler := range l.Handlers() {
			if event.Level >= handler.Level() {
				handler.Handle(event)
			}
		}
		if !l.Propagate() {
			break
		}
	}
}

// EventEntry logs through an EventLogger with fixed extra fields
type EventEntry struct {
	logger *EventLogger
	extra  map[string]interface{}
}

// Log logs a message template with arguments at the given level
func (entry *EventEntry) Log(level Level, template string, args ...interface{}) {
	entry.logger.LogDepth(1, level, nil, entry.extra, template, args...)
}

// Warnf logs at WARNING level
func (entry *EventEntry) Warnf(template string, args ...interface{}) {
	entry.logger.LogDepth(1, WARNING, nil, entry.extra, template, args...)
}

// Errorf logs at ERROR level
func (entry *EventEntry) Errorf(template string, args ...interface{}) {
	entry.logger.LogDepth(1, ERROR, nil, entry.extra, template, args...)
}

// Exception logs at ERROR level with the given error attached as exception info
func (entry *EventEntry) Exception(err error, template string, args ...interface{}) {
	entry.logger.LogDepth(1, ERROR, ExceptionInfoFromError(err), entry.extra, template, args...)
}
