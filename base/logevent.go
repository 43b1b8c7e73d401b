package base

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// LogEvent is one occurrence of a log call
//
// Events are shared by all filters and handlers on the way. Filters may change the level in place; handlers that need
// to modify anything else must work on a Copy.
type LogEvent struct {
	Time          time.Time
	Level         Level
	LevelName     string
	LoggerName    string
	Template      string        // message template, before Args are applied
	Args          []interface{} // format arguments for Template
	Exception     *ExceptionInfo
	ExceptionText string // rendered exception, filled by the emitting handler
	Pathname      string
	Filename      string
	Line          int
	Function      string
	ProcessID     int
	ProcessName   string
	GoroutineID   int64
	GoroutineName string
	Extra         map[string]interface{} // caller-supplied fields, e.g. for filters to inspect without parsing the message
}

// ExceptionInfo captures an error attached to a log event
type ExceptionInfo struct {
	Type  string // Go type of the error, e.g. "*fs.PathError"
	Value string // error message
	Stack string // stack of the goroutine which logged the error
	Err   error  // the original error, not to be used across goroutines
}

// ExceptionInfoFromError captures the given error and the current stack, or returns nil for nil error
func ExceptionInfoFromError(err error) *ExceptionInfo {
	if err == nil {
		return nil
	}
	return &ExceptionInfo{
		Type:  fmt.Sprintf("%T", err),
		Value: err.Error(),
		Stack: string(debug.Stack()),
		Err:   err,
	}
}

// Render formats the exception as "<type>: <value>" followed by the captured stack
func (info *ExceptionInfo) Render() string {
	var builder strings.Builder
	builder.WriteString(info.Type)
	builder.WriteString(": ")
	builder.WriteString(info.Value)
	if info.Stack != "" {
		builder.WriteByte('\n')
		builder.WriteString(strings.TrimRight(info.Stack, "\n"))
	}
	return builder.String()
}

// Message returns the template with format arguments applied
func (event *LogEvent) Message() string {
	if len(event.Args) == 0 {
		return event.Template
	}
	return fmt.Sprintf(event.Template, event.Args...)
}

// SetLevel changes the level and its name together
func (event *LogEvent) SetLevel(level Level) {
	event.Level = level
	event.LevelName = LevelName(level)
}

// Copy makes a shallow copy with its own Extra map, so that the copy can be changed without affecting other consumers
func (event *LogEvent) Copy() *LogEvent {
	dup := *event
	if event.Extra != nil {
		dup.Extra = make(map[string]interface{}, len(event.Extra))
		for k, v := range event.Extra {
			dup.Extra[k] = v
		}
	}
	return &dup
}

// RenderExceptionText fills ExceptionText from Exception if not done yet
func (event *LogEvent) RenderExceptionText() {
	if event.Exception != nil && event.ExceptionText == "" {
		event.ExceptionText = event.Exception.Render()
	}
}

// Detach renders the message, exception text and extra values of an event copy, so that it no longer refers to data
// owned by the caller and can be passed to other goroutines
//
// Template becomes the rendered message with no Args. Extra values other than strings, booleans and numbers are
// replaced by their fmt.Sprint forms.
func (event *LogEvent) Detach() {
	event.Template = event.Message()
	event.Args = nil
	event.RenderExceptionText()
	for key, value := range event.Extra {
		event.Extra[key] = detachValue(value)
	}
}

func detachValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}
