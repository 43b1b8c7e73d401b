package demote

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/defs"
)

// Extra keys set by warning capture and by device object loggers
const (
	ExtraWarningMessage  = "warning_message"
	ExtraWarningCategory = "warning_category"
	ExtraWarningFilename = "warning_filename"
	ExtraWarningLineno   = "warning_lineno"
	ExtraObjectName      = "ophyd_object_name"
)

// CallbackExceptionTemplate is the message template used by device objects to log exceptions from subscriptions
const CallbackExceptionTemplate = "Subscription %s callback exception"

// Policy decides which events a Filter considers, and how they are fingerprinted
//
// The set of policies is closed: MessagePolicy, WarningPolicy and CallbackExceptionPolicy
type Policy interface {
	// Name returns the config type name of this policy
	Name() string

	// DefaultLoggerName returns the logger to install on when none is given
	DefaultLoggerName() string

	// ExtractKey derives the fingerprint, or returns false if the event isn't of the expected shape
	ExtractKey(event *base.LogEvent) (RecordKey, bool)

	// ShouldDemote tells whether a matching event is subject to demotion at all
	ShouldDemote(event *base.LogEvent, key RecordKey) bool

	policy()
}

// MessagePolicy fingerprints events by message template, optionally restricted to messages matching a glob pattern
type MessagePolicy struct {
	pattern     string
	matcher     glob.Glob
	defaultName string
}

// NewMessagePolicy creates a MessagePolicy for messages matching the glob pattern, or for all messages if empty
func NewMessagePolicy(pattern string) (*MessagePolicy, error) {
	p := &MessagePolicy{pattern: pattern}
	if pattern != "" {
		matcher, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		p.matcher = matcher
	}
	return p, nil
}

// Name returns "messageDemoter"
func (p *MessagePolicy) Name() string {
	return "messageDemoter"
}

// DefaultLoggerName returns the root logger
func (p *MessagePolicy) DefaultLoggerName() string {
	return base.RootLoggerName
}

// Pattern returns the glob pattern, empty if unrestricted
func (p *MessagePolicy) Pattern() string {
	return p.pattern
}

// ExtractKey always succeeds
func (p *MessagePolicy) ExtractKey(event *base.LogEvent) (RecordKey, bool) {
	return MessageKey{Message: event.Template}, true
}

// ShouldDemote matches the formatted message against the pattern
func (p *MessagePolicy) ShouldDemote(event *base.LogEvent, key RecordKey) bool {
	if p.matcher == nil {
		return true
	}
	return p.matcher.Match(event.Message())
}

func (p *MessagePolicy) policy() {}

// WarningPolicy fingerprints captured warnings by message, category and origin; every warning is subject to demotion
type WarningPolicy struct{}

// Name returns "warningDemoter"
func (WarningPolicy) Name() string {
	return "warningDemoter"
}

// DefaultLoggerName returns the logger of captured warnings
func (WarningPolicy) DefaultLoggerName() string {
	return defs.WarningsLoggerName
}

// ExtractKey requires the extra fields set by warning capture
func (WarningPolicy) ExtractKey(event *base.LogEvent) (RecordKey, bool) {
	message, ok1 := event.Extra[ExtraWarningMessage]
	category, ok2 := event.Extra[ExtraWarningCategory]
	filename, ok3 := event.Extra[ExtraWarningFilename].(string)
	lineno, ok4 := event.Extra[ExtraWarningLineno].(int)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, false
	}
	return WarningKey{
		Message:  fmt.Sprint(message),
		Category: fmt.Sprint(category),
		Filename: filename,
		Lineno:   lineno,
	}, true
}

// ShouldDemote always returns true
func (WarningPolicy) ShouldDemote(event *base.LogEvent, key RecordKey) bool {
	return true
}

func (WarningPolicy) policy() {}

// CallbackExceptionPolicy fingerprints exceptions from subscription callbacks of device objects
type CallbackExceptionPolicy struct{}

// Name returns "callbackExceptionDemoter"
func (CallbackExceptionPolicy) Name() string {
	return "callbackExceptionDemoter"
}

// DefaultLoggerName returns the logger of device objects
func (CallbackExceptionPolicy) DefaultLoggerName() string {
	return defs.CallbackExceptionLoggerName
}

// ExtractKey requires the object name in extra fields
func (CallbackExceptionPolicy) ExtractKey(event *base.LogEvent) (RecordKey, bool) {
	objectName, ok := event.Extra[ExtraObjectName].(string)
	if !ok {
		return nil, false
	}
	key := CallbackExceptionKey{
		Message:    event.Template,
		Pathname:   event.Pathname,
		ObjectName: objectName,
	}
	if event.Exception != nil {
		key.ExceptionType = event.Exception.Type
	}
	return key, true
}

// ShouldDemote matches the callback exception template
func (CallbackExceptionPolicy) ShouldDemote(event *base.LogEvent, key RecordKey) bool {
	return strings.Contains(key.(CallbackExceptionKey).Message, CallbackExceptionTemplate)
}

func (CallbackExceptionPolicy) policy() {}
