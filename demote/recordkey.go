package demote

// RecordKey is the fingerprint of a recurring event, one of MessageKey, WarningKey or CallbackExceptionKey
//
// Keys are comparable values; two events with equal keys are considered the same recurring problem
type RecordKey interface {
	recordKey()
}

// MessageKey identifies events by their message template
type MessageKey struct {
	Message string
}

// WarningKey identifies captured warnings by message and origin
type WarningKey struct {
	Message  string
	Category string
	Filename string
	Lineno   int
}

// CallbackExceptionKey identifies exceptions raised from callbacks of a named device object
type CallbackExceptionKey struct {
	Message       string
	Pathname      string
	ExceptionType string // empty if the event carries no exception
	ObjectName    string
}

func (MessageKey) recordKey()           {}
func (WarningKey) recordKey()           {}
func (CallbackExceptionKey) recordKey() {}
