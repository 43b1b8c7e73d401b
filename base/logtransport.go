package base

// LogTransport delivers serialized events to a remote collector
//
// A transport is owned by exactly one goroutine and doesn't need to be thread-safe
type LogTransport interface {
	// Send delivers one payload at most once. Failures are returned for accounting, not for retry.
	Send(payload []byte) error

	// Close releases the underlying connection. It may be called more than once.
	Close()
}
