package base

// LogSerializer serializes log events into a wire format, e.g. JSON
type LogSerializer interface {
	// SerializeEvent serializes the given event
	//
	// Output is transient and only usable before the next call
	SerializeEvent(event *LogEvent) []byte
}
