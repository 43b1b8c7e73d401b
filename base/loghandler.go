package base

// LogHandler receives log events which have passed the filters of a logger
type LogHandler interface {
	// Level returns the minimum level of events accepted by this handler
	Level() Level

	// Handle processes the given event, which must not be modified
	//
	// Handle is called on the goroutine of the log call and must not block
	Handle(event *LogEvent)
}
