package base

// LogFilter inspects log events before they reach handlers
//
// Filters run synchronously on the goroutine of the log call and must be safe for concurrent use
type LogFilter interface {

	// Filter returns PASS or DROP for the given event, which may be modified in-place
	Filter(event *LogEvent) FilterResult
}

// LogFilterFunc adapts a function to LogFilter
//
// Function values are not comparable; wrap it in a pointer to be able to remove the filter later
type LogFilterFunc func(event *LogEvent) FilterResult

// Filter calls the function itself
func (f LogFilterFunc) Filter(event *LogEvent) FilterResult {
	return f(event)
}

// FilterResult defines the result of filtering, pass (true) or drop (false)
type FilterResult bool

// PASS means the event continues to the next filter and handlers
const PASS FilterResult = true

// DROP means the event is discarded
const DROP FilterResult = false
