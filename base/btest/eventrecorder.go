package btest

import (
	"sync"
	"time"

	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/defs"
)

// EventRecorder is a LogHandler collecting copies of incoming events for testing purpose
type EventRecorder struct {
	level  base.Level
	lock   sync.Mutex
	events []*base.LogEvent
	notify chan struct{}
}

// NewEventRecorder creates an EventRecorder accepting events at or above the given level
func NewEventRecorder(level base.Level) *EventRecorder {
	return &EventRecorder{
		level:  level,
		notify: make(chan struct{}, 1),
	}
}

// Level returns the minimum level of recorded events
func (rec *EventRecorder) Level() base.Level {
	return rec.level
}

// Handle stores a copy of the event
func (rec *EventRecorder) Handle(event *base.LogEvent) {
	rec.lock.Lock()
	rec.events = append(rec.events, event.Copy())
	rec.lock.Unlock()
	select {
	case rec.notify <- struct{}{}:
	default:
	}
}

// Events returns all events recorded so far
func (rec *EventRecorder) Events() []*base.LogEvent {
	rec.lock.Lock()
	defer rec.lock.Unlock()
	return append([]*base.LogEvent(nil), rec.events...)
}

// Levels returns the levels of all events recorded so far
func (rec *EventRecorder) Levels() []base.Level {
	events := rec.Events()
	levels := make([]base.Level, len(events))
	for i, event := range events {
		levels[i] = event.Level
	}
	return levels
}

// Messages returns the formatted messages of all events recorded so far
func (rec *EventRecorder) Messages() []string {
	events := rec.Events()
	messages := make([]string, len(events))
	for i, event := range events {
		messages[i] = event.Message()
	}
	return messages
}

// WaitFor waits until at least n events are recorded or defs.TestReadTimeout passes, and returns recorded events
func (rec *EventRecorder) WaitFor(n int) []*base.LogEvent {
	deadline := time.After(defs.TestReadTimeout)
	for {
		if events := rec.Events(); len(events) >= n {
			return events
		}
		select {
		case <-rec.notify:
		case <-deadline:
			return rec.Events()
		}
	}
}

// Reset discards recorded events
func (rec *EventRecorder) Reset() {
	rec.lock.Lock()
	rec.events = nil
	rec.lock.Unlock()
}
