package central

import (
	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/output/dispatch"
	"github.com/relex/gotils/channels"
)

// Handler is the LogHandler forwarding events to the central collector through its own dispatch queue
type Handler struct {
	level  base.Level
	config Config
	queue  *dispatch.Queue
}

// Level returns the minimum level of forwarded events
func (h *Handler) Level() base.Level {
	return h.level
}

// Handle renders the message, exception text and extras on a copy of the event in the calling goroutine, and queues
// the copy. It never blocks.
func (h *Handler) Handle(event *base.LogEvent) {
	dup := event.Copy()
	dup.Detach()
	h.queue.Enqueue(dup)
}

// Config returns the configuration this handler was installed with
func (h *Handler) Config() Config {
	return h.config
}

// Stop drains queued events and closes the connection. It can be called more than once.
func (h *Handler) Stop() {
	h.queue.Stop()
}

// Stopped returns an Awaitable signaled when the dispatch worker has exited
func (h *Handler) Stopped() channels.Awaitable {
	return h.queue.Stopped()
}
