// Package dispatch moves log events off producer goroutines to a single worker which serializes and sends them
package dispatch

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/util"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
)

// Queue is a bounded FIFO of log events drained by exactly one worker goroutine, the sole user of the transport
//
// Producers never block: events are rejected when the queue is full or stopped.
type Queue struct {
	logger         logger.Logger
	serializer     base.LogSerializer
	transport      base.LogTransport
	events         chan *base.LogEvent
	closeLock      sync.RWMutex // held for reading by Enqueue, for writing to close the queue
	closed         bool
	stopRequest    *channels.SignalAwaitable
	stopped        *channels.SignalAwaitable
	requestStop    util.RunOnce
	metrics        queueMetrics
	lastDropReport atomic.Int64 // unix nanoseconds
	pendingDrops   atomic.Int64 // drops not yet reported in logs
}

// NewQueue creates a Queue and launches its worker
//
// The queue takes ownership of the serializer and transport; the transport is closed when the worker exits.
func NewQueue(parentLogger logger.Logger, serializer base.LogSerializer, transport base.LogTransport, capacity int,
	metricCreator promreg.MetricCreator) *Queue {

	if capacity <= 0 {
		capacity = defs.DispatchQueueSize
	}
	q := &Queue{
		logger:      parentLogger.WithField(defs.LabelComponent, "DispatchQueue"),
		serializer:  serializer,
		transport:   transport,
		events:      make(chan *base.LogEvent, capacity),
		stopRequest: channels.NewSignalAwaitable(),
		stopped:     channels.NewSignalAwaitable(),
		metrics:     newQueueMetrics(metricCreator),
	}
	q.requestStop = util.NewRunOnce(func() {
		// no Enqueue can be in flight once closed is set, so the worker's final drain sees every accepted event
		q.closeLock.Lock()
		q.closed = true
		q.closeLock.Unlock()
		q.stopRequest.Signal()
	})
	go q.run()
	return q
}

// Enqueue adds an event without blocking and returns false if the event is dropped
//
// The event must not be modified afterwards
func (q *Queue) Enqueue(event *base.LogEvent) bool {
	q.closeLock.RLock()
	defer q.closeLock.RUnlock()
	if q.closed {
		q.onDropped()
		return false
	}
	select {
	case q.events <- event:
		q.metrics.enqueuedEventsTotal.Inc()
		q.metrics.queuedEvents.Inc()
		return true
	default:
		q.onDropped()
		return false
	}
}

// Len returns the number of events waiting in queue
func (q *Queue) Len() int {
	return len(q.events)
}

// Stop requests the worker to drain pending events and close the transport, and waits for it up to
// defs.DispatchStopTimeout
//
// Stop can be called more than once; later calls only wait. Returns false on timeout.
func (q *Queue) Stop() bool {
	if q.requestStop() {
		q.logger.Infof("stop requested with queued=%d", len(q.events))
	}
	if !q.stopped.Wait(defs.DispatchStopTimeout) {
		q.logger.Warnf("timeout waiting for worker to stop, leaving queued=%d", len(q.events))
		return false
	}
	return true
}

// Stopped returns an Awaitable which is signaled when the worker has exited
func (q *Queue) Stopped() channels.Awaitable {
	return q.stopped
}

func (q *Queue) run() {
	defer q.stopped.Signal()
	defer q.transport.Close()
	q.logger.Info("started")
	stopSignal := q.stopRequest.Channel()
	for {
		select {
		case event := <-q.events:
			q.deliver(event)
		case <-stopSignal:
			q.drain()
			q.reportDrops(time.Now())
			q.logger.Info("stopped")
			return
		}
	}
}

func (q *Queue) drain() {
	for {
		select {
		case event := <-q.events:
			q.deliver(event)
		default:
			return
		}
	}
}

func (q *Queue) deliver(event *base.LogEvent) {
	q.metrics.queuedEvents.Dec()
	payload := q.serializer.SerializeEvent(event)
	if err := q.transport.Send(payload); err != nil {
		q.metrics.failedEventsTotal.Inc()
		return
	}
	q.metrics.sentEventsTotal.Inc()
}

func (q *Queue) onDropped() {
	q.metrics.droppedEventsTotal.Inc()
	q.pendingDrops.Add(1)
	now := time.Now()
	last := q.lastDropReport.Load()
	if now.UnixNano()-last < int64(defs.DispatchDropReportInterval) {
		return
	}
	if q.lastDropReport.CompareAndSwap(last, now.UnixNano()) {
		q.reportDrops(now)
	}
}

func (q *Queue) reportDrops(now time.Time) {
	if dropped := q.pendingDrops.Swap(0); dropped > 0 {
		q.logger.Warnf("dropped %d events (queue full or stopped, queued=%d)", dropped, len(q.events))
		q.lastDropReport.Store(now.UnixNano())
	}
}
