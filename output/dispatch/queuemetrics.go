package dispatch

import (
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
)

type queueMetrics struct {
	queuedEvents        promext.RWGauge
	enqueuedEventsTotal promext.RWCounter
	droppedEventsTotal  promext.RWCounter
	sentEventsTotal     promext.RWCounter
	failedEventsTotal   promext.RWCounter
}

func newQueueMetrics(metricCreator promreg.MetricCreator) queueMetrics {
	dispatchMetricCreator := metricCreator.AddOrGetPrefix("dispatch_", nil, nil)
	metrics := queueMetrics{
		queuedEvents:        dispatchMetricCreator.AddOrGetGauge("queued_events", "Numbers of events waiting in queue", nil, nil),
		enqueuedEventsTotal: dispatchMetricCreator.AddOrGetCounter("enqueued_events_total", "Numbers of accepted events", nil, nil),
		droppedEventsTotal:  dispatchMetricCreator.AddOrGetCounter("dropped_events_total", "Numbers of events rejected because the queue was full or stopped", nil, nil),
		sentEventsTotal:     dispatchMetricCreator.AddOrGetCounter("sent_events_total", "Numbers of events handed to transport successfully", nil, nil),
		failedEventsTotal:   dispatchMetricCreator.AddOrGetCounter("failed_events_total", "Numbers of events lost due to transport errors", nil, nil),
	}
	// reset gauge in case metricCreator is reused by a replacement queue
	metrics.queuedEvents.Set(0)
	return metrics
}
