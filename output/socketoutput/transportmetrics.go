package socketoutput

import (
	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/util"
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
)

// transportMetrics counts deliveries and failures of one transport
type transportMetrics struct {
	sentPayloadsTotal     promext.RWCounter
	sentBytesTotal        promext.RWCounter
	networkErrorsTotal    promext.RWCounter
	nonNetworkErrorsTotal promext.RWCounter
	reconnectsTotal       promext.RWCounter
	skippedPayloadsTotal  promext.RWCounter
}

func newTransportMetrics(metricCreator promreg.MetricCreator, protocol Protocol) transportMetrics {
	transportMetricCreator := metricCreator.AddOrGetPrefix("transport_", []string{defs.LabelProtocol}, []string{string(protocol)})
	return transportMetrics{
		sentPayloadsTotal:     transportMetricCreator.AddOrGetCounter("sent_payloads_total", "Numbers of payloads written to the collector", nil, nil),
		sentBytesTotal:        transportMetricCreator.AddOrGetCounter("sent_bytes_total", "Total length in bytes of payloads written, including separators", nil, nil),
		networkErrorsTotal:    transportMetricCreator.AddOrGetCounter("network_errors_total", "Numbers of network errors", nil, nil),
		nonNetworkErrorsTotal: transportMetricCreator.AddOrGetCounter("nonnetwork_errors_total", "Numbers of non-network errors, e.g. oversized payloads", nil, nil),
		reconnectsTotal:       transportMetricCreator.AddOrGetCounter("reconnects_total", "Numbers of re-established connections", nil, nil),
		skippedPayloadsTotal:  transportMetricCreator.AddOrGetCounter("skipped_payloads_total", "Numbers of payloads dropped while waiting to reconnect", nil, nil),
	}
}

func (metrics *transportMetrics) OnError(err error) {
	if err != nil && util.IsNetworkError(err) {
		metrics.networkErrorsTotal.Inc()
	} else {
		metrics.nonNetworkErrorsTotal.Inc()
	}
}

func (metrics *transportMetrics) OnSent(length int) {
	metrics.sentPayloadsTotal.Inc()
	metrics.sentBytesTotal.Add(uint64(length))
}

func (metrics *transportMetrics) OnReconnected() {
	metrics.reconnectsTotal.Inc()
}

func (metrics *transportMetrics) OnSkipped() {
	metrics.skippedPayloadsTotal.Inc()
}
