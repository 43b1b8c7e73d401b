package collector

import (
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
)

type collectorMetrics struct {
	receivedDocumentsTotal promext.RWCounter
	receivedBytesTotal     promext.RWCounter
	invalidDocumentsTotal  promext.RWCounter
	connectionsTotal       promext.RWCounter
}

func newCollectorMetrics(metricCreator promreg.MetricCreator, protocol string) collectorMetrics {
	collectorMetricCreator := metricCreator.AddOrGetPrefix("collector_", []string{"protocol"}, []string{protocol})
	return collectorMetrics{
		receivedDocumentsTotal: collectorMetricCreator.AddOrGetCounter("received_documents_total", "Numbers of valid JSON documents received", nil, nil),
		receivedBytesTotal:     collectorMetricCreator.AddOrGetCounter("received_bytes_total", "Total length in bytes of valid documents received", nil, nil),
		invalidDocumentsTotal:  collectorMetricCreator.AddOrGetCounter("invalid_documents_total", "Numbers of received payloads not being valid JSON", nil, nil),
		connectionsTotal:       collectorMetricCreator.AddOrGetCounter("connections_total", "Numbers of accepted stream connections", nil, nil),
	}
}
