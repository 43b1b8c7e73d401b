package defs

import (
	"time"
)

var (
	// DispatchQueueSize is the default capacity of the in-process queue between log producers and the dispatch worker
	//
	// New events are rejected when the queue is full, producers never wait
	DispatchQueueSize = 10000

	// DispatchStopTimeout is how long Stop waits for the dispatch worker to drain pending events and close the transport
	//
	// The worker keeps running in background if the timeout is reached; process exit must not hang on log delivery
	DispatchStopTimeout = 5 * time.Second

	// DispatchDropReportInterval is the minimum interval between two reports of dropped events in diagnostic logs
	DispatchDropReportInterval = 10 * time.Second
)

var (
	// TransportConnectionTimeout is for establishing a TCP connection to the collector
	TransportConnectionTimeout = 10 * time.Second

	// TransportWriteTimeout is how long a single payload write may take before the connection is considered broken
	TransportWriteTimeout = 5 * time.Second

	// TransportRetryInterval is the minimum wait before a broken stream connection is re-established
	//
	// Payloads sent in between are dropped
	TransportRetryInterval = 10 * time.Second

	// TransportMaxDatagramSize is the default limit of one UDP payload (IPv4 maximum)
	TransportMaxDatagramSize = 65507
)

// For testing and experiments
const (
	TestReadTimeout = 5 * time.Second
)

// EnableTestMode turns on test mode with very short timeout and minimal retry delay
func EnableTestMode() {
	DispatchStopTimeout = 2 * time.Second
	TransportConnectionTimeout = 1 * time.Second
	TransportWriteTimeout = 1 * time.Second
	TransportRetryInterval = 100 * time.Millisecond
}
