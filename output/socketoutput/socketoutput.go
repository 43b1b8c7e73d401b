// Package socketoutput delivers serialized log documents to the central collector over TCP or UDP
package socketoutput

import (
	"fmt"

	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/defs"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
)

// Open connects to the collector and returns the transport
//
// Connection errors are returned here, so misconfiguration shows up at installation instead of being lost with the
// first log events
func Open(parentLogger logger.Logger, cfg Config, metricCreator promreg.MetricCreator) (base.LogTransport, error) {
	protocol, err := ParseProtocol(cfg.Protocol)
	if err != nil {
		return nil, err
	}
	transportLogger := parentLogger.WithFields(logger.Fields{
		defs.LabelComponent: "SocketTransport",
		defs.LabelProtocol:  string(protocol),
		defs.LabelRemote:    cfg.Address,
	})
	metrics := newTransportMetrics(metricCreator, protocol)

	switch protocol {
	case ProtocolTCP:
		transport, err := openStreamTransport(transportLogger, cfg.Address, metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Address, err)
		}
		return transport, nil
	case ProtocolUDP:
		transport, err := openDatagramTransport(transportLogger, cfg.Address, cfg.maxDatagramSize(), metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to open socket to %s: %w", cfg.Address, err)
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrInvalidProtocol, protocol)
	}
}
