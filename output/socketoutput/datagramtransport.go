package socketoutput

import (
	"fmt"
	"net"

	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/util"
	"github.com/relex/gotils/logger"
)

// datagramTransport sends each payload as one UDP datagram without separator
type datagramTransport struct {
	logger          logger.Logger
	conn            *util.NetConnWrapper
	maxDatagramSize int
	metrics         transportMetrics
}

func openDatagramTransport(parentLogger logger.Logger, address string, maxDatagramSize int, metrics transportMetrics) (*datagramTransport, error) {
	conn, err := net.DialTimeout("udp", address, defs.TransportConnectionTimeout)
	if err != nil {
		return nil, err
	}
	parentLogger.Infof("opened socket from %s", conn.LocalAddr())
	return &datagramTransport{
		logger:          parentLogger,
		conn:            util.WrapNetConn(conn, defs.TransportWriteTimeout),
		maxDatagramSize: maxDatagramSize,
		metrics:         metrics,
	}, nil
}

func (transport *datagramTransport) Send(payload []byte) error {
	if len(payload) > transport.maxDatagramSize {
		err := fmt.Errorf("%w: %d bytes > %d", ErrPayloadTooLarge, len(payload), transport.maxDatagramSize)
		transport.metrics.OnError(err)
		return err
	}
	if _, err := transport.conn.Write(payload); err != nil {
		transport.metrics.OnError(err)
		return err
	}
	transport.metrics.OnSent(len(payload))
	return nil
}

func (transport *datagramTransport) Close() {
	if transport.conn == nil {
		return
	}
	if err := transport.conn.Close(); err != nil && !util.IsNetworkClosed(err) {
		transport.logger.Warnf("failed to close socket: %s", err.Error())
	}
	transport.conn = nil
}
