package socketoutput

import (
	"errors"
	"net"
	"time"

	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/util"
	"github.com/relex/gotils/logger"
)

var errWaitingToReconnect = errors.New("connection broken, waiting to reconnect")

// streamTransport writes newline-terminated payloads to a TCP connection
//
// A broken connection is closed and re-established lazily by a later Send, at most once per retry interval
type streamTransport struct {
	logger   logger.Logger
	address  string
	conn     *util.NetConnWrapper
	lastDial time.Time
	buffer   []byte
	metrics  transportMetrics
}

func openStreamTransport(parentLogger logger.Logger, address string, metrics transportMetrics) (*streamTransport, error) {
	transport := &streamTransport{
		logger:  parentLogger,
		address: address,
		buffer:  make([]byte, 0, 4096),
		metrics: metrics,
	}
	if err := transport.dial(); err != nil {
		return nil, err
	}
	transport.logger.Infof("connected")
	return transport, nil
}

func (transport *streamTransport) Send(payload []byte) error {
	if transport.conn == nil {
		if time.Since(transport.lastDial) < defs.TransportRetryInterval {
			transport.metrics.OnSkipped()
			return errWaitingToReconnect
		}
		if err := transport.dial(); err != nil {
			transport.logger.Warnf("failed to reconnect: %s", err.Error())
			transport.metrics.OnError(err)
			return err
		}
		transport.logger.Infof("reconnected")
		transport.metrics.OnReconnected()
	}

	transport.buffer = append(transport.buffer[:0], payload...)
	transport.buffer = append(transport.buffer, '\n')
	if _, err := transport.conn.Write(transport.buffer); err != nil {
		transport.logger.Warnf("failed to send, closing connection: %s", err.Error())
		transport.metrics.OnError(err)
		transport.closeConnection()
		return err
	}
	transport.metrics.OnSent(len(transport.buffer))
	return nil
}

func (transport *streamTransport) Close() {
	if transport.conn != nil {
		transport.logger.Infof("close connection")
		transport.closeConnection()
	}
}

func (transport *streamTransport) dial() error {
	transport.lastDial = time.Now()
	conn, err := net.DialTimeout("tcp", transport.address, defs.TransportConnectionTimeout)
	if err != nil {
		return err
	}
	transport.conn = util.WrapNetConn(conn, defs.TransportWriteTimeout)
	return nil
}

func (transport *streamTransport) closeConnection() {
	if err := transport.conn.Close(); err != nil && !util.IsNetworkClosed(err) {
		transport.logger.Warnf("failed to close connection: %s", err.Error())
	}
	transport.conn = nil
}
