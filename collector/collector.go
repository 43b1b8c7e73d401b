// Package collector receives JSON log documents sent by the central handler, for development and testing
package collector

import (
	"bufio"
	"net"
	"sync"

	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/output/socketoutput"
	"github.com/pcdshub/pcdslog/util"
	"github.com/relex/gotils/channels"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/valyala/fastjson"
)

const (
	maxLineBytes     = 1024 * 1024 // max length of a document over TCP
	maxDatagramBytes = 65536
)

// DocumentSink consumes received documents
//
// The document is only valid during the call
type DocumentSink interface {
	Accept(remote string, document []byte)
}

// Collector listens on a TCP or UDP address and passes every valid JSON document to a sink
//
// TCP documents are separated by newlines and UDP documents are one per datagram, the same as sent by the central
// handler. Invalid documents are logged and skipped.
type Collector struct {
	logger      logger.Logger
	protocol    socketoutput.Protocol
	listener    net.Listener
	packetConn  net.PacketConn
	address     string
	sink        DocumentSink
	metrics     collectorMetrics
	stopRequest *channels.SignalAwaitable
	requestStop util.RunOnce
	taskCounter *sync.WaitGroup // counter to track connection tasks and the listener task itself
	stopped     channels.Awaitable
}

// Listen opens a socket on the address and returns a Collector which hasn't been started yet
//
// The given address may use port zero, which would cause the port to be assigned by OS
func Listen(parentLogger logger.Logger, protocolName string, address string, sink DocumentSink,
	metricCreator promreg.MetricCreator) (*Collector, error) {

	protocol, err := socketoutput.ParseProtocol(protocolName)
	if err != nil {
		return nil, err
	}

	c := &Collector{
		protocol:    protocol,
		sink:        sink,
		metrics:     newCollectorMetrics(metricCreator, string(protocol)),
		stopRequest: channels.NewSignalAwaitable(),
		taskCounter: &sync.WaitGroup{},
	}
	switch protocol {
	case socketoutput.ProtocolTCP:
		c.listener, err = net.Listen("tcp", address)
		if err != nil {
			return nil, err
		}
		c.address = c.listener.Addr().String()
	default:
		c.packetConn, err = net.ListenPacket("udp", address)
		if err != nil {
			return nil, err
		}
		c.address = c.packetConn.LocalAddr().String()
	}
	c.logger = parentLogger.WithFields(logger.Fields{
		defs.LabelComponent: "Collector",
		defs.LabelProtocol:  string(protocol),
		defs.LabelAddress:   c.address,
	})
	c.requestStop = util.NewRunOnce(func() {
		c.stopRequest.Signal()
		if c.listener != nil {
			c.listener.Close()
		} else {
			c.packetConn.Close()
		}
	})
	// init taskCounter with 1 for the listener itself, so that stopped isn't signaled before Start()
	c.taskCounter.Add(1)
	c.stopped = channels.NewWaitGroupAwaitable(c.taskCounter)
	c.logger.Info("start listening")
	return c, nil
}

// Address returns the actual address including the final port
func (c *Collector) Address() string {
	return c.address
}

// Start launches the receiving loop in background
func (c *Collector) Start() {
	if c.listener != nil {
		go c.runStream()
	} else {
		go c.runDatagram()
	}
}

// Stop closes the socket and all connections, and waits until they have ended
func (c *Collector) Stop() {
	c.requestStop()
	c.stopped.WaitForever()
}

// Stopped returns an Awaitable signaled when the listener and all connections have come to stop
func (c *Collector) Stopped() channels.Awaitable {
	return c.stopped
}

func (c *Collector) runStream() {
	defer c.taskCounter.Done()
	c.logger.Info("start accept loop")
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			if !(c.stopRequest.Peek() && util.IsNetworkClosed(err)) {
				c.logger.Error("accept() error: ", err)
			}
			break
		}
		c.metrics.connectionsTotal.Inc()
		c.taskCounter.Add(1)
		go c.runConnection(conn)
	}
	c.logger.Info("end accept loop")
}

func (c *Collector) runConnection(conn net.Conn) {
	defer c.taskCounter.Done()
	remote := conn.RemoteAddr().String()
	connLogger := c.logger.WithFields(logger.Fields{
		defs.LabelPart:   "connection",
		defs.LabelRemote: remote,
	})
	connLogger.Info("accepted connection")

	connEnded := channels.NewSignalAwaitable()
	defer connEnded.Signal()
	go func() {
		channels.AnyAwaitables(c.stopRequest, connEnded).WaitForever()
		conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 65536), maxLineBytes)
	for scanner.Scan() {
		c.accept(connLogger, remote, scanner.Bytes())
	}
	if err := scanner.Err(); err != nil && !util.IsNetworkClosed(err) {
		connLogger.Warn("read() error: ", err)
	}
	connLogger.Info("ended")
}

func (c *Collector) runDatagram() {
	defer c.taskCounter.Done()
	buf := make([]byte, maxDatagramBytes)
	for {
		n, addr, err := c.packetConn.ReadFrom(buf)
		if err != nil {
			if !(c.stopRequest.Peek() && util.IsNetworkClosed(err)) {
				c.logger.Error("read() error: ", err)
			}
			break
		}
		c.accept(c.logger, addr.String(), buf[:n])
	}
	c.logger.Info("end receive loop")
}

func (c *Collector) accept(slogger logger.Logger, remote string, document []byte) {
	if len(document) == 0 {
		return
	}
	if err := fastjson.ValidateBytes(document); err != nil {
		c.metrics.invalidDocumentsTotal.Inc()
		slogger.Warnf("invalid document from %s: %s", remote, err.Error())
		return
	}
	c.metrics.receivedDocumentsTotal.Inc()
	c.metrics.receivedBytesTotal.Add(uint64(len(document)))
	c.sink.Accept(remote, document)
}
