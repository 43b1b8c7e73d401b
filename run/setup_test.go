package run

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/central"
	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/demote"
	dto "github.com/prometheus/client_model/go"
	"github.com/relex/gotils/promexporter/promreg"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fastjson"
)

func init() {
	defs.EnableTestMode()
}

func collectorConf(addr net.Addr, extra string) string {
	host, port, _ := net.SplitHostPort(addr.String())
	return fmt.Sprintf(`
central:
  host: %s
  port: %s
  protocol: udp
  level: INFO
  allowedDomains: [.pcdsn]
%s`, host, port, extra)
}

func newTestOptions(t *testing.T, force bool) SetupOptions {
	return SetupOptions{
		Force:         force,
		Loggers:       base.NewLoggerRegistry(),
		MetricCreator: promreg.NewMetricFactory(t.Name()+"_", nil, nil),
		FQDN:          "workstation.example.com",
	}
}

func readDocument(t *testing.T, server net.PacketConn) *fastjson.Value {
	buf := make([]byte, 65536)
	assert.NoError(t, server.SetReadDeadline(time.Now().Add(defs.TestReadTimeout)))
	n, _, err := server.ReadFrom(buf)
	if !assert.NoError(t, err) {
		return nil
	}
	doc, err := fastjson.ParseBytes(buf[:n])
	if !assert.NoError(t, err) {
		return nil
	}
	return doc
}

func counterValue(t *testing.T, counter interface{ Write(*dto.Metric) error }) float64 {
	m := &dto.Metric{}
	assert.NoError(t, counter.Write(m))
	return m.GetCounter().GetValue()
}

func TestSetup(t *testing.T) {
	server, err := net.ListenPacket("udp", "127.0.0.1:0")
	if !assert.NoError(t, err) {
		return
	}
	defer server.Close()

	cfg, err := LoadConfigString(collectorConf(server.LocalAddr(), `
filters:
  - type: messageDemoter
    logger: pcds-logging
    match: "Subscription * callback exception"
`))
	if !assert.NoError(t, err) {
		return
	}
	numSetups := counterValue(t, setupCounter)
	session, err := Setup(cfg, newTestOptions(t, true))
	if !assert.NoError(t, err) {
		return
	}
	defer session.Shutdown()
	assert.Equal(t, numSetups+1, counterValue(t, setupCounter))

	assert.True(t, session.Enabled)
	assert.Same(t, session.Loggers.GetLogger("pcds-logging"), session.CentralLogger)
	assert.False(t, session.CentralLogger.Propagate())
	assert.Equal(t, base.INFO, session.CentralLogger.EffectiveLevel())
	assert.Len(t, session.Filters(), 1)
	assert.Nil(t, session.WarningFilter())

	session.CentralLogger.Infof("Subscription %s callback exception", "motor")
	session.CentralLogger.Infof("Subscription %s callback exception", "motor")
	session.CentralLogger.Warnf("beam dump")

	doc := readDocument(t, server)
	if doc != nil {
		assert.Equal(t, "Subscription motor callback exception", string(doc.GetStringBytes("msg")))
		assert.Equal(t, "INFO", string(doc.GetStringBytes("severity")))
	}
	// the duplicate is demoted to DEBUG, below the handler's level
	doc = readDocument(t, server)
	if doc != nil {
		assert.Equal(t, "beam dump", string(doc.GetStringBytes("msg")))
	}
	assert.Equal(t, 1, session.Filters()[0].(*demote.Filter).Counter())

	session.Shutdown()
	assert.Nil(t, session.Registry.CurrentHandler())
	assert.Empty(t, session.CentralLogger.Filters())
	assert.Empty(t, session.CentralLogger.Handlers())
	assert.Error(t, session.Reload(cfg))
	session.Shutdown()
}

func TestSetupOutsideDomains(t *testing.T) {
	cfg, err := LoadConfigString(`
central:
  host: 127.0.0.1
  port: 1
  allowedDomains: [.pcdsn]
filters:
  - type: warningDemoter
`)
	if !assert.NoError(t, err) {
		return
	}
	opts := newTestOptions(t, false)
	session, err := Setup(cfg, opts)
	if !assert.NoError(t, err) {
		return
	}
	defer session.Shutdown()

	assert.False(t, session.Enabled)
	assert.Nil(t, session.Registry.CurrentHandler())
	assert.Empty(t, session.CentralLogger.Handlers())
	assert.Len(t, session.Filters(), 1)
	assert.Len(t, opts.Loggers.GetLogger(defs.WarningsLoggerName).Filters(), 1)
}

func TestSetupCaptureWarnings(t *testing.T) {
	server, err := net.ListenPacket("udp", "127.0.0.1:0")
	if !assert.NoError(t, err) {
		return
	}
	defer server.Close()

	cfg, err := LoadConfigString(collectorConf(server.LocalAddr(), "captureWarnings: true\n"))
	if !assert.NoError(t, err) {
		return
	}
	session, err := Setup(cfg, newTestOptions(t, true))
	if !assert.NoError(t, err) {
		return
	}
	defer session.Shutdown()

	for i := 0; i < 3; i++ {
		central.ShowWarning("DeprecationWarning", "old API")
	}
	central.ShowWarning("UserWarning", "last")

	doc := readDocument(t, server)
	if doc != nil {
		assert.Equal(t, "DeprecationWarning: old API", string(doc.GetStringBytes("msg")))
		assert.Equal(t, "WARNING", string(doc.GetStringBytes("severity")))
	}
	doc = readDocument(t, server)
	if doc != nil {
		assert.Equal(t, "UserWarning: last", string(doc.GetStringBytes("msg")))
	}
	if assert.NotNil(t, session.WarningFilter()) {
		assert.Equal(t, 2, session.WarningFilter().Counter())
	}

	noCapture := *cfg
	noCapture.CaptureWarnings = false
	assert.NoError(t, session.Reload(&noCapture))
	assert.Nil(t, session.WarningFilter())
}

func TestReloader(t *testing.T) {
	server, err := net.ListenPacket("udp", "127.0.0.1:0")
	if !assert.NoError(t, err) {
		return
	}
	defer server.Close()

	confPath := filepath.Join(t.TempDir(), "pcdslog.yml")
	writeConf := func(extra string) {
		assert.NoError(t, os.WriteFile(confPath, []byte(collectorConf(server.LocalAddr(), extra)), 0o644))
	}
	writeConf("")

	cfg, err := LoadConfigFile(confPath)
	if !assert.NoError(t, err) {
		return
	}
	session, err := Setup(cfg, newTestOptions(t, true))
	if !assert.NoError(t, err) {
		return
	}
	defer session.Shutdown()
	firstHandler := session.Registry.CurrentHandler()

	reloader := StartReloader(session, confPath)
	defer reloader.Stop()

	numSuccess := counterValue(t, reloadSuccessCounter)
	numFailure := counterValue(t, reloadFailureCounter)

	writeConf(`
filters:
  - type: warningDemoter
  - type: callbackExceptionDemoter
`)
	assert.True(t, reloader.Reload())
	assert.Len(t, session.Filters(), 2)
	assert.NotSame(t, firstHandler, session.Registry.CurrentHandler())
	assert.Len(t, session.CentralLogger.Handlers(), 1)
	assert.Equal(t, numSuccess+1, counterValue(t, reloadSuccessCounter))

	writeConf(`
filters:
  - type: unknownDemoter
`)
	assert.False(t, reloader.Reload())
	assert.Len(t, session.Filters(), 2, "old filters kept")
	assert.Equal(t, numFailure+1, counterValue(t, reloadFailureCounter))

	reloader.Stop()
	reloader.Stop()
}

func TestForwardLines(t *testing.T) {
	server, err := net.ListenPacket("udp", "127.0.0.1:0")
	if !assert.NoError(t, err) {
		return
	}
	defer server.Close()

	cfg, err := LoadConfigString(collectorConf(server.LocalAddr(), ""))
	if !assert.NoError(t, err) {
		return
	}
	session, err := Setup(cfg, newTestOptions(t, true))
	if !assert.NoError(t, err) {
		return
	}
	defer session.Shutdown()

	count, err := ForwardLines(session.CentralLogger, strings.NewReader("first line\n\n100% done\n"), base.WARNING)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, count)

	if doc := readDocument(t, server); doc != nil {
		assert.Equal(t, "first line", string(doc.GetStringBytes("msg")))
		assert.Equal(t, "WARNING", string(doc.GetStringBytes("severity")))
	}
	if doc := readDocument(t, server); doc != nil {
		assert.Equal(t, "100% done", string(doc.GetStringBytes("msg")))
	}
}

func TestReloadFailureKeepsPreviousSetup(t *testing.T) {
	server, err := net.ListenPacket("udp", "127.0.0.1:0")
	if !assert.NoError(t, err) {
		return
	}
	defer server.Close()

	cfg, err := LoadConfigString(collectorConf(server.LocalAddr(), `
filters:
  - type: messageDemoter
    logger: pcds-logging
`))
	if !assert.NoError(t, err) {
		return
	}
	session, err := Setup(cfg, newTestOptions(t, true))
	if !assert.NoError(t, err) {
		return
	}
	defer session.Shutdown()
	handler := session.Registry.CurrentHandler()
	filters := session.Filters()

	// no collector listening on the port of a closed TCP listener
	closed, err := net.Listen("tcp", "127.0.0.1:0")
	if !assert.NoError(t, err) {
		return
	}
	closedAddr := closed.Addr()
	closed.Close()

	broken, err := LoadConfigString(collectorConf(closedAddr, `
filters:
  - type: messageDemoter
    logger: pcds-logging
  - type: warningDemoter
`))
	if !assert.NoError(t, err) {
		return
	}
	broken.Central.Protocol = "tcp"

	assert.ErrorContains(t, session.Reload(broken), "central: ")
	assert.Same(t, handler, session.Registry.CurrentHandler())
	assert.Equal(t, filters, session.Filters())
	assert.Same(t, cfg, session.Config())
	assert.Len(t, session.CentralLogger.Filters(), 1)
	assert.Empty(t, session.Loggers.GetLogger(defs.WarningsLoggerName).Filters())
}
