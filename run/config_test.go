package run

import (
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/pcdshub/pcdslog/demote"
	"github.com/stretchr/testify/assert"
)

const sampleConf = `
central:
  host: ctl-logsrv01.pcdsn
  port: 54320
  protocol: tcp
  level: DEBUG
  queueSize: 10000
  maxDatagramSize: 64KB
  allowedDomains: [.pcdsn, .slac.stanford.edu]
captureWarnings: true
filters:
  - type: warningDemoter
    level: DEBUG
    onlyDuplicates: true
  - type: messageDemoter
    logger: pcds-logging
    match: "Subscription * callback exception"
`

func TestLoadConfigString(t *testing.T) {
	cfg, err := LoadConfigString(sampleConf)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "ctl-logsrv01.pcdsn", cfg.Central.Host)
	assert.Equal(t, 54320, cfg.Central.Port)
	assert.Equal(t, "tcp", cfg.Central.Protocol)
	assert.Equal(t, 10000, cfg.Central.QueueSize)
	assert.Equal(t, 64*datasize.KB, cfg.Central.MaxDatagramSize)
	assert.Equal(t, []string{".pcdsn", ".slac.stanford.edu"}, cfg.Central.AllowedDomains)
	assert.True(t, cfg.CaptureWarnings)
	if assert.Len(t, cfg.Filters, 2) {
		assert.IsType(t, &demote.WarningDemoterConfig{}, cfg.Filters[0].Value)
		assert.IsType(t, &demote.MessageDemoterConfig{}, cfg.Filters[1].Value)
		assert.Equal(t, "messageDemoter", cfg.Filters[1].Value.GetType())
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigString(`
central:
  port: 9999
`)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 9999, cfg.Central.Port)
	assert.NotEmpty(t, cfg.Central.Host)
	assert.NotEmpty(t, cfg.Central.Protocol)
	assert.Empty(t, cfg.Filters)
	assert.False(t, cfg.CaptureWarnings)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("PCDS_LOG_HOST", "collector.example.com")
	t.Setenv("PCDS_LOG_PORT", "12345")
	t.Setenv("PCDS_LOG_PROTO", "udp")

	cfg, err := LoadConfigString(sampleConf)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "collector.example.com", cfg.Central.Host)
	assert.Equal(t, 12345, cfg.Central.Port)
	assert.Equal(t, "udp", cfg.Central.Protocol)

	t.Setenv("PCDS_LOG_PORT", "many")
	_, err = LoadConfigString(sampleConf)
	assert.ErrorContains(t, err, "environment: PCDS_LOG_PORT")
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfigString(`
central:
  hostname: foo
`)
	assert.ErrorContains(t, err, "hostname")

	_, err = LoadConfigString(`
central:
  port: 70000
`)
	assert.EqualError(t, err, "central.port is invalid: 70000")

	_, err = LoadConfigString(`
central:
  protocol: sctp
`)
	assert.ErrorContains(t, err, "central.protocol: ")

	_, err = LoadConfigString(`
filters:
  - level: DEBUG
    type: warningDemoter
`)
	assert.ErrorContains(t, err, ".type is not the first property")

	_, err = LoadConfigString(`
filters:
  - type: warningDemoter
    match: "*"
`)
	assert.ErrorContains(t, err, "match")

	_, err = LoadConfigString(`
filters:
  - type: warningDemoter
  - type: messageDemoter
    level: LOUD
`)
	assert.ErrorContains(t, err, "filters[1] (messageDemoter at 4:5).level: ")
}
