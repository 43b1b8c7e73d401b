package jsonevent

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pcdshub/pcdslog/base"
	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fastjson"
)

func newTestEvent() *base.LogEvent {
	reg := base.NewLoggerRegistry()
	event := reg.GetLogger("test.jsonevent").NewEvent(base.WARNING, nil, map[string]interface{}{"custom": 1},
		"disk %s nearly full", "/u1")
	event.Time = time.Unix(1700000000, 250000000)
	event.Function = "github.com/pcdshub/pcdslog/output/jsonevent.TestEncode"
	event.Pathname = "jsonevent_test.go"
	event.Filename = "jsonevent_test.go"
	event.Line = 42
	return event
}

func TestEncode(t *testing.T) {
	doc := Encode(newTestEvent())

	assert.Len(t, doc, len(AllowedKeys))
	for _, key := range AllowedKeys {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, SchemaTag, doc["schema"])
	assert.Equal(t, 1700000000.25, doc["ts"])
	assert.Equal(t, "WARNING", doc["severity"])
	assert.Equal(t, "disk /u1 nearly full", doc["msg"])
	assert.Nil(t, doc["exc_text"])
	assert.Equal(t, "github.com/pcdshub/pcdslog/output/jsonevent.TestEncode:42", doc["source"])
	assert.Equal(t, 42, doc["lineno"])
	assert.True(t, filepath.IsAbs(doc["pathname"].(string)))
	assert.Equal(t, LocalHostInfo(), doc["host_info"])
	assert.NotEmpty(t, doc["process_name"])
	assert.True(t, strings.HasPrefix(doc["thread_name"].(string), "goroutine-"))
	assert.NotContains(t, doc, "custom")
	assert.NotContains(t, doc, "created")
	assert.NotContains(t, doc, "levelname")
	assert.NotContains(t, doc, "args")
}

func TestEncodeWithFailures(t *testing.T) {
	event := &base.LogEvent{Level: base.ERROR, LevelName: "ERROR", Template: "bare"}
	event.Exception = base.ExceptionInfoFromError(errors.New("boom"))
	event.RenderExceptionText()
	doc := Encode(event)

	assert.Len(t, doc, len(AllowedKeys))
	assert.Equal(t, "FAILURE: missingCallerError: no caller information in event", doc["source"])
	assert.Equal(t, "bare", doc["msg"])
	assert.True(t, strings.HasPrefix(doc["exc_text"].(string), "*errors.errorString: boom\n"))
}

func TestFailsafe(t *testing.T) {
	assert.Equal(t, "ok", failsafe(func() (interface{}, error) { return "ok", nil }))
	assert.Equal(t, "FAILURE: errorString: bad", failsafe(func() (interface{}, error) { return nil, errors.New("bad") }))
	assert.Equal(t, "FAILURE: panic: oops", failsafe(func() (interface{}, error) { panic("oops") }))
}

func TestSerializeEvent(t *testing.T) {
	RegisterComponentVersion("ophyd.core", "1.9.0")
	defer UnregisterComponentVersion("ophyd.core")

	ser := NewEventSerializer(logger.Root())
	event := newTestEvent()
	event.Template = "quote \" and newline \n and unicode ✓"
	event.Args = nil
	data := ser.SerializeEvent(event)

	var parser fastjson.Parser
	v, err := parser.ParseBytes(data)
	if !assert.NoError(t, err, string(data)) {
		return
	}
	assert.Equal(t, "quote \" and newline \n and unicode ✓", string(v.GetStringBytes("msg")))
	assert.Equal(t, "WARNING", string(v.GetStringBytes("severity")))
	assert.Equal(t, 1700000000.25, v.GetFloat64("ts"))
	assert.Equal(t, 42, v.GetInt("lineno"))
	assert.Equal(t, fastjson.TypeNull, v.Get("exc_text").Type())
	assert.Equal(t, "1.9.0", string(v.GetStringBytes("versions", "ophyd_core")))
	assert.NotEmpty(t, string(v.GetStringBytes("versions", "go")))
	assert.Equal(t, LocalHostInfo().System, string(v.GetStringBytes("host_info", "system")))

	keys := []string{}
	v.GetObject().Visit(func(key []byte, _ *fastjson.Value) {
		keys = append(keys, string(key))
	})
	assert.Equal(t, AllowedKeys, keys)

	// buffers are reused between calls
	second := ser.SerializeEvent(newTestEvent())
	v, err = parser.ParseBytes(second)
	if assert.NoError(t, err) {
		assert.Equal(t, "disk /u1 nearly full", string(v.GetStringBytes("msg")))
	}
}

func TestEncodeAllDerivedFieldsFailing(t *testing.T) {
	defer func(versions func() map[string]string, absPath func(string) (string, error), hostname func() (string, error),
		hostInfo func() HostInfo, username func() (string, error)) {
		lookupVersions, lookupAbsPath, lookupHostname, lookupHostInfo, lookupUsername = versions, absPath, hostname, hostInfo, username
	}(lookupVersions, lookupAbsPath, lookupHostname, lookupHostInfo, lookupUsername)

	lookupVersions = func() map[string]string { panic("no build info") }
	lookupAbsPath = func(string) (string, error) { return "", errors.New("no cwd") }
	lookupHostname = func() (string, error) { return "", errors.New("no hostname") }
	lookupHostInfo = func() HostInfo { panic("no uname") }
	lookupUsername = func() (string, error) { return "", errors.New("no passwd entry") }

	event := &base.LogEvent{Level: base.ERROR, LevelName: "ERROR", Template: "all broken"}
	doc := Encode(event)
	assert.Len(t, doc, len(AllowedKeys))
	assert.Equal(t, "FAILURE: panic: no build info", doc["versions"])
	assert.Equal(t, "FAILURE: errorString: no cwd", doc["pathname"])
	assert.Equal(t, "FAILURE: errorString: no hostname", doc["hostname"])
	assert.Equal(t, "FAILURE: panic: no uname", doc["host_info"])
	assert.Equal(t, "FAILURE: errorString: no passwd entry", doc["username"])
	assert.Equal(t, "FAILURE: missingCallerError: no caller information in event", doc["source"])

	data := NewEventSerializer(logger.Root()).SerializeEvent(event)
	decoded := map[string]interface{}{}
	if !assert.NoError(t, json.Unmarshal(data, &decoded), string(data)) {
		return
	}
	for _, key := range AllowedKeys {
		if assert.Contains(t, decoded, key) && key != "exc_text" {
			assert.NotNil(t, decoded[key], key)
		}
	}
	assert.Equal(t, "all broken", decoded["msg"])
}

func TestMessageRoundTrip(t *testing.T) {
	cases := map[string]struct {
		message  string
		expected string
	}{
		"plain":         {"beam dump at 12:00", "beam dump at 12:00"},
		"ansi colours":  {"\x1b[31mred\x1b[0m", "\x1b[31mred\x1b[0m"},
		"bell":          {"bell\a", "bell\a"},
		"nul":           {"nul\x00end", "nul\x00end"},
		"del":           {"del\x7f", "del\x7f"},
		"whitespace":    {"tab\tnewline\ncr\r", "tab\tnewline\ncr\r"},
		"quotes":        {`say "hi" \ bye`, `say "hi" \ bye`},
		"unicode":       {"✓ µm \u2028 😀", "✓ µm \u2028 😀"},
		"invalid utf-8": {"bad\xffbyte", "bad\ufffdbyte"},
		"empty":         {"", ""},
	}
	ser := NewEventSerializer(logger.Root())
	for name, c := range cases {
		t.Run(name, func(tt *testing.T) {
			event := newTestEvent()
			event.Template = c.message
			event.Args = nil
			event.ExceptionText = "trace\x1b"
			data := ser.SerializeEvent(event)

			decoded := map[string]interface{}{}
			if assert.NoError(tt, json.Unmarshal(data, &decoded), string(data)) {
				assert.Equal(tt, c.expected, decoded["msg"])
				assert.Equal(tt, "trace\x1b", decoded["exc_text"])
			}
			v, err := fastjson.ParseBytes(data)
			if assert.NoError(tt, err) {
				assert.Equal(tt, c.expected, string(v.GetStringBytes("msg")))
			}
		})
	}
}

func TestAppendJSONString(t *testing.T) {
	assert.Equal(t, `"a\u001bb\u0007\u0000\u007f\"\\"`, string(AppendJSONString(nil, "a\x1bb\a\x00\x7f\"\\")))
	assert.Equal(t, `x"ok"`, string(AppendJSONString([]byte("x"), "ok")))
}
