package jsonevent

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pcdshub/pcdslog/base"
	"github.com/relex/gotils/logger"
	"github.com/valyala/fastjson"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type eventSerializer struct {
	logger logger.Logger
	arena  fastjson.Arena
	buffer []byte
}

// NewEventSerializer creates a LogSerializer producing one compact JSON document per event
//
// The serializer reuses its buffers and must be owned by a single goroutine
func NewEventSerializer(parentLogger logger.Logger) base.LogSerializer {
	return &eventSerializer{
		logger: parentLogger,
		buffer: make([]byte, 0, 4096),
	}
}

func (ser *eventSerializer) SerializeEvent(event *base.LogEvent) []byte {
	doc := Encode(event)
	ser.arena.Reset()
	ser.buffer = MarshalDocument(&ser.arena, doc, ser.buffer[:0])
	return ser.buffer
}

// MarshalDocument appends the JSON form of the document to dst, with keys in the order of AllowedKeys
func MarshalDocument(arena *fastjson.Arena, doc Document, dst []byte) []byte {
	obj := arena.NewObject()
	for _, key := range AllowedKeys {
		obj.Set(key, toJSONValue(arena, doc[key]))
	}
	return obj.MarshalTo(dst)
}

// newJSONString creates a string value escaped strictly by RFC 8259
//
// fastjson quotes special characters Go-style (e.g. "\x1b"), which standard JSON parsers reject. Number values are
// written verbatim by fastjson, so the string is escaped here and carried as a raw number.
func newJSONString(arena *fastjson.Arena, s string) *fastjson.Value {
	return arena.NewNumberString(string(AppendJSONString(nil, s)))
}

const hexDigits = "0123456789abcdef"

// AppendJSONString appends s as a quoted JSON string to dst
//
// Invalid UTF-8 sequences are replaced by U+FFFD. Control characters and DEL are escaped as \u00XX.
func AppendJSONString(dst []byte, s string) []byte {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' && c != 0x7f {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		}
		start = i + 1
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}

func toJSONValue(arena *fastjson.Arena, value interface{}) *fastjson.Value {
	switch v := value.(type) {
	case nil:
		return arena.NewNull()
	case string:
		return newJSONString(arena, v)
	case int:
		return arena.NewNumberInt(v)
	case int64:
		return arena.NewNumberString(strconv.FormatInt(v, 10))
	case float64:
		return arena.NewNumberString(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		if v {
			return arena.NewTrue()
		}
		return arena.NewFalse()
	case HostInfo:
		obj := arena.NewObject()
		obj.Set("system", newJSONString(arena, v.System))
		obj.Set("node", newJSONString(arena, v.Node))
		obj.Set("release", newJSONString(arena, v.Release))
		obj.Set("version", newJSONString(arena, v.Version))
		obj.Set("machine", newJSONString(arena, v.Machine))
		return obj
	case map[string]string:
		keys := maps.Keys(v)
		slices.Sort(keys)
		obj := arena.NewObject()
		for _, key := range keys {
			obj.Set(key, newJSONString(arena, v[key]))
		}
		return obj
	default:
		return newJSONString(arena, fmt.Sprint(v))
	}
}
