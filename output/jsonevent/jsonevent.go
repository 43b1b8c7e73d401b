// Package jsonevent converts log events into the versioned JSON documents accepted by the central log collector
package jsonevent

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/pcdshub/pcdslog/base"
)

// SchemaTag identifies the layout of documents produced here, as "<name>-<integer>"
const SchemaTag = "go-event-0"

// AllowedKeys lists the keys of a Document in output order. Every key is always present.
var AllowedKeys = []string{
	"schema",
	"ts",
	"severity",
	"msg",
	"exc_text",
	"source",
	"filename",
	"lineno",
	"pathname",
	"hostname",
	"host_info",
	"process_name",
	"thread_name",
	"username",
	"versions",
}

var keyRenames = map[string]string{
	"created":     "ts",
	"levelname":   "severity",
	"processName": "process_name",
	"threadName":  "thread_name",
}

var allowedKeySet = func() map[string]bool {
	set := make(map[string]bool, len(AllowedKeys))
	for _, key := range AllowedKeys {
		set[key] = true
	}
	return set
}()

// Document is the transport-ready form of an event, restricted to AllowedKeys
//
// Values are one of: nil, string, int, float64, HostInfo or map[string]string
type Document map[string]interface{}

// Encode builds the document of an event. It never fails: derived fields which can't be computed are replaced by a
// "FAILURE: <kind>: <detail>" sentinel string.
//
// Exception text must have been rendered into the event by the emitting layer; exc_text is null otherwise.
func Encode(event *base.LogEvent) Document {
	raw := make(map[string]interface{}, len(event.Extra)+24)
	for key, value := range event.Extra {
		raw[key] = value
	}

	raw["name"] = event.LoggerName
	raw["created"] = float64(event.Time.UnixMicro()) / 1e6
	raw["levelno"] = int(event.Level)
	raw["levelname"] = event.LevelName
	raw["msg"] = event.Message()
	raw["args"] = event.Args
	raw["funcName"] = event.Function
	raw["filename"] = event.Filename
	raw["lineno"] = event.Line
	raw["process"] = event.ProcessID
	raw["processName"] = event.ProcessName
	raw["thread"] = event.GoroutineID
	raw["threadName"] = event.GoroutineName
	if event.ExceptionText != "" {
		raw["exc_text"] = event.ExceptionText
	} else {
		raw["exc_text"] = nil
	}

	raw["schema"] = SchemaTag
	raw["source"] = failsafe(func() (interface{}, error) { return formatSource(event) })
	raw["versions"] = failsafe(func() (interface{}, error) { return lookupVersions(), nil })
	raw["pathname"] = failsafe(func() (interface{}, error) { return lookupAbsPath(event.Pathname) })
	raw["hostname"] = failsafe(func() (interface{}, error) { return lookupHostname() })
	raw["host_info"] = failsafe(func() (interface{}, error) { return lookupHostInfo(), nil })
	raw["username"] = failsafe(func() (interface{}, error) { return lookupUsername() })

	for from, to := range keyRenames {
		raw[to] = raw[from]
		delete(raw, from)
	}

	doc := make(Document, len(AllowedKeys))
	for key, value := range raw {
		if allowedKeySet[key] {
			doc[key] = value
		}
	}
	return doc
}

// sources of derived fields, replaced in tests to force failures
var (
	lookupVersions = snapshotVersions
	lookupAbsPath  = filepath.Abs
	lookupHostname = os.Hostname
	lookupHostInfo = LocalHostInfo
	lookupUsername = currentUsername
)

func formatSource(event *base.LogEvent) (string, error) {
	if event.Function == "" {
		return "", errMissingCaller
	}
	return fmt.Sprintf("%s:%d", event.Function, event.Line), nil
}

func currentUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// failsafe calls the given function and converts any error or panic into a failure sentinel
func failsafe(f func() (interface{}, error)) (result interface{}) {
	defer func() {
		if r := recover(); r != nil {
			result = failureSentinel("panic", fmt.Sprint(r))
		}
	}()
	value, err := f()
	if err != nil {
		return failureSentinel(errorKind(err), err.Error())
	}
	return value
}

func failureSentinel(kind string, detail string) string {
	return "FAILURE: " + kind + ": " + detail
}

// errorKind returns the short type name of an error, e.g. "PathError" for *fs.PathError
func errorKind(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

type missingCallerError struct{}

func (missingCallerError) Error() string {
	return "no caller information in event"
}

var errMissingCaller error = missingCallerError{}
