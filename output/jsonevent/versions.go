package jsonevent

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/pcdshub/pcdslog/util"
)

var (
	buildVersions     map[string]string
	buildVersionsOnce sync.Once

	registeredVersionsLock sync.RWMutex
	registeredVersions     = map[string]interface{}{}
)

// RegisterComponentVersion adds a component to the versions reported in every document, e.g. a device library
// loaded at runtime
//
// The version may be a string, []byte, fmt.Stringer or a slice of parts to be joined by "." such as []int{1, 2}.
// Anything else is reported in Go syntax representation.
func RegisterComponentVersion(name string, version interface{}) {
	registeredVersionsLock.Lock()
	defer registeredVersionsLock.Unlock()
	registeredVersions[util.SanitizeName(name)] = version
}

// UnregisterComponentVersion removes a component added by RegisterComponentVersion
func UnregisterComponentVersion(name string) {
	registeredVersionsLock.Lock()
	defer registeredVersionsLock.Unlock()
	delete(registeredVersions, util.SanitizeName(name))
}

// snapshotVersions returns the versions of the Go toolchain, the modules linked into this binary and registered
// components, keyed by sanitized names
func snapshotVersions() map[string]string {
	buildVersionsOnce.Do(func() {
		buildVersions = readBuildVersions()
	})

	registeredVersionsLock.RLock()
	defer registeredVersionsLock.RUnlock()

	versions := make(map[string]string, len(buildVersions)+len(registeredVersions))
	for name, version := range buildVersions {
		versions[name] = version
	}
	for name, version := range registeredVersions {
		versions[name] = coerceVersionOrRepr(version)
	}
	return versions
}

func readBuildVersions() map[string]string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return map[string]string{}
	}
	versions := make(map[string]string, len(info.Deps)+2)
	versions["go"] = info.GoVersion
	if info.Main.Path != "" {
		versions[util.SanitizeName(info.Main.Path)] = info.Main.Version
	}
	for _, dep := range info.Deps {
		mod := dep
		if dep.Replace != nil {
			mod = dep.Replace
		}
		versions[util.SanitizeName(dep.Path)] = mod.Version
	}
	return versions
}

func coerceVersionOrRepr(version interface{}) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = fmt.Sprintf("%#v", version)
		}
	}()
	if s, ok := coerceVersion(version); ok {
		return s
	}
	return fmt.Sprintf("%#v", version)
}

func coerceVersion(version interface{}) (string, bool) {
	switch v := version.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	}
	rv := reflect.ValueOf(version)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return strings.Join(parts, "."), true
	default:
		return "", false
	}
}
