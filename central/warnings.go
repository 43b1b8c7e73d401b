package central

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/demote"
	"github.com/pcdshub/pcdslog/util"
	"github.com/relex/gotils/logger"
)

var warningTarget util.AtomicRef[base.EventLogger]

// Warn logs "<category>: <message>" at WARNING level, with the warning details and the caller location in extra
// fields for filters to inspect without parsing the message
func Warn(target *base.EventLogger, category string, message interface{}) {
	_, file, line, _ := runtime.Caller(1)
	warnAt(target, 1, category, message, file, line)
}

// WarnAt is Warn with an explicit origin of the warning
func WarnAt(target *base.EventLogger, category string, message interface{}, filename string, lineno int) {
	warnAt(target, 1, category, message, filename, lineno)
}

func warnAt(target *base.EventLogger, depth int, category string, message interface{}, filename string, lineno int) {
	extra := map[string]interface{}{
		demote.ExtraWarningMessage:  message,
		demote.ExtraWarningCategory: category,
		demote.ExtraWarningFilename: filename,
		demote.ExtraWarningLineno:   lineno,
	}
	target.LogDepth(depth+1, base.WARNING, nil, extra, "%s: %s", category, message)
}

// ShowWarning reports a warning to the logger set by InstallWarningHandler, or to diagnostic logs if none
//
// Libraries should call this instead of logging warnings directly, so that applications decide where they go
func ShowWarning(category string, message interface{}) {
	_, file, line, _ := runtime.Caller(1)
	if target := warningTarget.Get(); target != nil {
		warnAt(target, 1, category, message, file, line)
		return
	}
	logger.Warnf("%s:%d: %s: %v", filepath.Base(file), line, category, message)
}

// InstallWarningHandler redirects ShowWarning to the target logger
func InstallWarningHandler(target *base.EventLogger) {
	warningTarget.Set(target)
}

// UninstallWarningHandler restores the default output of ShowWarning
func UninstallWarningHandler() {
	warningTarget.Set(nil)
}

// StandardWarningsConfig sends warnings to the warnings logger of the registry and installs a filter there, which
// demotes repeated warnings to DEBUG
func StandardWarningsConfig(loggers *base.LoggerRegistry) (*demote.Filter, error) {
	target := loggers.GetLogger(defs.WarningsLoggerName)
	filter, err := demote.Install(demote.WarningPolicy{}, base.DEBUG, true, target)
	if err != nil {
		return nil, fmt.Errorf("failed to install warning demoter: %w", err)
	}
	InstallWarningHandler(target)
	return filter, nil
}
