package central

import (
	"context"
	"errors"
	"fmt"

	"github.com/pcdshub/pcdslog/base"
)

// ErrProcessExit marks errors which end the process normally, e.g. returned after an interrupt signal
var ErrProcessExit = errors.New("process exit")

// NoLogErrors lists errors never sent by LogException; matching uses errors.Is
var NoLogErrors = []error{context.Canceled, ErrProcessExit}

// ExceptionOptions customizes LogException
type ExceptionOptions struct {
	Context string     // prefix in brackets of the default message, "exception" if empty
	Message string     // replaces the default message "[<context>] <error>"
	Level   base.Level // ERROR if NOTSET
	Depth   int        // extra stack frames to skip for the reported caller
}

// LogException logs an error with exception info to the target logger, normally the central logger
//
// Nothing is logged if the target has no handler of its own, so that errors don't end up in a fallback output, or
// if the error matches NoLogErrors. Returns whether the error was logged.
func LogException(target *base.EventLogger, err error, opts ExceptionOptions) bool {
	if err == nil {
		return false
	}
	for _, skipped := range NoLogErrors {
		if errors.Is(err, skipped) {
			return false
		}
	}
	if len(target.Handlers()) == 0 {
		return false
	}

	label := opts.Context
	if label == "" {
		label = "exception"
	}
	message := opts.Message
	if message == "" {
		message = fmt.Sprintf("[%s] %s", label, err.Error())
	}
	level := opts.Level
	if level == base.NOTSET {
		level = base.ERROR
	}
	target.LogDepth(opts.Depth+1, level, base.ExceptionInfoFromError(err), nil, "%s", message)
	return true
}
