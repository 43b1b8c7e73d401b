// Package demote lowers the severity of recurring log events without dropping them
package demote

import (
	"errors"
	"sync"

	"github.com/pcdshub/pcdslog/base"
)

// ErrNoPolicy is returned by Install when the policy is nil
var ErrNoPolicy = errors.New("demotion policy is required")

// Filter is a LogFilter which relabels matching events to a lower level and always lets them pass
//
// In only-duplicates mode the first occurrence of each fingerprint keeps its level and later ones are demoted;
// otherwise every matching event is demoted. A Filter is armed from Install until Uninstall.
type Filter struct {
	policy         Policy
	lock           sync.Mutex
	level          base.Level
	levelName      string
	onlyDuplicates bool
	seen           map[RecordKey]struct{}
	counter        int
	target         *base.EventLogger
	armed          bool
}

// Install creates a Filter and adds it to the target logger, or to the policy's default logger if target is nil
//
// The level is given as a level value or name, see base.ValidateLevel
func Install(policy Policy, level interface{}, onlyDuplicates bool, target *base.EventLogger) (*Filter, error) {
	if policy == nil {
		return nil, ErrNoPolicy
	}
	levelno, err := base.ValidateLevel(level)
	if err != nil {
		return nil, err
	}
	if target == nil {
		target = base.GetLogger(policy.DefaultLoggerName())
	}
	f := &Filter{
		policy:         policy,
		level:          levelno,
		levelName:      base.LevelName(levelno),
		onlyDuplicates: onlyDuplicates,
		seen:           make(map[RecordKey]struct{}),
		target:         target,
		armed:          true,
	}
	target.AddFilter(f)
	return f, nil
}

// Filter demotes the event in-place if applicable, and always returns PASS
func (f *Filter) Filter(event *base.LogEvent) base.FilterResult {
	key, ok := f.policy.ExtractKey(event)
	if !ok {
		return base.PASS
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	if !f.armed {
		return base.PASS
	}
	if !f.policy.ShouldDemote(event, key) || event.Level <= f.level {
		return base.PASS
	}
	if _, seen := f.seen[key]; seen || !f.onlyDuplicates {
		event.Level = f.level
		event.LevelName = f.levelName
		f.counter++
	} else {
		f.seen[key] = struct{}{}
	}
	return base.PASS
}

// Uninstall detaches the filter from its logger. Calling it again has no effect.
func (f *Filter) Uninstall() {
	f.lock.Lock()
	wasArmed := f.armed
	f.armed = false
	f.lock.Unlock()
	if wasArmed {
		f.target.RemoveFilter(f)
	}
}

// Armed tells whether the filter is installed
func (f *Filter) Armed() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.armed
}

// Counter returns the number of events demoted since install or the last reset
func (f *Filter) Counter() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.counter
}

// ResetCounter sets the counter back to zero. Seen fingerprints are kept.
func (f *Filter) ResetCounter() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.counter = 0
}

// SetOnlyDuplicates switches between demoting duplicates only and demoting everything that matches
func (f *Filter) SetOnlyDuplicates(onlyDuplicates bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.onlyDuplicates = onlyDuplicates
}

// OnlyDuplicates tells whether only duplicates are demoted
func (f *Filter) OnlyDuplicates() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.onlyDuplicates
}

// Level returns the level which matching events are demoted to
func (f *Filter) Level() base.Level {
	return f.level
}

// Policy returns the policy of this filter
func (f *Filter) Policy() Policy {
	return f.policy
}

// Target returns the logger this filter is installed on
func (f *Filter) Target() *base.EventLogger {
	return f.target
}
