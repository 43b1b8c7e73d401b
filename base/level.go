package base

import (
	"errors"
	"fmt"
	"sync"
)

// Level is the ordered severity of a log event, higher is more severe
type Level int

// Standard levels, numerically compatible with the levels used by the log collector
const (
	NOTSET   Level = 0
	DEBUG    Level = 10
	INFO     Level = 20
	WARNING  Level = 30
	ERROR    Level = 40
	CRITICAL Level = 50
)

// ErrInvalidLevel is returned (wrapped) when a level name or value can't be resolved
var ErrInvalidLevel = errors.New("invalid logging level")

var (
	levelNamesLock sync.RWMutex
	levelToName    = map[Level]string{
		NOTSET:   "NOTSET",
		DEBUG:    "DEBUG",
		INFO:     "INFO",
		WARNING:  "WARNING",
		ERROR:    "ERROR",
		CRITICAL: "CRITICAL",
	}
	nameToLevel = map[string]Level{
		"NOTSET":   NOTSET,
		"DEBUG":    DEBUG,
		"INFO":     INFO,
		"WARNING":  WARNING,
		"WARN":     WARNING,
		"ERROR":    ERROR,
		"CRITICAL": CRITICAL,
		"FATAL":    CRITICAL,
	}
)

// AddLevelName registers a custom level name, or renames an existing level
func AddLevelName(level Level, name string) {
	levelNamesLock.Lock()
	defer levelNamesLock.Unlock()
	levelToName[level] = name
	nameToLevel[name] = level
}

// LevelName returns the registered name of the level, or "Level N" for unnamed levels
func LevelName(level Level) string {
	levelNamesLock.RLock()
	defer levelNamesLock.RUnlock()
	if name, ok := levelToName[level]; ok {
		return name
	}
	return fmt.Sprintf("Level %d", int(level))
}

func (level Level) String() string {
	return LevelName(level)
}

// ValidateLevel resolves a level given as any integer type or as a registered name (case-sensitive)
func ValidateLevel(value interface{}) (Level, error) {
	switch v := value.(type) {
	case Level:
		return v, nil
	case int:
		return Level(v), nil
	case int8:
		return Level(v), nil
	case int16:
		return Level(v), nil
	case int32:
		return Level(v), nil
	case int64:
		return Level(v), nil
	case uint:
		return Level(v), nil
	case uint8:
		return Level(v), nil
	case uint16:
		return Level(v), nil
	case uint32:
		return Level(v), nil
	case uint64:
		return Level(v), nil
	case string:
		levelNamesLock.RLock()
		level, ok := nameToLevel[v]
		levelNamesLock.RUnlock()
		if !ok {
			return NOTSET, fmt.Errorf("%w %q (use e.g., DEBUG or 10)", ErrInvalidLevel, v)
		}
		return level, nil
	default:
		return NOTSET, fmt.Errorf("%w: invalid type %T, must be an integer or a string", ErrInvalidLevel, value)
	}
}
