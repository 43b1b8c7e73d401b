package base

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLevel(t *testing.T) {
	for _, value := range []interface{}{10, int8(10), int64(10), uint16(10), DEBUG, "DEBUG"} {
		level, err := ValidateLevel(value)
		assert.NoError(t, err, "%#v", value)
		assert.Equal(t, DEBUG, level, "%#v", value)
	}

	level, err := ValidateLevel(35)
	assert.NoError(t, err)
	assert.Equal(t, Level(35), level)

	level, err = ValidateLevel("WARN")
	assert.NoError(t, err)
	assert.Equal(t, WARNING, level)

	_, err = ValidateLevel("debug")
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.Contains(t, err.Error(), `"debug"`)

	_, err = ValidateLevel("VERBOSE")
	assert.ErrorIs(t, err, ErrInvalidLevel)

	_, err = ValidateLevel(1.5)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.Contains(t, err.Error(), "float64")

	_, err = ValidateLevel(nil)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "WARNING", WARNING.String())
	assert.Equal(t, "CRITICAL", LevelName(CRITICAL))
	assert.Equal(t, "Level 15", LevelName(15))

	AddLevelName(25, "NOTICE")
	assert.Equal(t, "NOTICE", Level(25).String())
	level, err := ValidateLevel("NOTICE")
	assert.NoError(t, err)
	assert.Equal(t, Level(25), level)
}

func TestLogEventMessage(t *testing.T) {
	event := &LogEvent{Template: "disk %s is %d%% full", Args: []interface{}{"/u1", 99}}
	assert.Equal(t, "disk /u1 is 99% full", event.Message())

	event = &LogEvent{Template: "100% literal"}
	assert.Equal(t, "100% literal", event.Message())
}

func TestLogEventCopy(t *testing.T) {
	event := &LogEvent{Level: INFO, LevelName: "INFO", Extra: map[string]interface{}{"a": 1}}
	dup := event.Copy()
	dup.Extra["b"] = 2
	dup.SetLevel(DEBUG)
	assert.Equal(t, map[string]interface{}{"a": 1}, event.Extra)
	assert.Equal(t, INFO, event.Level)
	assert.Equal(t, "DEBUG", dup.LevelName)
}

func TestExceptionInfo(t *testing.T) {
	assert.Nil(t, ExceptionInfoFromError(nil))

	_, err := ValidateLevel("NOPE")
	info := ExceptionInfoFromError(err)
	assert.Equal(t, "*fmt.wrapError", info.Type)
	assert.Equal(t, err.Error(), info.Value)
	assert.Contains(t, info.Render(), "*fmt.wrapError: invalid logging level \"NOPE\"")
	assert.Contains(t, info.Render(), "goroutine ")

	event := &LogEvent{Exception: info}
	event.RenderExceptionText()
	assert.Equal(t, info.Render(), event.ExceptionText)
}

func TestLogEventDetach(t *testing.T) {
	state := map[string]int{"a": 1}
	position := &struct{ X int }{X: 3}
	event := &LogEvent{
		Template: "state %v",
		Args:     []interface{}{state},
		Extra: map[string]interface{}{
			"state":  state,
			"pos":    position,
			"lineno": 12,
			"name":   "motor",
			"err":    errors.New("stalled"),
		},
	}
	dup := event.Copy()
	dup.Detach()
	state["a"] = 2
	position.X = 4

	assert.Equal(t, "state map[a:1]", dup.Message())
	assert.Nil(t, dup.Args)
	assert.Equal(t, "map[a:1]", dup.Extra["state"])
	assert.Equal(t, "&{3}", dup.Extra["pos"])
	assert.Equal(t, 12, dup.Extra["lineno"])
	assert.Equal(t, "motor", dup.Extra["name"])
	assert.Equal(t, "stalled", dup.Extra["err"])
	assert.Equal(t, "state map[a:2]", event.Message(), "original untouched")
	assert.Same(t, position, event.Extra["pos"])
}
