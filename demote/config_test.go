package demote

import (
	"testing"

	"github.com/pcdshub/pcdslog/base"
	"github.com/pcdshub/pcdslog/base/bconfig"
	"github.com/pcdshub/pcdslog/util"
	"github.com/stretchr/testify/assert"
)

type filtersDocument struct {
	Filters []bconfig.LogFilterConfigHolder `yaml:"filters"`
}

func TestFilterConfig(t *testing.T) {
	Register()
	doc := filtersDocument{}
	err := util.UnmarshalYamlString(`
filters:
  - type: warningDemoter
    level: DEBUG
  - type: messageDemoter
    logger: pcds-logging
    level: 20
    onlyDuplicates: false
    match: "Subscription * callback exception"
  - type: callbackExceptionDemoter
`, &doc)
	if !assert.NoError(t, err) {
		return
	}
	if !assert.Len(t, doc.Filters, 3) {
		return
	}
	for _, holder := range doc.Filters {
		assert.NoError(t, holder.Value.VerifyConfig())
	}
	assert.Equal(t, "messageDemoter", doc.Filters[1].Value.GetType())
	assert.Equal(t, "3:5", doc.Filters[0].Location)

	loggers := base.NewLoggerRegistry()
	installed := make([]*Filter, 0, 3)
	for _, holder := range doc.Filters {
		f, ierr := holder.Value.InstallFilter(loggers)
		if assert.NoError(t, ierr) {
			installed = append(installed, f.(*Filter))
		}
	}
	if !assert.Len(t, installed, 3) {
		return
	}
	assert.Same(t, loggers.GetLogger("pcdslog.warnings"), installed[0].Target())
	assert.True(t, installed[0].OnlyDuplicates())
	assert.Equal(t, base.DEBUG, installed[0].Level())

	assert.Same(t, loggers.GetLogger("pcds-logging"), installed[1].Target())
	assert.False(t, installed[1].OnlyDuplicates())
	assert.Equal(t, base.INFO, installed[1].Level())
	assert.Equal(t, "Subscription * callback exception", installed[1].Policy().(*MessagePolicy).Pattern())

	assert.Same(t, loggers.GetLogger("ophyd.objects"), installed[2].Target())
}

func TestFilterConfigErrors(t *testing.T) {
	Register()
	doc := filtersDocument{}
	assert.ErrorContains(t, util.UnmarshalYamlString(`
filters:
  - level: DEBUG
    type: warningDemoter
`, &doc), ".type is not the first property")

	assert.ErrorContains(t, util.UnmarshalYamlString(`
filters:
  - type: silencer
`, &doc), "unsupported 'silencer'")

	assert.ErrorContains(t, util.UnmarshalYamlString(`
filters:
  - type: warningDemoter
    colour: red
`, &doc), "colour")

	doc = filtersDocument{}
	assert.NoError(t, util.UnmarshalYamlString(`
filters:
  - type: messageDemoter
    level: LOUD
    match: "[oops"
`, &doc))
	assert.ErrorIs(t, doc.Filters[0].Value.VerifyConfig(), base.ErrInvalidLevel)
	doc.Filters[0].Value.(*MessageDemoterConfig).Level = nil
	assert.ErrorContains(t, doc.Filters[0].Value.VerifyConfig(), ".match")
}
