package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

type yamlParentType struct {
	Name  string        `yaml:"name"`
	Child yamlChildType `yaml:"child"`
}

type yamlChildType string

var yamlTestTempLocation string

func (yc *yamlChildType) UnmarshalYAML(node *yaml.Node) error {
	yamlTestTempLocation = GetYamlLocation(node)
	if node.Value == "fail" {
		return NewYamlError(node, "Fail")
	}
	*yc = yamlChildType(node.Value)
	return nil
}

func TestYAMLUnmarshal(t *testing.T) {
	var yp yamlParentType

	assert.ErrorContains(t, UnmarshalYamlString(`
name: hi
child: fail
`, &yp), "yaml line 3:8: Fail")
	assert.Equal(t, "3:8", yamlTestTempLocation)

	assert.ErrorContains(t, UnmarshalYamlString("name: hi\nage: 3\n", &yp), "field age not found")
	assert.NoError(t, UnmarshalYamlString("", &yp), "empty document")
}

func TestYAMLUnmarshalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.yml")
	assert.NoError(t, os.WriteFile(path, []byte("name: file\nchild: ok\n"), 0o644))

	var yp yamlParentType
	assert.NoError(t, UnmarshalYamlFile(path, &yp))
	assert.Equal(t, yamlParentType{Name: "file", Child: "ok"}, yp)

	assert.NoError(t, os.WriteFile(path, []byte("name: [\n"), 0o644))
	assert.ErrorContains(t, UnmarshalYamlFile(path, &yp), path+": ")
	assert.Error(t, UnmarshalYamlFile(path+".missing", &yp))
}
