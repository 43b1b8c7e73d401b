package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NewYamlError creates a new error with location information of YAML node
func NewYamlError(node *yaml.Node, message string) error {
	return fmt.Errorf("yaml line %d:%d: %s", node.Line, node.Column, message)
}

// UnmarshalYamlFile loads and unmarshals YAML from file to pointer to struct
func UnmarshalYamlFile(path string, output interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := UnmarshalYamlReader(file, output); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// UnmarshalYamlReader loads and unmarshals YAML from IO reader to pointer to struct
//
// Unknown fields are rejected, except inside custom unmarshalers which need to enforce it themselves
func UnmarshalYamlReader(reader io.Reader, output interface{}) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(output); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// UnmarshalYamlString loads and unmarshals YAML in string to pointer to struct
func UnmarshalYamlString(contents string, output interface{}) error {
	return UnmarshalYamlReader(strings.NewReader(contents), output)
}

// GetYamlLocation returns the "line:column" of YAML node
func GetYamlLocation(node *yaml.Node) string {
	return fmt.Sprintf("%d:%d", node.Line, node.Column)
}
