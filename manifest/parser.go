package manifest

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parser parses raw manifest bytes into a Manifest.
type Parser interface {
	// Parse unmarshals manifest bytes into a Manifest struct.
	Parse(data []byte) (*Manifest, error)
}

// YAMLParser implements Parser for YAML.
type YAMLParser struct{}

// NewYAMLParser creates a new YAMLParser.
func NewYAMLParser() Parser {
	return &YAMLParser{}
}

// Parse unmarshals YAML bytes into a Manifest struct.
func (p *YAMLParser) Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// JSONParser implements Parser for JSON.
type JSONParser struct{}

// NewJSONParser creates a new JSONParser.
func NewJSONParser() Parser {
	return &JSONParser{}
}

// Parse unmarshals JSON bytes into a Manifest struct.
func (p *JSONParser) Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParserFor picks a parser from the file extension of path. Anything other
// than .json is read as YAML.
func ParserFor(path string) Parser {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONParser()
	}
	return NewYAMLParser()
}

var (
	_ Parser = (*YAMLParser)(nil)
	_ Parser = (*JSONParser)(nil)
)
