package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaURL = "https://reglet.dev/schemas/composite-manifest.json"

var (
	schemaOnce sync.Once
	schemaJSON []byte
	schemaErr  error
)

// Schema returns the JSON Schema of Manifest, generated from its struct tags.
func Schema() ([]byte, error) {
	schemaOnce.Do(func() {
		r := new(invopop.Reflector)
		r.ExpandedStruct = true
		r.Anonymous = true
		schemaJSON, schemaErr = json.MarshalIndent(r.Reflect(&Manifest{}), "", "  ")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to marshal generated schema: %w", schemaErr)
		}
	})
	return bytes.Clone(schemaJSON), schemaErr
}

// Validator checks raw manifest documents against Schema before they are
// decoded, so unknown keys and wrong types are reported with their location.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the manifest schema.
func NewValidator() (*Validator, error) {
	raw, err := Schema()
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to load manifest schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile manifest schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// ValidateJSON validates a JSON manifest document.
func (v *Validator) ValidateJSON(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return v.validate(doc)
}

// ValidateYAML validates a YAML manifest document.
func (v *Validator) ValidateYAML(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	// Round-trip through JSON so numbers and maps take the shapes the
	// validator expects.
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return v.ValidateJSON(b)
}

func (v *Validator) validate(doc any) error {
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return nil
}
