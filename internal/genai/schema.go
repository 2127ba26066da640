package genai

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	genaisdk "google.golang.org/genai"
)

// Schema is a declarative response schema, defined once per pipeline. It is
// rendered two ways: as the SDK schema constraining the model's output on the
// request, and as a compiled JSON Schema that re-validates the decoded
// response at the boundary. Trusting the request-side constraint alone is not
// enough; models occasionally return near-misses.
type Schema struct {
	Type        string // object, array, string, integer, number, boolean
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []string
	Minimum     *float64
	Maximum     *float64

	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
}

// ToGenAI renders the schema for the SDK request.
func (s *Schema) ToGenAI() *genaisdk.Schema {
	if s == nil {
		return nil
	}
	out := &genaisdk.Schema{
		Type:        sdkType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
		Items:       s.Items.ToGenAI(),
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genaisdk.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = p.ToGenAI()
		}
	}
	return out
}

func sdkType(t string) genaisdk.Type {
	switch t {
	case "object":
		return genaisdk.TypeObject
	case "array":
		return genaisdk.TypeArray
	case "string":
		return genaisdk.TypeString
	case "integer":
		return genaisdk.TypeInteger
	case "number":
		return genaisdk.TypeNumber
	case "boolean":
		return genaisdk.TypeBoolean
	}
	return genaisdk.TypeUnspecified
}

// document renders the schema as a plain JSON Schema object.
func (s *Schema) document() map[string]interface{} {
	doc := map[string]interface{}{"type": s.Type}
	if len(s.Properties) > 0 {
		props := make(map[string]interface{}, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.document()
		}
		doc["properties"] = props
	}
	if len(s.Required) > 0 {
		doc["required"] = s.Required
	}
	if s.Items != nil {
		doc["items"] = s.Items.document()
	}
	if len(s.Enum) > 0 {
		enum := make([]interface{}, len(s.Enum))
		for i, e := range s.Enum {
			enum[i] = e
		}
		doc["enum"] = enum
	}
	if s.Minimum != nil {
		doc["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		doc["maximum"] = *s.Maximum
	}
	return doc
}

// compile builds the validator once. Schemas are shared package-level values
// used from multiple goroutines, so compilation is guarded by a Once.
func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.compileOnce.Do(func() {
		raw, err := json.Marshal(s.document())
		if err != nil {
			s.compileErr = fmt.Errorf("rendering schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("response.json", strings.NewReader(string(raw))); err != nil {
			s.compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiled, err := compiler.Compile("response.json")
		if err != nil {
			s.compileErr = fmt.Errorf("compiling schema: %w", err)
			return
		}
		s.compiled = compiled
	})
	return s.compiled, s.compileErr
}

// Validate checks a decoded response against the schema.
func (s *Schema) Validate(raw json.RawMessage) error {
	compiled, err := s.compile()
	if err != nil {
		return err
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("response violates schema: %w", err)
	}
	return nil
}

// Float is a convenience for Minimum/Maximum literals.
func Float(v float64) *float64 { return &v }
