// Package schemafile loads declarative schema definitions (YAML or JSON) and
// exposes them through the ruleset path-enumeration boundary. A parsed Schema
// is immutable; reuse one reference per definition so registry caching keys
// on it.
package schemafile

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	ruleset "github.com/restkit/ruleset"
)

// FieldDef is one field definition in a schema document.
type FieldDef struct {
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
	Default  any    `yaml:"default"`

	// string
	Enum      []string `yaml:"enum"`
	Match     string   `yaml:"match"`
	MinLength *int     `yaml:"minlength"`
	MaxLength *int     `yaml:"maxlength"`

	// number or date; for date fields the bound is an RFC 3339 timestamp
	Min any `yaml:"min"`
	Max any `yaml:"max"`

	// array
	Of       *FieldDef `yaml:"of"`
	MinItems *int      `yaml:"minitems"`
	MaxItems *int      `yaml:"maxitems"`

	// nested literal object: enumerated as dotted paths
	Fields map[string]FieldDef `yaml:"fields"`
	// embedded sub-document: enumerated as a nested schema
	Schema map[string]FieldDef `yaml:"schema"`
}

// Schema is a parsed definition document implementing ruleset.PathEnumerator.
type Schema struct {
	fields map[string]FieldDef
}

var _ ruleset.PathEnumerator = (*Schema)(nil)

type document struct {
	Fields map[string]FieldDef `yaml:"fields"`
}

// Parse decodes a schema document. The input may be YAML or JSON (YAML is a
// superset); the document root must carry a "fields" mapping.
func Parse(data []byte) (*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	if doc.Fields == nil {
		return nil, errors.New(`schemafile: document has no "fields" mapping`)
	}
	return &Schema{fields: doc.Fields}, nil
}

// Load reads and parses a schema document from disk.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	return Parse(data)
}

// EachPath enumerates declared fields in sorted order. Nested literal objects
// contribute dotted paths; embedded sub-documents contribute a nested schema
// descriptor.
func (s *Schema) EachPath(fn func(path string, d ruleset.FieldDescriptor)) {
	eachPath(s.fields, "", fn)
}

func eachPath(fields map[string]FieldDef, prefix string, fn func(string, ruleset.FieldDescriptor)) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := fields[name]
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if len(def.Fields) > 0 {
			eachPath(def.Fields, path, fn)
			continue
		}
		fn(path, toDescriptor(def))
	}
}

func toDescriptor(def FieldDef) ruleset.FieldDescriptor {
	d := ruleset.FieldDescriptor{
		Kind:      def.Type,
		Required:  def.Required,
		Default:   def.Default,
		Match:     def.Match,
		MinLength: def.MinLength,
		MaxLength: def.MaxLength,
		MinItems:  def.MinItems,
		MaxItems:  def.MaxItems,
	}
	if len(def.Enum) > 0 {
		d.Enum = append([]string(nil), def.Enum...)
	}
	switch ruleset.KindToType(def.Type) {
	case ruleset.TypeNumber:
		d.Min = toFloat(def.Min)
		d.Max = toFloat(def.Max)
	case ruleset.TypeDate:
		d.MinTime = toTime(def.Min)
		d.MaxTime = toTime(def.Max)
	}
	if def.Of != nil {
		elem := toDescriptor(*def.Of)
		d.Elem = &elem
	}
	if len(def.Schema) > 0 {
		d.Schema = &Schema{fields: def.Schema}
	} else if len(def.Fields) > 0 {
		// only reachable for array elements; literal nesting at field level
		// is flattened by EachPath before descriptors are built
		d.Schema = &Schema{fields: def.Fields}
	}
	return d
}

func toFloat(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	}
	return nil
}

func toTime(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return &ts
		}
	}
	return nil
}
