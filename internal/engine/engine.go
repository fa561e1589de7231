// Package engine compiles wire-format schema documents into executable
// validation functions. It collects violations rather than failing fast by
// default, optionally coerces primitive types, applies declared defaults, and
// strips or rejects unknown properties. Validated output is always freshly
// built; the candidate payload is never mutated.
package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/restkit/ruleset/i18n"
	js "github.com/restkit/ruleset/jsonschema"
)

// maxCompileDepth bounds schema nesting during compilation.
const maxCompileDepth = 64

// Options configures compiled validator behavior.
type Options struct {
	// AllErrors collects every violation instead of stopping at the first.
	AllErrors bool
	// CoerceTypes converts compatible primitives instead of failing the type
	// check (e.g. "5" for a number property).
	CoerceTypes bool
	// UseDefaults fills absent properties from the schema's declared
	// defaults.
	UseDefaults bool
	// RemoveAdditional strips properties rejected by additionalProperties
	// instead of reporting them.
	RemoveAdditional bool
}

// Violation is one constraint failure. Path is a JSON-Pointer-style location
// ("/a/0/b", "" for the root); Keyword names the failed constraint; Property
// carries the missing key for required failures.
type Violation struct {
	Path     string
	Keyword  string
	Property string
	Message  string
}

// ValidateFunc runs a compiled schema against a payload. It returns the
// validated (possibly coerced and defaulted) copy and the collected
// violations; the copy is meaningless when violations are present.
type ValidateFunc func(v any) (any, []Violation)

// checkFunc validates one subtree, appending violations to sink.
type checkFunc func(path string, v any, sink *[]Violation) any

// Compile builds a ValidateFunc for the schema. Patterns are compiled once
// here; an invalid pattern or over-deep schema fails compilation.
func Compile(s *js.Schema, opt Options) (ValidateFunc, error) {
	c := &compiler{opt: opt}
	chk, err := c.compile(s, 0)
	if err != nil {
		return nil, err
	}
	return func(v any) (any, []Violation) {
		var sink []Violation
		out := chk("", v, &sink)
		if len(sink) > 0 {
			return nil, sink
		}
		return out, nil
	}, nil
}

type compiler struct {
	opt Options
}

func (c *compiler) compile(s *js.Schema, depth int) (checkFunc, error) {
	if depth > maxCompileDepth {
		return nil, fmt.Errorf("engine: schema nesting exceeds %d levels", maxCompileDepth)
	}
	if s == nil {
		return c.compileAny(), nil
	}
	switch s.Type {
	case "object":
		return c.compileObject(s, depth)
	case "array":
		return c.compileArray(s, depth)
	case "string":
		return c.compileString(s)
	case "number":
		return c.compileNumber(s)
	case "boolean":
		return c.compileBoolean(), nil
	default:
		// no type keyword: unconstrained
		return c.compileAny(), nil
	}
}

// stop reports whether validation should short-circuit after a violation.
func (c *compiler) stop(sink *[]Violation) bool {
	return !c.opt.AllErrors && len(*sink) > 0
}

func (c *compiler) violate(sink *[]Violation, path, keyword string) {
	*sink = append(*sink, Violation{Path: path, Keyword: keyword, Message: i18n.T(keyword, nil)})
}

func (c *compiler) compileAny() checkFunc {
	return func(_ string, v any, _ *[]Violation) any { return deepCopy(v) }
}

func (c *compiler) compileObject(s *js.Schema, depth int) (checkFunc, error) {
	names := make([]string, 0, len(s.Properties))
	props := make(map[string]checkFunc, len(s.Properties))
	defaults := map[string]any{}
	for name, ps := range s.Properties {
		chk, err := c.compile(ps, depth+1)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		props[name] = chk
		if ps != nil && ps.Default != nil {
			defaults[name] = ps.Default
		}
	}
	sort.Strings(names)
	required := append([]string(nil), s.Required...)
	sort.Strings(required)
	additional := true
	if b, ok := s.AdditionalProperties.(bool); ok {
		additional = b
	}

	return func(path string, v any, sink *[]Violation) any {
		m, ok := v.(map[string]any)
		if !ok {
			c.violate(sink, path, "type")
			return nil
		}
		out := make(map[string]any, len(m))
		for _, name := range names {
			if val, present := m[name]; present {
				out[name] = props[name](path+"/"+name, val, sink)
				if c.stop(sink) {
					return nil
				}
				continue
			}
			if dv, ok := defaults[name]; ok && c.opt.UseDefaults {
				out[name] = deepCopy(dv)
			}
		}
		for _, name := range required {
			if _, present := out[name]; present {
				continue
			}
			*sink = append(*sink, Violation{Path: path, Keyword: "required", Property: name, Message: i18n.T("required", nil)})
			if c.stop(sink) {
				return nil
			}
		}
		// unknown keys in sorted order for deterministic reporting
		var unknown []string
		for k := range m {
			if _, known := props[k]; !known {
				unknown = append(unknown, k)
			}
		}
		sort.Strings(unknown)
		for _, k := range unknown {
			if additional {
				out[k] = deepCopy(m[k])
				continue
			}
			if c.opt.RemoveAdditional {
				continue
			}
			c.violate(sink, path+"/"+k, "additionalProperties")
			if c.stop(sink) {
				return nil
			}
		}
		return out
	}, nil
}

func (c *compiler) compileArray(s *js.Schema, depth int) (checkFunc, error) {
	items, err := c.compile(s.Items, depth+1)
	if err != nil {
		return nil, err
	}
	minItems, maxItems := s.MinItems, s.MaxItems
	return func(path string, v any, sink *[]Violation) any {
		arr, ok := v.([]any)
		if !ok {
			c.violate(sink, path, "type")
			return nil
		}
		if minItems != nil && len(arr) < *minItems {
			c.violate(sink, path, "minItems")
			if c.stop(sink) {
				return nil
			}
		}
		if maxItems != nil && len(arr) > *maxItems {
			c.violate(sink, path, "maxItems")
			if c.stop(sink) {
				return nil
			}
		}
		out := make([]any, len(arr))
		for i, el := range arr {
			out[i] = items(path+"/"+strconv.Itoa(i), el, sink)
			if c.stop(sink) {
				return nil
			}
		}
		return out
	}, nil
}

func (c *compiler) compileString(s *js.Schema) (checkFunc, error) {
	var re *regexp.Regexp
	if s.Pattern != "" {
		var err error
		re, err = regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("engine: pattern %q: %w", s.Pattern, err)
		}
	}
	var enum map[string]struct{}
	if len(s.Enum) > 0 {
		enum = make(map[string]struct{}, len(s.Enum))
		for _, e := range s.Enum {
			enum[e] = struct{}{}
		}
	}
	minLen, maxLen, format := s.MinLength, s.MaxLength, s.Format
	return func(path string, v any, sink *[]Violation) any {
		str, ok := coerceString(v, c.opt.CoerceTypes)
		if !ok {
			c.violate(sink, path, "type")
			return nil
		}
		n := utf8.RuneCountInString(str)
		if minLen != nil && n < *minLen {
			c.violate(sink, path, "minLength")
			if c.stop(sink) {
				return nil
			}
		}
		if maxLen != nil && n > *maxLen {
			c.violate(sink, path, "maxLength")
			if c.stop(sink) {
				return nil
			}
		}
		if re != nil && !re.MatchString(str) {
			c.violate(sink, path, "pattern")
			if c.stop(sink) {
				return nil
			}
		}
		if enum != nil {
			if _, ok := enum[str]; !ok {
				c.violate(sink, path, "enum")
				if c.stop(sink) {
					return nil
				}
			}
		}
		if format == "date-time" {
			if _, err := time.Parse(time.RFC3339, str); err != nil {
				c.violate(sink, path, "format")
				if c.stop(sink) {
					return nil
				}
			}
		}
		return str
	}, nil
}

func (c *compiler) compileNumber(s *js.Schema) (checkFunc, error) {
	minimum, maximum := s.Minimum, s.Maximum
	return func(path string, v any, sink *[]Violation) any {
		f, ok := coerceNumber(v, c.opt.CoerceTypes)
		if !ok {
			c.violate(sink, path, "type")
			return nil
		}
		if minimum != nil && f < *minimum {
			c.violate(sink, path, "minimum")
			if c.stop(sink) {
				return nil
			}
		}
		if maximum != nil && f > *maximum {
			c.violate(sink, path, "maximum")
			if c.stop(sink) {
				return nil
			}
		}
		return f
	}, nil
}

func (c *compiler) compileBoolean() checkFunc {
	return func(path string, v any, sink *[]Violation) any {
		switch t := v.(type) {
		case bool:
			return t
		case string:
			if c.opt.CoerceTypes {
				if t == "true" {
					return true
				}
				if t == "false" {
					return false
				}
			}
		case float64:
			if c.opt.CoerceTypes && (t == 0 || t == 1) {
				return t == 1
			}
		}
		c.violate(sink, path, "type")
		return nil
	}
}

func coerceString(v any, coerce bool) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		if coerce {
			return t.String(), true
		}
	case float64:
		if coerce {
			return strconv.FormatFloat(t, 'g', -1, 64), true
		}
	case bool:
		if coerce {
			return strconv.FormatBool(t), true
		}
	}
	return "", false
}

func coerceNumber(v any, coerce bool) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
	case string:
		if coerce {
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f, true
			}
		}
	case bool:
		if coerce {
			if t {
				return 1, true
			}
			return 0, true
		}
	}
	return 0, false
}

// deepCopy clones JSON-shaped values so validated output never aliases the
// input payload or schema defaults.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = deepCopy(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = deepCopy(t[i])
		}
		return out
	default:
		return v
	}
}
