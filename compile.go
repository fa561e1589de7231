package ruleset

import (
	"fmt"
	"strings"

	"github.com/restkit/ruleset/internal/engine"
	js "github.com/restkit/ruleset/jsonschema"
)

// ValidateFunc checks a candidate payload against a compiled schema. On
// success Data carries the validated copy, reflecting any coercion and
// defaulting the engine applied; the original payload is never mutated.
type ValidateFunc func(payload any) Result

// EmitWireSchema derives the wire-format schema for (schema, overrides,
// options), memoized per schema identity and override key. With a nil schema
// the document is constructed from the overrides alone (no-schema mode).
func (r *Registry) EmitWireSchema(schema any, ov Overrides, opt Options) (*js.Schema, error) {
	key := ov.Key(opt)

	r.mu.Lock()
	id, err := r.handleFor(schema)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	b := r.buckets[id]
	if ws, ok := b.wire[key]; ok {
		r.mu.Unlock()
		return ws, nil
	}
	r.mu.Unlock()

	ws, err := r.emitUncached(schema, ov, opt)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := b.wire[key]; ok {
		return prev, nil
	}
	b.wire[key] = ws
	return ws, nil
}

func (r *Registry) emitUncached(schema any, ov Overrides, opt Options) (*js.Schema, error) {
	if schema == nil {
		return noSchemaWire(ov, opt)
	}
	tree, err := r.CompileRuleTree(schema)
	if err != nil {
		return nil, err
	}
	eff, err := ApplyOverrides(tree, ov)
	if err != nil {
		return nil, err
	}
	return ToWireSchema(eff, opt.AllowUnknown)
}

// noSchemaWire builds a wire schema purely from overrides: appended
// definitions plus include names, where an included name without a definition
// defaults to an optional string. The introspection and override pipeline is
// skipped entirely.
func noSchemaWire(ov Overrides, opt Options) (*js.Schema, error) {
	optional := pathSet(ov.Optional)
	required := pathSet(ov.Required)

	tree := NewRuleTree()
	for _, path := range ov.Include {
		if _, defined := ov.Append[path]; defined {
			continue
		}
		if err := insertPath(tree, path, applyFlags(&Rule{Type: TypeString}, path, optional, required), 0); err != nil {
			return nil, err
		}
	}
	for path, def := range ov.Append {
		if err := insertPath(tree, path, applyFlags(mergeAppend(def), path, optional, required), 0); err != nil {
			return nil, err
		}
	}
	return ToWireSchema(tree, opt.AllowUnknown)
}

// BuildValidator compiles the effective wire schema into an executable
// validation function, memoized like EmitWireSchema. The engine collects all
// errors, applies declared defaults, coerces primitives when Options ask for
// it, and strips unknown properties unless AllowUnknown keeps them.
func (r *Registry) BuildValidator(schema any, ov Overrides, opt Options) (ValidateFunc, error) {
	key := ov.Key(opt)

	r.mu.Lock()
	id, err := r.handleFor(schema)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	b := r.buckets[id]
	if fn, ok := b.validators[key]; ok {
		r.mu.Unlock()
		return fn, nil
	}
	r.mu.Unlock()

	// collapse racing compilations of the same (schema, key) pair
	v, err, _ := r.group.Do(fmt.Sprintf("%d:%s", id, key), func() (any, error) {
		ws, err := r.EmitWireSchema(schema, ov, opt)
		if err != nil {
			return nil, err
		}
		chk, err := engine.Compile(ws, engine.Options{
			AllErrors:        true,
			CoerceTypes:      opt.CoerceTypes,
			UseDefaults:      true,
			RemoveAdditional: !opt.AllowUnknown,
		})
		if err != nil {
			return nil, err
		}
		return wrapEngine(chk), nil
	})
	if err != nil {
		return nil, err
	}
	fn := v.(ValidateFunc)

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := b.validators[key]; ok {
		return prev, nil
	}
	b.validators[key] = fn
	return fn, nil
}

func wrapEngine(chk engine.ValidateFunc) ValidateFunc {
	return func(payload any) Result {
		out, violations := chk(payload)
		if len(violations) > 0 {
			return Result{OK: false, Errors: normalizeViolations(violations)}
		}
		return Result{OK: true, Data: out}
	}
}

// normalizeViolations translates engine failure locations into dotted field
// paths. Missing-required-field failures are reported under the missing
// field's name.
func normalizeViolations(violations []engine.Violation) []FieldError {
	out := make([]FieldError, 0, len(violations))
	for _, v := range violations {
		field := dotPath(v.Path)
		if v.Keyword == KindRequired && v.Property != "" {
			if field == "" {
				field = v.Property
			} else {
				field = field + "." + v.Property
			}
		}
		out = append(out, FieldError{Field: field, Kind: v.Keyword, Message: v.Message})
	}
	return out
}

func dotPath(pointer string) string {
	return strings.TrimPrefix(strings.ReplaceAll(pointer, "/", "."), ".")
}
