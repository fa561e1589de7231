package ruleset

import (
	"sort"

	js "github.com/restkit/ruleset/jsonschema"
)

// objectIDPattern matches the canonical 24-hex-digit identifier encoding.
const objectIDPattern = "^[0-9a-fA-F]{24}$"

// ToWireSchema converts a rule tree into its wire-format schema document.
// allowUnknown is applied to every object node; it is the only per-call knob.
// The conversion is total over well-formed trees and fails only when nesting
// exceeds MaxDepth.
func ToWireSchema(tree *RuleTree, allowUnknown bool) (*js.Schema, error) {
	return emitRule(tree, allowUnknown, 0)
}

func emitRule(r *Rule, allowUnknown bool, depth int) (*js.Schema, error) {
	if depth > MaxDepth {
		return nil, ErrMaxDepth
	}
	switch r.Type {
	case TypeObject:
		props := make(map[string]*js.Schema, len(r.Children))
		var req []string
		for name, child := range r.Children {
			ps, err := emitRule(child, allowUnknown, depth+1)
			if err != nil {
				return nil, err
			}
			props[name] = ps
			if child.IsRequired() {
				req = append(req, name)
			}
		}
		sort.Strings(req)
		return &js.Schema{
			Type:                 "object",
			Properties:           props,
			Required:             req, // omitted from the wire form when empty
			AdditionalProperties: allowUnknown,
		}, nil
	case TypeArray:
		s := &js.Schema{Type: "array", MinItems: clonePtr(r.MinItems), MaxItems: clonePtr(r.MaxItems)}
		if r.Items != nil {
			items, err := emitRule(r.Items, allowUnknown, depth+1)
			if err != nil {
				return nil, err
			}
			s.Items = items
		}
		return s, nil
	case TypeString:
		s := &js.Schema{
			Type:      "string",
			MinLength: clonePtr(r.MinLength),
			MaxLength: clonePtr(r.MaxLength),
			Pattern:   r.Pattern,
			Default:   r.Default,
		}
		if len(r.Enum) > 0 {
			s.Enum = append([]string(nil), r.Enum...)
		}
		return s, nil
	case TypeNumber:
		return &js.Schema{Type: "number", Minimum: clonePtr(r.Min), Maximum: clonePtr(r.Max), Default: r.Default}, nil
	case TypeBoolean:
		return &js.Schema{Type: "boolean", Default: r.Default}, nil
	case TypeDate:
		return &js.Schema{Type: "string", Format: "date-time", Default: r.Default}, nil
	case TypeObjectID:
		return &js.Schema{Type: "string", Pattern: objectIDPattern, Default: r.Default}, nil
	default:
		// mixed and buffer stay unconstrained
		return &js.Schema{Default: r.Default}, nil
	}
}
