package ruleset

import "strings"

// PrimitiveType is the closed set of constraint node types. The zero value
// TypeInvalid marks an unset type so that merge logic can tell "not given"
// apart from an explicit choice.
type PrimitiveType uint8

const (
	TypeInvalid PrimitiveType = iota
	TypeString
	TypeNumber
	TypeBoolean
	TypeDate
	TypeObjectID
	TypeArray
	TypeObject
	TypeMixed
	TypeBuffer
)

// String returns the canonical lowercase name of the type.
func (t PrimitiveType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeDate:
		return "date"
	case TypeObjectID:
		return "objectId"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeMixed:
		return "mixed"
	case TypeBuffer:
		return "buffer"
	default:
		return "invalid"
	}
}

// KindToType maps an external descriptor kind tag to a PrimitiveType.
// The mapping is total: unrecognized tags become TypeMixed.
func KindToType(kind string) PrimitiveType {
	switch strings.ToLower(kind) {
	case "string":
		return TypeString
	case "number", "decimal128":
		return TypeNumber
	case "boolean", "bool":
		return TypeBoolean
	case "date":
		return TypeDate
	case "objectid":
		return TypeObjectID
	case "array":
		return TypeArray
	case "object", "embedded", "map":
		return TypeObject
	case "buffer":
		return TypeBuffer
	default:
		return TypeMixed
	}
}

// Rule is a single constraint node. Facet fields are pointer-typed so that an
// absent constraint is distinguishable from a zero one; only the facet group
// matching Type is meaningful.
type Rule struct {
	Type     PrimitiveType
	Required *bool

	// string facet
	MinLength *int
	MaxLength *int
	Pattern   string // regex source
	Enum      []string

	// numeric facet; dates are held as epoch milliseconds
	Min *float64
	Max *float64

	// array facet
	Items    *Rule
	MinItems *int
	MaxItems *int

	// object facet
	Children map[string]*Rule

	// Default is applied by the compiled validator when the field is absent.
	Default any
}

// RuleTree is the root of a document shape: always TypeObject with a non-nil
// Children map. Nested fields are addressed by dot-notation paths.
type RuleTree = Rule

// NewRuleTree returns an empty rule tree.
func NewRuleTree() *RuleTree {
	return &RuleTree{Type: TypeObject, Children: map[string]*Rule{}}
}

// IsRequired reports the presence requirement, treating an unset flag as
// optional.
func (r *Rule) IsRequired() bool {
	return r.Required != nil && *r.Required
}

// Clone returns a deep copy. The copy shares no mutable state with the
// receiver, so it can be adjusted without touching cached trees.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}
	out := *r
	out.Required = clonePtr(r.Required)
	out.MinLength = clonePtr(r.MinLength)
	out.MaxLength = clonePtr(r.MaxLength)
	out.Min = clonePtr(r.Min)
	out.Max = clonePtr(r.Max)
	out.MinItems = clonePtr(r.MinItems)
	out.MaxItems = clonePtr(r.MaxItems)
	if r.Enum != nil {
		out.Enum = append([]string(nil), r.Enum...)
	}
	out.Items = r.Items.Clone()
	if r.Children != nil {
		out.Children = make(map[string]*Rule, len(r.Children))
		for k, c := range r.Children {
			out.Children[k] = c.Clone()
		}
	}
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr is a convenience for building facet literals, e.g. Ptr(3) or Ptr(13.0).
func Ptr[T any](v T) *T { return &v }
