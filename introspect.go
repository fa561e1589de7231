package ruleset

import (
	"strings"
	"time"
)

// MaxDepth bounds schema and rule-tree nesting. The external schema format
// does not guarantee acyclicity, so recursion fails with ErrMaxDepth instead
// of overflowing the stack.
const MaxDepth = 64

// PathEnumerator is the schema provider boundary: one callback per declared
// field with its dotted path and constraint descriptor. Providers are treated
// as immutable and long-lived; the same reference must be reused across calls
// for identity-based caching to take effect.
type PathEnumerator interface {
	EachPath(fn func(path string, d FieldDescriptor))
}

// FieldDescriptor is the per-field view a provider exposes. Kind is the
// external type tag; the remaining fields are kind-specific constraints.
type FieldDescriptor struct {
	Kind     string
	Required bool
	Default  any

	// string
	Enum      []string
	Match     string // regex source
	MinLength *int
	MaxLength *int

	// number
	Min *float64
	Max *float64

	// date
	MinTime *time.Time
	MaxTime *time.Time

	// array: element descriptor
	Elem     *FieldDescriptor
	MinItems *int
	MaxItems *int

	// embedded sub-document: a nested PathEnumerator
	Schema any
}

// introspect walks the provider and compiles a rule tree. Dotted paths are
// materialized into nested object nodes as they are encountered.
func introspect(pe PathEnumerator, depth int) (*RuleTree, error) {
	if depth > MaxDepth {
		return nil, ErrMaxDepth
	}
	tree := NewRuleTree()
	var walkErr error
	pe.EachPath(func(path string, d FieldDescriptor) {
		if walkErr != nil {
			return
		}
		r, err := liftRule(d, depth)
		if err != nil {
			walkErr = err
			return
		}
		if err := insertPath(tree, path, r, depth); err != nil {
			walkErr = err
		}
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return tree, nil
}

// liftRule converts one descriptor into a rule, lifting the constraint facet
// that matches its kind.
func liftRule(d FieldDescriptor, depth int) (*Rule, error) {
	if depth > MaxDepth {
		return nil, ErrMaxDepth
	}
	r := &Rule{Type: KindToType(d.Kind), Required: Ptr(d.Required), Default: d.Default}

	// embedded sub-document wins over the declared kind
	if d.Schema != nil {
		sub, ok := d.Schema.(PathEnumerator)
		if !ok {
			return nil, ErrNotIntrospectable
		}
		child, err := introspect(sub, depth+1)
		if err != nil {
			return nil, err
		}
		r.Type = TypeObject
		r.Children = child.Children
		return r, nil
	}

	switch r.Type {
	case TypeString:
		if len(d.Enum) > 0 {
			r.Enum = append([]string(nil), d.Enum...)
		}
		r.Pattern = d.Match
		r.MinLength = clonePtr(d.MinLength)
		r.MaxLength = clonePtr(d.MaxLength)
	case TypeNumber:
		r.Min = clonePtr(d.Min)
		r.Max = clonePtr(d.Max)
	case TypeDate:
		if d.MinTime != nil {
			r.Min = Ptr(float64(d.MinTime.UnixMilli()))
		}
		if d.MaxTime != nil {
			r.Max = Ptr(float64(d.MaxTime.UnixMilli()))
		}
	case TypeArray:
		r.MinItems = clonePtr(d.MinItems)
		r.MaxItems = clonePtr(d.MaxItems)
		if d.Elem != nil {
			items, err := liftRule(*d.Elem, depth+1)
			if err != nil {
				return nil, err
			}
			// element rules carry no presence requirement of their own
			items.Required = nil
			r.Items = items
		}
	case TypeObject:
		if r.Children == nil {
			r.Children = map[string]*Rule{}
		}
	}
	return r, nil
}

// insertPath places r at the dotted path under root, creating intermediate
// object nodes as needed. An intermediate node that is not yet an object is
// converted to one, matching the materialization rule used when rebuilding
// trees after overrides.
func insertPath(root *Rule, path string, r *Rule, depth int) error {
	segs := strings.Split(path, ".")
	if depth+len(segs) > MaxDepth {
		return ErrMaxDepth
	}
	node := root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := node.Children[seg]
		if !ok || child.Type != TypeObject {
			child = &Rule{Type: TypeObject, Children: map[string]*Rule{}}
			node.Children[seg] = child
		}
		if child.Children == nil {
			child.Children = map[string]*Rule{}
		}
		node = child
	}
	node.Children[segs[len(segs)-1]] = r
	return nil
}
