package ruleset

// Flatten maps every leaf of the tree to its dotted path. Object nodes with
// children are expanded; everything else, including an object with an empty
// child map, is recorded as a leaf.
func Flatten(tree *RuleTree) map[string]*Rule {
	flat := map[string]*Rule{}
	flattenInto(flat, "", tree)
	return flat
}

func flattenInto(flat map[string]*Rule, prefix string, r *Rule) {
	for name, child := range r.Children {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if child.Type == TypeObject && len(child.Children) > 0 {
			flattenInto(flat, path, child)
			continue
		}
		flat[path] = child
	}
}

// ApplyOverrides computes the effective rule tree for an endpoint. It is a
// pure function: the input tree is never mutated and the result shares no
// state with it, so a cached base tree can back any number of override calls.
// An appended path nested deeper than MaxDepth fails with ErrMaxDepth.
func ApplyOverrides(tree *RuleTree, ov Overrides) (*RuleTree, error) {
	flat := Flatten(tree)

	include := pathSet(ov.Include)
	exclude := pathSet(ov.Exclude)
	optional := pathSet(ov.Optional)
	required := pathSet(ov.Required)

	effective := make(map[string]*Rule, len(flat))
	for path, r := range flat {
		if len(include) > 0 {
			if _, ok := include[path]; !ok {
				continue
			}
		}
		if _, ok := exclude[path]; ok {
			continue
		}
		effective[path] = applyFlags(r.Clone(), path, optional, required)
	}

	// Appended fields land unconditionally: they are not subject to the
	// include/exclude filtering above.
	for path, def := range ov.Append {
		effective[path] = applyFlags(mergeAppend(def), path, optional, required)
	}

	out := NewRuleTree()
	for path, r := range effective {
		if err := insertPath(out, path, r, 0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// applyFlags resolves the optional/required sets for one path. Required wins
// when a path appears in both.
func applyFlags(r *Rule, path string, optional, required map[string]struct{}) *Rule {
	if _, ok := optional[path]; ok {
		r.Required = Ptr(false)
	}
	if _, ok := required[path]; ok {
		r.Required = Ptr(true)
	}
	return r
}

// mergeAppend fills an appended definition with the append defaults: a
// required string. Caller-supplied fields take precedence.
func mergeAppend(def Rule) *Rule {
	r := def.Clone()
	if r.Type == TypeInvalid {
		r.Type = TypeString
	}
	if r.Required == nil {
		r.Required = Ptr(true)
	}
	if r.Type == TypeObject && r.Children == nil {
		r.Children = map[string]*Rule{}
	}
	return r
}
