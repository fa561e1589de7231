// Package queryutil provides query simulators over in-memory document
// collections: filtering, sorting, projection, and pagination. All functions
// are pure; inputs are never mutated and results are fresh slices.
package queryutil

import (
	"sort"
	"strings"
)

// Lookup resolves a dotted path inside a document.
func Lookup(doc map[string]any, path string) (any, bool) {
	segs := strings.Split(path, ".")
	var cur any = doc
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Filter retains documents matching every criterion. A criterion value is
// either a literal (equality) or an operator document such as {"$gte": 13};
// supported operators are $gt, $gte, $lt, $lte, $ne and $in.
func Filter(docs []map[string]any, criteria map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		if matches(doc, criteria) {
			out = append(out, doc)
		}
	}
	return out
}

func matches(doc map[string]any, criteria map[string]any) bool {
	for path, want := range criteria {
		got, ok := Lookup(doc, path)
		if ops, isOps := operatorDoc(want); isOps {
			if !matchOps(got, ok, ops) {
				return false
			}
			continue
		}
		if !ok || !equal(got, want) {
			return false
		}
	}
	return true
}

func operatorDoc(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

func matchOps(got any, present bool, ops map[string]any) bool {
	for op, arg := range ops {
		switch op {
		case "$ne":
			if present && equal(got, arg) {
				return false
			}
		case "$in":
			list, ok := arg.([]any)
			if !ok || !present {
				return false
			}
			found := false
			for _, cand := range list {
				if equal(got, cand) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case "$gt", "$gte", "$lt", "$lte":
			if !present {
				return false
			}
			c, ok := compare(got, arg)
			if !ok {
				return false
			}
			switch op {
			case "$gt":
				if c <= 0 {
					return false
				}
			case "$gte":
				if c < 0 {
					return false
				}
			case "$lt":
				if c >= 0 {
					return false
				}
			case "$lte":
				if c > 0 {
					return false
				}
			}
		default:
			return false
		}
	}
	return true
}

// Sort orders documents by a comma-separated key list; a "-" prefix sorts
// that key descending. The sort is stable and numbers compare numerically.
func Sort(docs []map[string]any, spec string) []map[string]any {
	out := append([]map[string]any(nil), docs...)
	keys := parseSortSpec(spec)
	if len(keys) == 0 {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, k := range keys {
			a, aok := Lookup(out[i], k.path)
			b, bok := Lookup(out[j], k.path)
			if !aok && !bok {
				continue
			}
			// missing values sort first
			if !aok || !bok {
				if k.desc {
					return bok
				}
				return !aok
			}
			c, ok := compare(a, b)
			if !ok || c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out
}

type sortKey struct {
	path string
	desc bool
}

func parseSortSpec(spec string) []sortKey {
	var keys []sortKey
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "-") {
			keys = append(keys, sortKey{path: part[1:], desc: true})
			continue
		}
		keys = append(keys, sortKey{path: part})
	}
	return keys
}

// Project reshapes each document to a comma-separated field list. All fields
// must share a mode: plain names select, "-" prefixes remove. Exclusion-mode
// projection copies the document and deletes the listed top-level fields.
func Project(docs []map[string]any, spec string) []map[string]any {
	var include, exclude []string
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "-") {
			exclude = append(exclude, part[1:])
			continue
		}
		include = append(include, part)
	}
	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		if len(include) > 0 {
			p := make(map[string]any, len(include))
			for _, f := range include {
				if v, ok := doc[f]; ok {
					p[f] = v
				}
			}
			out = append(out, p)
			continue
		}
		p := make(map[string]any, len(doc))
		for k, v := range doc {
			p[k] = v
		}
		for _, f := range exclude {
			delete(p, f)
		}
		out = append(out, p)
	}
	return out
}

// Paginate slices the collection by skip and limit; limit <= 0 means no cap.
func Paginate(docs []map[string]any, skip, limit int) []map[string]any {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(docs) {
		return []map[string]any{}
	}
	end := len(docs)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return append([]map[string]any(nil), docs[skip:end]...)
}

func equal(a, b any) bool {
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return a == b
}

// compare orders two scalars of compatible type: -1, 0 or 1.
func compare(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	as, ok := a.(string)
	if !ok {
		return 0, false
	}
	bs, ok := b.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(as, bs), true
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
