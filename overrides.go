package ruleset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Overrides adapts a base rule tree for one endpoint.
//
// Include is a whitelist: when non-empty, only listed paths survive. Exclude
// always removes, and is applied after Include. Optional forces required=false
// and Required forces required=true; Required wins when a path appears in
// both. Append injects fields that bypass Include/Exclude filtering entirely;
// an appended rule defaults to {Type: TypeString, Required: true} with the
// caller's fields taking precedence.
type Overrides struct {
	Include  []string        `json:"include,omitempty"`
	Exclude  []string        `json:"exclude,omitempty"`
	Optional []string        `json:"optional,omitempty"`
	Required []string        `json:"required,omitempty"`
	Append   map[string]Rule `json:"append,omitempty"`
}

// Options configures validator compilation.
type Options struct {
	// AllowUnknown keeps unknown properties in the payload. When false they
	// are stripped, never rejected.
	AllowUnknown bool `json:"allowUnknown"`
	// CoerceTypes lets the engine convert compatible primitives (e.g. the
	// string "5" for a number field) instead of failing the type check.
	CoerceTypes bool `json:"coerceTypes"`
}

// Key derives the deterministic cache-sharing key for an override/options
// pair. Structurally equal values produce the same key regardless of path
// order, duplicate entries, or nil-versus-empty sets: sets are sorted and
// deduplicated and the append map is serialized in sorted key order before
// hashing.
func (o Overrides) Key(opt Options) string {
	b := &strings.Builder{}
	writeStringSet(b, "include", o.Include)
	writeStringSet(b, "exclude", o.Exclude)
	writeStringSet(b, "optional", o.Optional)
	writeStringSet(b, "required", o.Required)
	b.WriteString(`"append":{`)
	keys := make([]string, 0, len(o.Append))
	for k := range o.Append {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "%q:", k)
		r := o.Append[k]
		writeCanonicalRule(b, &r)
	}
	b.WriteString("},")
	fmt.Fprintf(b, `"allowUnknown":%t,"coerceTypes":%t`, opt.AllowUnknown, opt.CoerceTypes)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

func writeStringSet(b *strings.Builder, name string, vals []string) {
	set := append([]string(nil), vals...)
	sort.Strings(set)
	fmt.Fprintf(b, "%q:[", name)
	prev := ""
	n := 0
	for _, v := range set {
		if n > 0 && v == prev {
			continue
		}
		if n > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "%q", v)
		prev = v
		n++
	}
	b.WriteString("],")
}

// writeCanonicalRule serializes a rule with a fixed field order and sorted
// child keys so the result is byte-stable for structurally equal rules.
func writeCanonicalRule(b *strings.Builder, r *Rule) {
	if r == nil {
		b.WriteString("null")
		return
	}
	b.WriteByte('{')
	fmt.Fprintf(b, `"type":%q`, r.Type.String())
	if r.Required != nil {
		fmt.Fprintf(b, `,"required":%t`, *r.Required)
	}
	writeIntField(b, "minLength", r.MinLength)
	writeIntField(b, "maxLength", r.MaxLength)
	if r.Pattern != "" {
		fmt.Fprintf(b, `,"pattern":%q`, r.Pattern)
	}
	if len(r.Enum) > 0 {
		b.WriteString(`,"enum":[`)
		for i, e := range r.Enum {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(b, "%q", e)
		}
		b.WriteByte(']')
	}
	if r.Min != nil {
		b.WriteString(`,"min":` + strconv.FormatFloat(*r.Min, 'g', -1, 64))
	}
	if r.Max != nil {
		b.WriteString(`,"max":` + strconv.FormatFloat(*r.Max, 'g', -1, 64))
	}
	if r.Items != nil {
		b.WriteString(`,"items":`)
		writeCanonicalRule(b, r.Items)
	}
	writeIntField(b, "minItems", r.MinItems)
	writeIntField(b, "maxItems", r.MaxItems)
	if len(r.Children) > 0 {
		b.WriteString(`,"children":{`)
		keys := make([]string, 0, len(r.Children))
		for k := range r.Children {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(b, "%q:", k)
			writeCanonicalRule(b, r.Children[k])
		}
		b.WriteByte('}')
	}
	if r.Default != nil {
		if dv, err := json.Marshal(r.Default); err == nil {
			b.WriteString(`,"default":`)
			b.Write(dv)
		}
	}
	b.WriteByte('}')
}

func writeIntField(b *strings.Builder, name string, p *int) {
	if p != nil {
		fmt.Fprintf(b, `,%q:%d`, name, *p)
	}
}

// pathSet builds a membership set from a path list.
func pathSet(paths []string) map[string]struct{} {
	if len(paths) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}
