package ruleset

import (
	"errors"
	"fmt"
	"strings"
)

// Error-kind codes carried by FieldError.Kind. These mirror the constraint
// keyword that failed inside the validation engine.
const (
	KindRequired             = "required"
	KindType                 = "type"
	KindMinLength            = "minLength"
	KindMaxLength            = "maxLength"
	KindPattern              = "pattern"
	KindEnum                 = "enum"
	KindMinimum              = "minimum"
	KindMaximum              = "maximum"
	KindMinItems             = "minItems"
	KindMaxItems             = "maxItems"
	KindFormat               = "format"
	KindAdditionalProperties = "additionalProperties"
)

// Sentinel errors surfaced by compilation.
var (
	// ErrNotIntrospectable reports a schema object without the path
	// enumeration capability.
	ErrNotIntrospectable = errors.New("ruleset: schema does not expose path enumeration")
	// ErrUncomparableSchema reports a schema reference whose type cannot be
	// used as an identity cache key.
	ErrUncomparableSchema = errors.New("ruleset: schema reference must be comparable for identity caching")
	// ErrMaxDepth reports a schema or rule tree nested beyond MaxDepth.
	ErrMaxDepth = errors.New("ruleset: max nesting depth exceeded")
)

// FieldError is a single validation failure, addressed by the dotted path of
// the offending field.
type FieldError struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result is the outcome of running a compiled validator. Validation failure
// is data, not an error: OK is false, Data is nil, and Errors lists every
// violation the engine collected.
type Result struct {
	OK     bool         `json:"ok"`
	Data   any          `json:"data"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Summary renders the first few field errors on one line for logs.
func (r Result) Summary() string {
	if r.OK || len(r.Errors) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(r.Errors)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fe := r.Errors[i]
		fmt.Fprintf(b, "%s at %s", fe.Kind, fe.Field)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}
