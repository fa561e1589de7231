// Package querybuild translates convenience request parameters into a target
// query-document shape consumable by the queryutil simulators or a storage
// adapter. Builders only construct documents; they never execute anything.
package querybuild

import (
	"net/url"
	"strconv"
	"strings"
)

// Query is the assembled query document.
type Query struct {
	Filter map[string]any `json:"filter,omitempty"`
	Sort   string         `json:"sort,omitempty"`
	Select string         `json:"select,omitempty"`
	Skip   int            `json:"skip,omitempty"`
	Limit  int            `json:"limit,omitempty"`
}

// reserved parameter names consumed as macros rather than filter criteria
var reserved = map[string]struct{}{
	"sort":   {},
	"select": {},
	"skip":   {},
	"limit":  {},
}

// FromParams builds a Query from request parameters. sort/select/skip/limit
// are interpreted as macros; every remaining pair becomes an equality filter
// criterion on its dotted path. Malformed skip/limit values degrade to zero.
func FromParams(params url.Values) Query {
	q := Query{
		Sort:   params.Get("sort"),
		Select: params.Get("select"),
	}
	if v := params.Get("skip"); v != "" {
		q.Skip, _ = strconv.Atoi(v)
	}
	if v := params.Get("limit"); v != "" {
		q.Limit, _ = strconv.Atoi(v)
	}
	for name, vals := range params {
		if _, ok := reserved[name]; ok || len(vals) == 0 {
			continue
		}
		if q.Filter == nil {
			q.Filter = map[string]any{}
		}
		q.Filter[name] = coerceScalar(vals[0])
	}
	return q
}

// coerceScalar interprets numeric and boolean parameter text so equality
// filters line up with JSON-decoded documents.
func coerceScalar(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// ---- operator macros ----

// GT builds {"$gt": v}.
func GT(v any) map[string]any { return map[string]any{"$gt": v} }

// GTE builds {"$gte": v}.
func GTE(v any) map[string]any { return map[string]any{"$gte": v} }

// LT builds {"$lt": v}.
func LT(v any) map[string]any { return map[string]any{"$lt": v} }

// LTE builds {"$lte": v}.
func LTE(v any) map[string]any { return map[string]any{"$lte": v} }

// NE builds {"$ne": v}.
func NE(v any) map[string]any { return map[string]any{"$ne": v} }

// In builds {"$in": vs}.
func In(vs ...any) map[string]any { return map[string]any{"$in": vs} }

// Where merges per-field criteria into a filter document; later entries win
// on conflicting paths.
func Where(criteria ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, c := range criteria {
		for k, v := range c {
			out[k] = v
		}
	}
	return out
}
