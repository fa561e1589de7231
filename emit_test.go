package ruleset_test

import (
	"reflect"
	"testing"

	ruleset "github.com/restkit/ruleset"
)

func TestToWireSchema_RoundTripEmission(t *testing.T) {
	tree, err := ruleset.NewRegistry().CompileRuleTree(userSchema())
	if err != nil {
		t.Fatalf("CompileRuleTree: %v", err)
	}
	ws, err := ruleset.ToWireSchema(tree, false)
	if err != nil {
		t.Fatalf("ToWireSchema: %v", err)
	}

	if ws.Type != "object" {
		t.Fatalf("root type = %q, want object", ws.Type)
	}
	if !reflect.DeepEqual(ws.Required, []string{"username"}) {
		t.Errorf("required = %v, want [username]", ws.Required)
	}
	if ws.AdditionalProperties != false {
		t.Errorf("additionalProperties = %v, want false", ws.AdditionalProperties)
	}

	u := ws.Properties["username"]
	if u == nil || u.Type != "string" {
		t.Fatalf("username property: %+v", u)
	}
	if u.MinLength == nil || *u.MinLength != 3 || u.MaxLength == nil || *u.MaxLength != 64 {
		t.Errorf("username length facets: %+v", u)
	}

	a := ws.Properties["age"]
	if a == nil || a.Type != "number" {
		t.Fatalf("age property: %+v", a)
	}
	if a.Minimum == nil || *a.Minimum != 13 || a.Maximum == nil || *a.Maximum != 120 {
		t.Errorf("age range facets: %+v", a)
	}
}

func TestToWireSchema_TypeTable(t *testing.T) {
	tree := ruleset.NewRuleTree()
	tree.Children["when"] = &ruleset.Rule{Type: ruleset.TypeDate}
	tree.Children["ref"] = &ruleset.Rule{Type: ruleset.TypeObjectID}
	tree.Children["any"] = &ruleset.Rule{Type: ruleset.TypeMixed}
	tree.Children["raw"] = &ruleset.Rule{Type: ruleset.TypeBuffer}
	tree.Children["ok"] = &ruleset.Rule{Type: ruleset.TypeBoolean}
	tree.Children["tags"] = &ruleset.Rule{
		Type:     ruleset.TypeArray,
		Items:    &ruleset.Rule{Type: ruleset.TypeString, Enum: []string{"a", "b"}},
		MinItems: ruleset.Ptr(1),
		MaxItems: ruleset.Ptr(5),
	}

	ws, err := ruleset.ToWireSchema(tree, true)
	if err != nil {
		t.Fatalf("ToWireSchema: %v", err)
	}

	if w := ws.Properties["when"]; w.Type != "string" || w.Format != "date-time" {
		t.Errorf("date emission: %+v", w)
	}
	if r := ws.Properties["ref"]; r.Type != "string" || r.Pattern != "^[0-9a-fA-F]{24}$" {
		t.Errorf("objectId emission: %+v", r)
	}
	for _, name := range []string{"any", "raw"} {
		p := ws.Properties[name]
		if p.Type != "" || p.Properties != nil || p.Items != nil {
			t.Errorf("%s must be unconstrained: %+v", name, p)
		}
	}
	if b := ws.Properties["ok"]; b.Type != "boolean" {
		t.Errorf("boolean emission: %+v", b)
	}

	tags := ws.Properties["tags"]
	if tags.Type != "array" || tags.Items == nil || tags.Items.Type != "string" {
		t.Fatalf("array emission: %+v", tags)
	}
	if !reflect.DeepEqual(tags.Items.Enum, []string{"a", "b"}) {
		t.Errorf("enum order not preserved: %v", tags.Items.Enum)
	}
	if *tags.MinItems != 1 || *tags.MaxItems != 5 {
		t.Errorf("item bounds: %+v", tags)
	}
	if ws.AdditionalProperties != true {
		t.Errorf("allowUnknown not propagated to object node")
	}
}

func TestToWireSchema_RequiredOmittedWhenEmpty(t *testing.T) {
	tree := ruleset.NewRuleTree()
	tree.Children["a"] = &ruleset.Rule{Type: ruleset.TypeString}
	ws, err := ruleset.ToWireSchema(tree, false)
	if err != nil {
		t.Fatalf("ToWireSchema: %v", err)
	}
	if ws.Required != nil {
		t.Fatalf("required = %v, want nil so the key is omitted on the wire", ws.Required)
	}
}

func TestToWireSchema_RequiredSorted(t *testing.T) {
	tree := ruleset.NewRuleTree()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		tree.Children[name] = &ruleset.Rule{Type: ruleset.TypeString, Required: ruleset.Ptr(true)}
	}
	ws, err := ruleset.ToWireSchema(tree, false)
	if err != nil {
		t.Fatalf("ToWireSchema: %v", err)
	}
	if !reflect.DeepEqual(ws.Required, []string{"alpha", "mid", "zeta"}) {
		t.Fatalf("required not sorted: %v", ws.Required)
	}
}
