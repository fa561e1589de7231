package ruleset_test

import (
	"errors"
	"strings"
	"testing"

	ruleset "github.com/restkit/ruleset"
)

func baseTree() *ruleset.RuleTree {
	tree := ruleset.NewRuleTree()
	tree.Children["a"] = &ruleset.Rule{Type: ruleset.TypeString, Required: ruleset.Ptr(true)}
	tree.Children["b"] = &ruleset.Rule{Type: ruleset.TypeNumber}
	tree.Children["password"] = &ruleset.Rule{Type: ruleset.TypeString}
	tree.Children["address"] = &ruleset.Rule{
		Type: ruleset.TypeObject,
		Children: map[string]*ruleset.Rule{
			"street": {Type: ruleset.TypeString},
			"zip":    {Type: ruleset.TypeString},
		},
	}
	return tree
}

func applyOverrides(t *testing.T, tree *ruleset.RuleTree, ov ruleset.Overrides) *ruleset.RuleTree {
	t.Helper()
	eff, err := ruleset.ApplyOverrides(tree, ov)
	if err != nil {
		t.Fatalf("ApplyOverrides: %v", err)
	}
	return eff
}

func TestFlatten_DottedPaths(t *testing.T) {
	flat := ruleset.Flatten(baseTree())
	for _, path := range []string{"a", "b", "password", "address.street", "address.zip"} {
		if _, ok := flat[path]; !ok {
			t.Errorf("missing flattened path %q", path)
		}
	}
	if _, ok := flat["address"]; ok {
		t.Errorf("interior object node must not appear as a leaf")
	}
}

func TestApplyOverrides_RequiredWinsOverOptional(t *testing.T) {
	eff := applyOverrides(t, baseTree(), ruleset.Overrides{
		Optional: []string{"a"},
		Required: []string{"a"},
	})
	r := eff.Children["a"]
	if r == nil {
		t.Fatalf("field a missing from effective tree")
	}
	if !r.IsRequired() {
		t.Fatalf("required must win over optional")
	}
}

func TestApplyOverrides_ExcludeWinsOverInclude(t *testing.T) {
	eff := applyOverrides(t, baseTree(), ruleset.Overrides{
		Include: []string{"a", "b"},
		Exclude: []string{"b"},
	})
	if _, ok := eff.Children["a"]; !ok {
		t.Fatalf("included field a missing")
	}
	if _, ok := eff.Children["b"]; ok {
		t.Fatalf("excluded field b survived")
	}
	if _, ok := eff.Children["password"]; ok {
		t.Fatalf("non-included field password survived whitelist")
	}
}

func TestApplyOverrides_AppendBypassesExclude(t *testing.T) {
	eff := applyOverrides(t, baseTree(), ruleset.Overrides{
		Exclude: []string{"password"},
		Append: map[string]ruleset.Rule{
			"password": {Type: ruleset.TypeString, Required: ruleset.Ptr(true)},
		},
	})
	r := eff.Children["password"]
	if r == nil {
		t.Fatalf("appended field must bypass exclude")
	}
	if !r.IsRequired() {
		t.Fatalf("appended definition lost its required flag")
	}
}

func TestApplyOverrides_AppendDefaults(t *testing.T) {
	eff := applyOverrides(t, ruleset.NewRuleTree(), ruleset.Overrides{
		Append: map[string]ruleset.Rule{"token": {}},
	})
	r := eff.Children["token"]
	if r == nil {
		t.Fatalf("appended field missing")
	}
	if r.Type != ruleset.TypeString {
		t.Errorf("appended type = %v, want string default", r.Type)
	}
	if !r.IsRequired() {
		t.Errorf("appended field must default to required")
	}
}

func TestApplyOverrides_DoesNotMutateInput(t *testing.T) {
	tree := baseTree()
	eff := applyOverrides(t, tree, ruleset.Overrides{Optional: []string{"a"}})

	if !tree.Children["a"].IsRequired() {
		t.Fatalf("input tree was mutated")
	}
	eff.Children["a"].Type = ruleset.TypeBuffer
	if tree.Children["a"].Type != ruleset.TypeString {
		t.Fatalf("effective tree shares nodes with the input tree")
	}
}

func TestApplyOverrides_NestedPathsRebuild(t *testing.T) {
	eff := applyOverrides(t, baseTree(), ruleset.Overrides{
		Exclude: []string{"address.zip"},
		Append:  map[string]ruleset.Rule{"address.country": {Type: ruleset.TypeString}},
	})
	addr := eff.Children["address"]
	if addr == nil || addr.Type != ruleset.TypeObject {
		t.Fatalf("intermediate object node not rebuilt")
	}
	if _, ok := addr.Children["zip"]; ok {
		t.Errorf("excluded nested field zip survived")
	}
	if _, ok := addr.Children["street"]; !ok {
		t.Errorf("nested field street missing")
	}
	if _, ok := addr.Children["country"]; !ok {
		t.Errorf("appended nested field country missing")
	}
}

func TestApplyOverrides_AppendBeyondMaxDepth(t *testing.T) {
	deep := strings.Repeat("n.", ruleset.MaxDepth) + "leaf"
	_, err := ruleset.ApplyOverrides(baseTree(), ruleset.Overrides{
		Append: map[string]ruleset.Rule{deep: {Type: ruleset.TypeString}},
	})
	if !errors.Is(err, ruleset.ErrMaxDepth) {
		t.Fatalf("err = %v, want ErrMaxDepth", err)
	}
}
