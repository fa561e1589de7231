package ruleset_test

import (
	"errors"
	"testing"

	ruleset "github.com/restkit/ruleset"
)

// mapSchema enumerates paths but is an uncomparable type, so it cannot serve
// as an identity cache key.
type mapSchema map[string]ruleset.FieldDescriptor

func (m mapSchema) EachPath(fn func(string, ruleset.FieldDescriptor)) {
	for path, d := range m {
		fn(path, d)
	}
}

func TestCompileRuleTree_IdempotentByIdentity(t *testing.T) {
	reg := ruleset.NewRegistry()
	s := userSchema()

	t1, err := reg.CompileRuleTree(s)
	if err != nil {
		t.Fatalf("CompileRuleTree: %v", err)
	}
	t2, err := reg.CompileRuleTree(s)
	if err != nil {
		t.Fatalf("CompileRuleTree: %v", err)
	}
	if t1 != t2 {
		t.Fatalf("same schema reference must return the identical cached tree")
	}

	// a structurally equal but distinct reference compiles its own tree
	t3, err := reg.CompileRuleTree(userSchema())
	if err != nil {
		t.Fatalf("CompileRuleTree: %v", err)
	}
	if t3 == t1 {
		t.Fatalf("distinct schema references must not share identity-keyed entries")
	}
}

func TestCompileRuleTree_NilSchemaSentinel(t *testing.T) {
	reg := ruleset.NewRegistry()
	tree, err := reg.CompileRuleTree(nil)
	if err != nil {
		t.Fatalf("CompileRuleTree(nil): %v", err)
	}
	if tree.Type != ruleset.TypeObject || len(tree.Children) != 0 {
		t.Fatalf("nil schema must yield the empty sentinel tree: %+v", tree)
	}
	again, err := reg.CompileRuleTree(nil)
	if err != nil {
		t.Fatalf("CompileRuleTree(nil): %v", err)
	}
	if tree != again {
		t.Fatalf("no-schema sentinel must be shared")
	}
}

func TestEmitWireSchema_CachedPerOverrideKey(t *testing.T) {
	reg := ruleset.NewRegistry()
	s := userSchema()
	ov := ruleset.Overrides{Exclude: []string{"age"}}
	opt := ruleset.Options{}

	w1, err := reg.EmitWireSchema(s, ov, opt)
	if err != nil {
		t.Fatalf("EmitWireSchema: %v", err)
	}
	w2, err := reg.EmitWireSchema(s, ruleset.Overrides{Exclude: []string{"age"}}, opt)
	if err != nil {
		t.Fatalf("EmitWireSchema: %v", err)
	}
	if w1 != w2 {
		t.Fatalf("equal override keys must share the cached wire schema")
	}

	w3, err := reg.EmitWireSchema(s, ruleset.Overrides{}, opt)
	if err != nil {
		t.Fatalf("EmitWireSchema: %v", err)
	}
	if w3 == w1 {
		t.Fatalf("different override keys must not share cache entries")
	}
	if _, ok := w3.Properties["age"]; !ok {
		t.Errorf("unfiltered emission lost a property")
	}
	if _, ok := w1.Properties["age"]; ok {
		t.Errorf("exclusion did not apply")
	}
}

func TestCompileRuleTree_UncomparableSchema(t *testing.T) {
	reg := ruleset.NewRegistry()
	s := mapSchema{"a": {Kind: "String"}}

	if _, err := reg.CompileRuleTree(s); !errors.Is(err, ruleset.ErrUncomparableSchema) {
		t.Fatalf("CompileRuleTree err = %v, want ErrUncomparableSchema", err)
	}
	if _, err := reg.EmitWireSchema(s, ruleset.Overrides{}, ruleset.Options{}); !errors.Is(err, ruleset.ErrUncomparableSchema) {
		t.Fatalf("EmitWireSchema err = %v, want ErrUncomparableSchema", err)
	}
	if _, err := reg.BuildValidator(s, ruleset.Overrides{}, ruleset.Options{}); !errors.Is(err, ruleset.ErrUncomparableSchema) {
		t.Fatalf("BuildValidator err = %v, want ErrUncomparableSchema", err)
	}
}

func TestRegistry_Evict(t *testing.T) {
	reg := ruleset.NewRegistry()
	s := userSchema()

	t1, err := reg.CompileRuleTree(s)
	if err != nil {
		t.Fatalf("CompileRuleTree: %v", err)
	}
	reg.Evict(s)
	t2, err := reg.CompileRuleTree(s)
	if err != nil {
		t.Fatalf("CompileRuleTree: %v", err)
	}
	if t1 == t2 {
		t.Fatalf("eviction must drop the cached tree")
	}
}

func TestValidatorCachePartitioning(t *testing.T) {
	reg := ruleset.NewRegistry()
	s := userSchema()

	strict, err := reg.BuildValidator(s, ruleset.Overrides{}, ruleset.Options{})
	if err != nil {
		t.Fatalf("BuildValidator: %v", err)
	}
	loose, err := reg.BuildValidator(s, ruleset.Overrides{Optional: []string{"username"}}, ruleset.Options{})
	if err != nil {
		t.Fatalf("BuildValidator: %v", err)
	}

	payload := map[string]any{"age": 20.0}
	if res := strict(payload); res.OK {
		t.Fatalf("strict validator must reject a missing username")
	}
	if res := loose(payload); !res.OK {
		t.Fatalf("partitioned validator leaked the strict required list: %v", res.Errors)
	}
}
