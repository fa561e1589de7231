package ruleset

import (
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	js "github.com/restkit/ruleset/jsonschema"
)

// noSchemaID is the shared bucket handle used when no schema object exists to
// key on.
const noSchemaID uint64 = 0

// Registry memoizes introspected rule trees per schema identity and emitted
// wire schemas / compiled validators per (schema identity, override key).
//
// Schema objects are associated with a registration handle at first use, so
// caching keys on the reference, not the value: callers must reuse the same
// schema reference across calls and must not mutate it after first use. The
// reference must be of a comparable type (a pointer is the usual choice);
// uncomparable schema values fail with ErrUncomparableSchema.
// Entries live until Evict releases them. A Registry is safe for concurrent
// use; racing compilations of the same key are collapsed rather than
// duplicated.
type Registry struct {
	mu      sync.Mutex
	group   singleflight.Group
	nextID  uint64
	ids     map[any]uint64
	buckets map[uint64]*schemaBucket
}

type schemaBucket struct {
	tree       *RuleTree
	wire       map[string]*js.Schema
	validators map[string]ValidateFunc
}

// NewRegistry returns an empty registry. Tests should construct their own so
// cache state never leaks between them.
func NewRegistry() *Registry {
	r := &Registry{
		ids:     map[any]uint64{},
		buckets: map[uint64]*schemaBucket{},
	}
	// the no-schema bucket is always present; its tree is the empty sentinel
	r.buckets[noSchemaID] = &schemaBucket{
		tree:       NewRuleTree(),
		wire:       map[string]*js.Schema{},
		validators: map[string]ValidateFunc{},
	}
	return r
}

// handleFor returns the bucket handle for a schema reference, assigning one on
// first use. Uncomparable references are rejected before they can poison the
// identity map. Callers must hold r.mu.
func (r *Registry) handleFor(schema any) (uint64, error) {
	if schema == nil {
		return noSchemaID, nil
	}
	if !reflect.TypeOf(schema).Comparable() {
		return 0, ErrUncomparableSchema
	}
	if id, ok := r.ids[schema]; ok {
		return id, nil
	}
	r.nextID++
	id := r.nextID
	r.ids[schema] = id
	r.buckets[id] = &schemaBucket{
		wire:       map[string]*js.Schema{},
		validators: map[string]ValidateFunc{},
	}
	return id, nil
}

// CompileRuleTree introspects the schema into a rule tree, memoized by schema
// identity: repeated calls with the same reference return the identical tree,
// so the reference must be comparable and reused across calls. A nil schema
// yields the shared empty sentinel tree without introspection. Schemas lacking
// the enumeration capability fail with ErrNotIntrospectable.
func (r *Registry) CompileRuleTree(schema any) (*RuleTree, error) {
	r.mu.Lock()
	id, err := r.handleFor(schema)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	b := r.buckets[id]
	if b.tree != nil {
		tree := b.tree
		r.mu.Unlock()
		return tree, nil
	}
	r.mu.Unlock()

	pe, ok := schema.(PathEnumerator)
	if !ok {
		return nil, ErrNotIntrospectable
	}
	tree, err := introspect(pe, 0)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// a racing call may have stored first; keep its tree so identity holds
	if b.tree == nil {
		b.tree = tree
	}
	return b.tree, nil
}

// Evict releases the schema's cached tree, wire schemas, and validators. The
// registry never ages entries out on its own; discarding a schema object
// without evicting it leaves its bucket behind.
func (r *Registry) Evict(schema any) {
	if schema == nil || !reflect.TypeOf(schema).Comparable() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[schema]; ok {
		delete(r.ids, schema)
		delete(r.buckets, id)
	}
}

// ---- package-level default registry ----

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry behind the package-level
// functions.
func Default() *Registry { return defaultRegistry }

// CompileRuleTree memoizes on the default registry. See Registry.CompileRuleTree.
func CompileRuleTree(schema any) (*RuleTree, error) {
	return defaultRegistry.CompileRuleTree(schema)
}

// BuildValidator compiles on the default registry. See Registry.BuildValidator.
func BuildValidator(schema any, ov Overrides, opt Options) (ValidateFunc, error) {
	return defaultRegistry.BuildValidator(schema, ov, opt)
}

// EmitWireSchema emits on the default registry. See Registry.EmitWireSchema.
func EmitWireSchema(schema any, ov Overrides, opt Options) (*js.Schema, error) {
	return defaultRegistry.EmitWireSchema(schema, ov, opt)
}
