// Package ruleset derives validation rule trees from declarative document
// schemas and compiles them into wire-format schema documents and executable
// validators.
//
//   - A schema provider (anything with path enumeration) is introspected into
//     a RuleTree of typed constraint nodes.
//   - Overrides adapt the base tree per endpoint through a small algebra:
//     include/exclude whitelisting, optional/required flips (required wins),
//     and append injection that bypasses filtering.
//   - The effective tree is emitted as a JSON-Schema-shaped document and
//     compiled into a ValidateFunc returning structured field errors.
//   - Every stage is memoized in a Registry: rule trees by schema identity,
//     wire schemas and validators by (schema identity, override key).
//
// Design policy:
//   - Keep only public APIs in the root package; put the validation engine
//     under internal/.
//   - Place integrations in subpackages: jsonschema/ for the wire document,
//     schemafile/ for declarative definitions, middleware/ for HTTP, and the
//     CLI under cmd/ruleset.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	validate, err := ruleset.BuildValidator(schema, ruleset.Overrides{
//		Exclude: []string{"password"},
//	}, ruleset.Options{})
//	res := validate(payload)
//	if !res.OK {
//		// res.Errors lists every violation
//	}
package ruleset
