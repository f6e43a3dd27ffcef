// Package registry holds the static catalog of sub-modules making up the
// source tree: their names, namespaced paths, and core-subset membership.
//
// The catalog is built in but can be replaced per tree by a modules.yaml
// manifest at the root, which is validated against an embedded JSON schema
// before use. The registry itself is read-only at runtime; live module state
// is derived elsewhere.
package registry
