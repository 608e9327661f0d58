// Package registry provides the central "glue" for the module system.
//
// The Registry maps the action names used in saved pipelines and HCL
// definitions (e.g., "add_value") to the Go factories that build the nodes.
// Each entry also declares the parameter schema its factory accepts, so bad
// configuration is rejected before a node is ever built.
//
// Modules register their entries under a scope (usually the module name).
// When two scopes register the same action name, both entries stay reachable
// through their qualified name ("scope.name"). The bare name keeps pointing at
// the latest scope until a third scope registers it, at which point the bare
// name is dropped and callers must qualify it. Extra entries passed to Build
// always take precedence.
//
// The registry is created once at startup and handed to every pipeline that
// needs it; there is no package-level state.
package registry
