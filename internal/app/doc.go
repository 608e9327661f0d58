// Package app wires the registry, the pipeline loader and the output
// renderers together. It is independent of the CLI so that the same
// lifecycle can be driven from tests.
package app
