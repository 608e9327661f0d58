// Package pipeline is the public face of the engine. A Pipeline is built
// node by node (AddNode, AddAction, Connect) or loaded from a file (Load),
// checked with Validate, and executed with Run or RunBatch.
//
// Construction, connection and validation problems are reported before any
// node runs. Each kind of failure matches one of the exported Err values
// with errors.Is; RuntimeError, MaxLoopsError, NodeError and ConnectError
// carry the details and can be extracted with errors.As.
//
// A pipeline can be saved as a YAML document and loaded back. Nodes that are
// saved must implement node.Describer so they can be rebuilt from the
// registry; a single instance added under several names is restored as one
// shared instance.
package pipeline
