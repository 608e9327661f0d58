// internal/nodeid/doc.go

/*
Package nodeid provides a structured representation for the node references
accepted by Pipeline.Connect.

A reference is either a bare node name, e.g. `classifier`, or a node name
followed by the label of one of its outputs, e.g. `classifier.even`. Only the
first dot separates the two parts, so labels may themselves contain dots.

This package centralizes the formatting and parsing of references.
*/
package nodeid
