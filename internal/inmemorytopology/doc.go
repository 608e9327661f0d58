// Package inmemorytopology provides a thread-safe, in-memory implementation
// of the topologystore.Store interface. It is designed for pipeline graphs that
// fit comfortably in memory and are persisted, when needed, through coldgraph.
package inmemorytopology
