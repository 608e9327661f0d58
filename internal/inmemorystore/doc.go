// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the nodestore.Store interface.
//
// # Concurrency Model
//
// Unlike inmemorytopology which uses RWMutex, this store uses sync.Map:
// the key space is stable (every node of the graph) while values change on
// every visit. Visit counters are atomic so a counter never needs the map
// entry to be replaced.
//
// A new store is created for each run, so batch runs never share counters.
package inmemorystore
