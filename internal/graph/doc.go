// Package graph provides a unified facade over a pipeline graph, combining
// static topology (nodes, labeled edges) and per-run state (visits, status).
//
// # Why Graph Package Exists
//
// The builder, the validator, the serializer and the scheduler all need to
// ask structural questions about the graph ("is there a path back from this
// target?", "which input slots are still free?") and the scheduler also needs
// to record per-run state. Instead of coordinating two stores and re-deriving
// reachability everywhere, they talk to one Graph.
//
// # Architecture: The Facade Pattern
//
//	┌─────────────────────────────────────┐
//	│           Graph Facade              │
//	│  (structure queries, reachability,  │
//	│   slot accounting, run state)       │
//	└──────────┬────────────┬─────────────┘
//	           │            │
//	           ▼            ▼
//	  ┌────────────┐  ┌────────────┐
//	  │  Topology  │  │ Node State │
//	  │   Store    │  │   Store    │
//	  │ (Structure)│  │  (Visits)  │
//	  └────────────┘  └────────────┘
//
// **Topology Store** (topologystore.Store) is shared by every run of a
// pipeline. **Node Store** (nodestore.Store) is fresh for every run: ForRun
// returns a Graph bound to the same topology and a new state store.
//
// # Reachability
//
// HasPath answers are memoized per Graph value. Mutations made through the
// facade clear the memo; a run-scoped Graph starts with an empty one.
//
// # Thread-Safety
//
// All Graph methods are thread-safe. Mutating the topology while a run is in
// progress is not supported.
package graph
