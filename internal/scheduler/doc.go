// Package scheduler drives a single pipeline run.
//
// # How It Works
//
// The scheduler keeps a FIFO buffer keyed by node name. Each entry holds the
// contributions (edge, data, parameters, weight) received so far by that
// node. Entry nodes are seeded with the run input, then the scheduler
// repeatedly pops the oldest entry and decides what to do with it:
//
//  1. It computes the wait set: incoming edges whose source is not reachable
//     from the node itself. Back edges of a loop are never waited on.
//  2. If some wait-set edges have not delivered yet, the entry goes back to
//     the end of the buffer. Once every wait-set producer has been visited at
//     least once, the missing edges can never arrive (they were pruned) and
//     the node proceeds with those inputs marked as missing.
//  3. A node that received nothing at all is skipped, and the nodes
//     downstream of it are buffered with empty entries so the pruning
//     propagates.
//  4. Otherwise the contributions are merged by weight, the node's defaults
//     are merged in at the lowest priority, the visit counter is bumped and
//     checked against the loop limit, and the node runs.
//  5. The output is routed along the outgoing edges. Nodes without outgoing
//     edges add their payload to the result.
//
// The execution order is fully determined by the buffer order. Nothing runs
// in parallel within one run.
//
// # Relationship with Other Components
//
//   - **Graph:** topology queries, reachability and per-run visit counters
//   - **Node:** the contract every invoked node satisfies
//   - **Value:** weighted deep merge of data and parameters
package scheduler
