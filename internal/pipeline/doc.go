// Package pipeline provides the execution engine that runs analysis
// pipelines as ordered sequences of named, individually selectable steps.
//
// A pipeline type declares its steps once (Declaration), a host narrows a
// run to the optional behavior it wants (Selection), and an Engine walks
// the resolved steps strictly in order, reporting progress through a
// Recorder and returning a terminal Outcome.
//
// Design decision: The engine stays persistence-agnostic because:
// 1. The same engine drives interactive runs, queued worker runs, and tests
// 2. Durability belongs to the host; the Recorder interface is a pure side
//    channel and never a control-flow dependency
// 3. Step failures are classified into the Outcome so Execute never leaks
//    panics or half-finished state to callers
// 4. Cancellation is cooperative and polled through an injected predicate,
//    keeping the engine free of any particular signaling transport
package pipeline
