// Package orchestrator owns the connection handover state machine.
//
// Ownership boundary:
// - deferred action queue gated on secondary radio readiness
// - static and negotiated handover flows
// - the single in-flight outgoing transfer
// - transfer completion reporting
//
// Lifecycle order:
// - idle -> awaiting radio -> pairing (inbound|outbound) -> transfer pending -> idle
//
// The Orchestrator is driven from one event loop goroutine. Collaborator
// completions must be delivered on that goroutine; Loop funnels callbacks
// from other goroutines onto it.
package orchestrator
