// Package requestqueue serializes outbound calls to a rate-sensitive service.
//
// A Queue runs at most one task at a time, strictly in submission order, and
// waits a fixed interval after each task completes before starting the next.
// A failing or panicking task only affects its own Outcome. Independent
// queues share no state and run in parallel.
package requestqueue
