// Package command implements the gateway dispatcher.
//
// For each request the dispatcher binds the action's parameters into a typed
// bridge request, performs the single remote call, selects the success
// payload the action exposes, and records the outcome in the audit trail and
// the metrics. Validation failures return before any remote call.
package command
