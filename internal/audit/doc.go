// Package audit implements the gateway's append-only audit trail.
//
// Every action that changes bridge state (conference create, end and layout;
// participant add, remove, mute, rename and message) is written as one JSON
// line with the caller, the request parameters, the outcome and the latency.
// The file is rotated by size through lumberjack.
package audit
