// Package api implements the HTTP surface of the conference gateway.
//
// The gateway endpoint ("/" and "/serv.php") selects an action with the
// "action" query parameter, runs it through the dispatcher and answers with
// a JSON envelope: {"success": true, ...payload} or {"success": false,
// "msg": "..."}. The HTTP status is always 200; the outcome lives in the
// body. /health and /metrics serve operations tooling.
package api
