// Package bridge implements the client for the conferencing bridge's XML-RPC
// management API.
//
// Every operation merges the gateway credentials into the request, issues one
// synchronous remote call and classifies the outcome:
//
//   - success: the response's status equals the configured success sentinel, or,
//     for enumerate calls, the payload key is present even without a status;
//   - *Fault: the bridge declared a fault (code + string);
//   - *TransportError: connection failure, bad HTTP status or malformed XML;
//   - ErrUnsuccessful: a well-formed response that is neither of the above.
//
// No call is ever retried.
package bridge
