// Package auth implements optional bearer-token authentication for the
// gateway.
//
// Tokens are JWTs signed with HS256 (shared secret) or RS256 (PEM public key).
// A token carries its subject and a list of scopes: "read" allows the
// enumerate actions, "control" allows every action that changes bridge state.
package auth
