// Package fault turns gateway errors into the message shown to callers.
//
// Bridge faults are matched against an ordered rule table: the first rule
// whose action matches and whose substring occurs in the fault string wins,
// whatever the fault code. A fault no rule matches is reported verbatim as
// "<code> <string>". Transport failures use the same "<code> <message>" form.
//
// How to extend safely:
//  1. Append a Rule to DefaultRules; order matters only between rules of the
//     same action.
//  2. Add the message key to every locale catalog.
//  3. Add a case to the translator tests.
//
// The vendor fault-code table (Describe) only annotates log lines.
package fault
