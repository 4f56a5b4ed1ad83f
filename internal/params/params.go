// Package params turns raw HTTP form values into the typed values the bridge
// calls need.
//
// Every parser rejects malformed input with an *Error before the gateway
// issues any remote call.
package params

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/purezhi/mcu/internal/locale"
)

// Participant types understood by the bridge.
const (
	TypeByAddress = "by_address"
	TypeByName    = "by_name"
	TypeAdHoc     = "ad_hoc"
)

// DefaultParticipantType is used when a request omits participantType.
const DefaultParticipantType = TypeAdHoc

// Layouts is the set of custom layout values the bridge accepts:
// 0 none, 1 single main venue, 2 tiled, 5 main plus sub venues.
var Layouts = []int{0, 1, 2, 5}

// Kind classifies a validation failure.
type Kind int

const (
	// Missing means a required parameter was absent or blank.
	Missing Kind = iota
	// Invalid means the parameter was present but could not be parsed.
	Invalid
)

func (k Kind) String() string {
	if k == Missing {
		return "missing parameter"
	}
	return "invalid parameter"
}

// Error is a validation failure for a single parameter.
type Error struct {
	Kind  Kind
	Param string
	Value string

	// Key and Args select the user-facing message.
	Key  locale.Key
	Args []any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Param)
}

// Message renders the error in the given catalog.
func (e *Error) Message(c *locale.Catalog) string {
	return c.Text(e.Key, e.Args...)
}

func missing(name string) *Error {
	return &Error{Kind: Missing, Param: name, Key: locale.MissingParameter, Args: []any{name}}
}

func invalid(name, value string) *Error {
	return &Error{Kind: Invalid, Param: name, Value: value, Key: locale.InvalidParameter, Args: []any{name}}
}

// Values wraps the request's form values.
type Values struct {
	raw url.Values
}

// New wraps raw form values.
func New(raw url.Values) Values {
	if raw == nil {
		raw = url.Values{}
	}
	return Values{raw: raw}
}

// Has reports whether name was supplied at all, even with an empty value.
func (v Values) Has(name string) bool {
	_, ok := v.raw[name]
	return ok
}

// Raw returns the first value for name without any checks.
func (v Values) Raw(name string) string {
	return v.raw.Get(name)
}

// Required returns the value of name, or a Missing error when it is absent
// or blank.
func (v Values) Required(name string) (string, error) {
	value := v.raw.Get(name)
	if strings.TrimSpace(value) == "" {
		return "", missing(name)
	}
	return value, nil
}

// Present returns the value of name, which must be supplied but may be empty.
func (v Values) Present(name string) (string, error) {
	if !v.Has(name) {
		return "", missing(name)
	}
	return v.raw.Get(name), nil
}

// String returns the value of name, or def when it is absent.
func (v Values) String(name, def string) string {
	if !v.Has(name) {
		return def
	}
	return v.raw.Get(name)
}

// Int parses an optional decimal integer.
func (v Values) Int(name string, def int) (int, error) {
	value := strings.TrimSpace(v.raw.Get(name))
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, invalid(name, value)
	}
	return n, nil
}

// Bool parses a required boolean-like parameter.
func (v Values) Bool(name string) (bool, error) {
	if !v.Has(name) {
		return false, missing(name)
	}
	value := v.raw.Get(name)
	b, ok := ParseBool(value)
	if !ok {
		return false, invalid(name, value)
	}
	return b, nil
}

// Layout parses a required custom layout value.
func (v Values) Layout(name string) (int, error) {
	value, err := v.Required(name)
	if err != nil {
		return 0, err
	}
	layout, ok := ParseLayout(value)
	if !ok {
		return 0, &Error{Kind: Invalid, Param: name, Value: value, Key: locale.InvalidLayout}
	}
	return layout, nil
}

// Protocol parses a required participant protocol and normalises it.
func (v Values) Protocol(name string) (string, error) {
	value, err := v.Required(name)
	if err != nil {
		return "", err
	}
	protocol := NormalizeProtocol(value)
	if protocol == "" {
		return "", invalid(name, value)
	}
	return protocol, nil
}

// ParticipantType parses an optional participant type, defaulting to ad_hoc.
func (v Values) ParticipantType(name string) (string, error) {
	value := strings.TrimSpace(v.raw.Get(name))
	if value == "" {
		return DefaultParticipantType, nil
	}
	switch value {
	case TypeByAddress, TypeByName, TypeAdHoc:
		return value, nil
	default:
		return "", invalid(name, value)
	}
}

// CommaList parses a parameter that must be present but may be empty.
func (v Values) CommaList(name string) ([]string, error) {
	if !v.Has(name) {
		return nil, missing(name)
	}
	return SplitList(v.raw.Get(name)), nil
}

// ParseBool accepts the usual spellings of a boolean. The empty string is
// false, matching how HTML forms submit an unchecked value.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, true
	case "0", "false", "f", "no", "n", "off", "":
		return false, true
	default:
		return false, false
	}
}

// ParseLayout parses s and checks it against Layouts.
func ParseLayout(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	for _, layout := range Layouts {
		if n == layout {
			return n, true
		}
	}
	return 0, false
}

// NormalizeProtocol strips dots and lower-cases, so "H.323" becomes "h323".
func NormalizeProtocol(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), ".", ""))
}

// SplitList splits a comma-separated list, dropping blank items.
// The empty string yields an empty, non-nil list.
func SplitList(s string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
