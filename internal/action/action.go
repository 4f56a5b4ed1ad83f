// Package action holds the static table of gateway actions and resolves an
// incoming action code and HTTP verb to its descriptor.
package action

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/purezhi/mcu/internal/auth"
	"github.com/purezhi/mcu/internal/bridge"
)

// Action codes.
const (
	ConferenceList     = "cl"
	ConferenceCreate   = "cc"
	ConferenceEnd      = "ce"
	ConferenceLayout   = "cd"
	ParticipantList    = "pl"
	ParticipantAdd     = "pc"
	ParticipantRemove  = "pr"
	ParticipantAudio   = "pa"
	ParticipantVideo   = "pv"
	ParticipantName    = "pn"
	ParticipantMessage = "ps"
)

// Success payload keys. PayloadNone means the envelope carries only success.
const (
	PayloadNone         = ""
	PayloadConferences  = "conferences"
	PayloadConferenceID = "conferenceId"
	PayloadResult       = "result"
	PayloadParticipants = "participants"
	PayloadMessage      = "msg"
)

// ErrUnknownAction is returned for a missing or unrecognised action code.
var ErrUnknownAction = errors.New("unknown action")

// ErrMethodNotAllowed is matched by every *MethodError.
var ErrMethodNotAllowed = errors.New("method not allowed")

// MethodError reports an action called with the wrong HTTP verb.
type MethodError struct {
	Code string
	Verb string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("action %s requires %s", e.Code, e.Verb)
}

// Is lets errors.Is match ErrMethodNotAllowed.
func (e *MethodError) Is(target error) bool {
	return target == ErrMethodNotAllowed
}

// Descriptor describes one action.
type Descriptor struct {
	Code     string
	Verb     string
	Required []string
	Optional map[string]string // name -> default
	Method   string
	Scope    string
	Mutating bool
	Payload  string
}

// Default returns the default of an optional parameter.
func (d *Descriptor) Default(name string) string {
	return d.Optional[name]
}

// participantTypeDefault is the optional participantType of pr/pa/pv/pn/ps;
// a missing value falls back to ad_hoc.
var participantTypeDefault = map[string]string{"participantType": "ad_hoc"}

// Table returns the descriptors of every action, in code order of the HTTP
// surface.
func Table() []Descriptor {
	return []Descriptor{
		{
			Code:    ConferenceList,
			Verb:    http.MethodGet,
			Method:  bridge.MethodConferenceEnumerate,
			Scope:   auth.ScopeRead,
			Payload: PayloadConferences,
		},
		{
			Code:     ConferenceCreate,
			Verb:     http.MethodGet,
			Required: []string{"conferenceName"},
			Optional: map[string]string{
				"mainPin":            "",
				"guestPin":           "",
				"minDurationMinutes": "5",
				"maxDurationMinutes": "0",
			},
			Method:   bridge.MethodConferenceCreate,
			Scope:    auth.ScopeControl,
			Mutating: true,
			Payload:  PayloadConferenceID,
		},
		{
			Code:     ConferenceEnd,
			Verb:     http.MethodGet,
			Required: []string{"conferenceName"},
			Method:   bridge.MethodConferenceDestroy,
			Scope:    auth.ScopeControl,
			Mutating: true,
			Payload:  PayloadNone,
		},
		{
			Code:     ConferenceLayout,
			Verb:     http.MethodPost,
			Required: []string{"factoryConferenceId", "customLayoutEnabled", "newParticipantsCustomLayout", "customLayout"},
			Method:   bridge.MethodConferenceModify,
			Scope:    auth.ScopeControl,
			Mutating: true,
			Payload:  PayloadResult,
		},
		{
			Code:     ParticipantList,
			Verb:     http.MethodGet,
			Required: []string{"factoryConferenceIds"},
			Method:   bridge.MethodParticipantEnumerate,
			Scope:    auth.ScopeRead,
			Payload:  PayloadParticipants,
		},
		{
			Code:     ParticipantAdd,
			Verb:     http.MethodGet,
			Required: []string{"conferenceName", "participantName", "address", "participantProtocol"},
			Method:   bridge.MethodParticipantAdd,
			Scope:    auth.ScopeControl,
			Mutating: true,
			Payload:  PayloadMessage,
		},
		{
			Code:     ParticipantRemove,
			Verb:     http.MethodGet,
			Required: []string{"conferenceName", "participantName", "participantProtocol"},
			Optional: participantTypeDefault,
			Method:   bridge.MethodParticipantDisconnect,
			Scope:    auth.ScopeControl,
			Mutating: true,
			Payload:  PayloadMessage,
		},
		{
			Code:     ParticipantAudio,
			Verb:     http.MethodGet,
			Required: []string{"conferenceName", "participantName", "audioRxMuted", "participantProtocol"},
			Optional: participantTypeDefault,
			Method:   bridge.MethodParticipantModify,
			Scope:    auth.ScopeControl,
			Mutating: true,
			Payload:  PayloadMessage,
		},
		{
			Code:     ParticipantVideo,
			Verb:     http.MethodGet,
			Required: []string{"conferenceName", "participantName", "videoRxMuted", "participantProtocol"},
			Optional: participantTypeDefault,
			Method:   bridge.MethodParticipantModify,
			Scope:    auth.ScopeControl,
			Mutating: true,
			Payload:  PayloadMessage,
		},
		{
			Code:     ParticipantName,
			Verb:     http.MethodGet,
			Required: []string{"conferenceName", "participantName", "displayNameOverrideStatus", "displayNameOverrideValue", "participantProtocol"},
			Optional: participantTypeDefault,
			Method:   bridge.MethodParticipantModify,
			Scope:    auth.ScopeControl,
			Mutating: true,
			Payload:  PayloadMessage,
		},
		{
			Code:     ParticipantMessage,
			Verb:     http.MethodGet,
			Required: []string{"conferenceName", "participantName", "message", "participantProtocol"},
			Optional: participantTypeDefault,
			Method:   bridge.MethodParticipantMessage,
			Scope:    auth.ScopeControl,
			Mutating: true,
			Payload:  PayloadMessage,
		},
	}
}

// Router maps action codes to descriptors. It is immutable after NewRouter.
type Router struct {
	byCode map[string]*Descriptor
}

// NewRouter builds a router over Table().
func NewRouter() *Router {
	table := Table()
	r := &Router{byCode: make(map[string]*Descriptor, len(table))}
	for i := range table {
		r.byCode[table[i].Code] = &table[i]
	}
	return r
}

// Lookup returns the descriptor for code, ignoring case.
func (r *Router) Lookup(code string) (*Descriptor, bool) {
	d, ok := r.byCode[strings.ToLower(strings.TrimSpace(code))]
	return d, ok
}

// Resolve returns the descriptor for code when called with verb.
// HEAD is accepted wherever GET is.
func (r *Router) Resolve(code, verb string) (*Descriptor, error) {
	d, ok := r.Lookup(code)
	if !ok {
		return nil, ErrUnknownAction
	}
	if verb == http.MethodHead {
		verb = http.MethodGet
	}
	if verb != d.Verb {
		return nil, &MethodError{Code: d.Code, Verb: d.Verb}
	}
	return d, nil
}

// Codes returns every action code in table order.
func (r *Router) Codes() []string {
	table := Table()
	codes := make([]string, len(table))
	for i, d := range table {
		codes[i] = d.Code
	}
	return codes
}
