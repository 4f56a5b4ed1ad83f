package bridge

import (
	"context"
)

// Remote method names.
const (
	MethodConferenceCreate      = "factory.conferencecreate"
	MethodConferenceEnumerate   = "conference.enumerate"
	MethodConferenceModify      = "conference.modify"
	MethodConferenceDestroy     = "conference.destroy"
	MethodParticipantEnumerate  = "participant.enumerate"
	MethodParticipantAdd        = "participant.add"
	MethodParticipantDisconnect = "participant.disconnect"
	MethodParticipantModify     = "participant.modify"
	MethodParticipantMessage    = "participant.message"
)

// DefaultSuccessStatus is the status string the bridge reports for a
// completed operation.
const DefaultSuccessStatus = "operation successful"

// Credential field names expected by the bridge.
const (
	FieldAuthUser     = "authenticationUser"
	FieldAuthPassword = "authenticationPassword"
)

// Params is the struct parameter of a remote call.
type Params map[string]any

// Result is the struct returned by a successful remote call.
type Result map[string]any

// Status returns the response's status field, or "" when absent.
func (r Result) Status() string {
	s, _ := r["status"].(string)
	return s
}

// Has reports whether key is present in the response.
func (r Result) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Caller performs a single remote call.
type Caller interface {
	Call(ctx context.Context, method string, params Params) (Result, error)
}

// Credentials authenticate every outbound request.
type Credentials struct {
	User     string
	Password string
}

// merge returns a new Params holding the credentials followed by fields.
func (c Credentials) merge(fields Params) Params {
	out := make(Params, len(fields)+2)
	out[FieldAuthUser] = c.User
	out[FieldAuthPassword] = c.Password
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Redact returns a copy of p that is safe to log.
func Redact(p Params) Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	if _, ok := out[FieldAuthPassword]; ok {
		out[FieldAuthPassword] = "******"
	}
	return out
}

// CreateConference describes a factory.conferencecreate call.
type CreateConference struct {
	Name               string
	PIN                string
	GuestPIN           string
	MinDurationMinutes int
	MaxDurationMinutes int // 0 means unlimited
}

func (r CreateConference) fields() Params {
	return Params{
		"conferenceAlias":           r.Name,
		"factoryMinDurationMinutes": r.MinDurationMinutes,
		"factoryMaxDurationMinutes": r.MaxDurationMinutes,
		"factoryOverridePIN":        r.PIN,
		"factoryOverrideGuestPIN":   r.GuestPIN,
	}
}

// ModifyConference describes a conference.modify layout change.
type ModifyConference struct {
	ConferenceName              string
	CustomLayoutEnabled         bool
	NewParticipantsCustomLayout bool
	CustomLayout                int
}

func (r ModifyConference) fields() Params {
	return Params{
		"conferenceName":              r.ConferenceName,
		"customLayoutEnabled":         boolInt(r.CustomLayoutEnabled),
		"newParticipantsCustomLayout": boolInt(r.NewParticipantsCustomLayout),
		"customLayout":                r.CustomLayout,
	}
}

// Participant identifies a participant within a conference.
type Participant struct {
	ConferenceName  string
	ParticipantName string
	Protocol        string
	Type            string
}

func (p Participant) fields() Params {
	return Params{
		"conferenceName":      p.ConferenceName,
		"participantName":     p.ParticipantName,
		"participantProtocol": p.Protocol,
		"participantType":     p.Type,
	}
}

// AddParticipant describes a participant.add call.
type AddParticipant struct {
	ConferenceName  string
	ParticipantName string
	Address         string
	Protocol        string
}

func (r AddParticipant) fields() Params {
	return Params{
		"conferenceName":      r.ConferenceName,
		"participantName":     r.ParticipantName,
		"address":             r.Address,
		"participantProtocol": r.Protocol,
	}
}

// ModifyParticipant describes a participant.modify call. Only the non-nil
// settings are sent.
type ModifyParticipant struct {
	Participant

	AudioRxMuted              *bool
	VideoRxMuted              *bool
	DisplayNameOverrideStatus *bool
	DisplayNameOverrideValue  *string
}

func (r ModifyParticipant) fields() Params {
	p := r.Participant.fields()
	if r.AudioRxMuted != nil {
		p["audioRxMuted"] = *r.AudioRxMuted
	}
	if r.VideoRxMuted != nil {
		p["videoRxMuted"] = *r.VideoRxMuted
	}
	if r.DisplayNameOverrideStatus != nil {
		p["displayNameOverrideStatus"] = *r.DisplayNameOverrideStatus
	}
	if r.DisplayNameOverrideValue != nil {
		p["displayNameOverrideValue"] = *r.DisplayNameOverrideValue
	}
	return p
}

// MessageParticipant describes a participant.message call.
type MessageParticipant struct {
	Participant
	Message string
}

func (r MessageParticipant) fields() Params {
	p := r.Participant.fields()
	p["message"] = r.Message
	return p
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
