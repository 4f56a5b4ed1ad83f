// Package fake provides an in-memory conferencing bridge for tests.
//
// The fake keeps conferences and their participants, answers every method the
// gateway calls and records each request so tests can assert on the exact
// fields sent. Faults and raw responses can be injected per method.
package fake

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/purezhi/mcu/internal/bridge"
)

// Faults raised by the fake when its state rejects a call.
var (
	FaultDuplicateConference = &bridge.Fault{Code: 2, String: "conference already present"}
	FaultConferenceNotFound  = &bridge.Fault{Code: 4, String: "conference not found"}
	FaultNoSuchParticipant   = &bridge.Fault{Code: 5, String: "no such participant"}
	FaultAuthorization       = &bridge.Fault{Code: 14, String: "authorization failed"}
	FaultUnsupportedProtocol = &bridge.Fault{Code: 19, String: "protocol not supported"}
	FaultMethodNotSupported  = &bridge.Fault{Code: 1, String: "method not supported"}
)

// Call is one recorded request.
type Call struct {
	Method string
	Params bridge.Params
}

type participant struct {
	name        string
	address     string
	protocol    string
	audioMuted  bool
	videoMuted  bool
	displayName string
	messages    []string
}

type conference struct {
	name         string
	id           string
	pin          string
	guestPIN     string
	layout       int
	participants []*participant
}

// Bridge implements bridge.Caller against in-memory state.
type Bridge struct {
	mu sync.Mutex

	conferences map[string]*conference
	nextID      int

	user     string
	password string

	status    string
	faults    map[string]error
	responses map[string]bridge.Result
	calls     []Call
}

// Compile-time assertion that Bridge implements bridge.Caller
var _ bridge.Caller = (*Bridge)(nil)

// New creates an empty fake bridge that accepts any credentials.
func New() *Bridge {
	return &Bridge{
		conferences: make(map[string]*conference),
		nextID:      1001,
		status:      bridge.DefaultSuccessStatus,
		faults:      make(map[string]error),
		responses:   make(map[string]bridge.Result),
	}
}

// WithCredentials makes the fake reject requests that do not carry user and
// password.
func (b *Bridge) WithCredentials(user, password string) *Bridge {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.user = user
	b.password = password
	return b
}

// WithConference seeds a conference and returns its factory conference ID.
func (b *Bridge) WithConference(name string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createLocked(name, "", "").id
}

// WithParticipant seeds a participant into an existing conference.
func (b *Bridge) WithParticipant(conferenceName, participantName, protocol string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.conferences[conferenceName]; ok {
		c.participants = append(c.participants, &participant{
			name:     participantName,
			address:  participantName,
			protocol: protocol,
		})
	}
}

// SetFault makes every call to method fail with err. A nil err clears it.
func (b *Bridge) SetFault(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.faults, method)
		return
	}
	b.faults[method] = err
}

// SetResponse makes every call to method return r verbatim.
func (b *Bridge) SetResponse(method string, r bridge.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[method] = r
}

// SetStatus changes the status string the fake reports on success.
func (b *Bridge) SetStatus(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

// Calls returns the recorded requests in order.
func (b *Bridge) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// CallCount returns the number of requests for method.
func (b *Bridge) CallCount(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// LastCall returns the most recent request.
func (b *Bridge) LastCall() (Call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.calls) == 0 {
		return Call{}, false
	}
	return b.calls[len(b.calls)-1], true
}

// HasConference reports whether a conference with name exists.
func (b *Bridge) HasConference(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conferences[name]
	return ok
}

// Layout returns the custom layout of a conference.
func (b *Bridge) Layout(name string) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.conferences[name]
	if !ok {
		return 0, false
	}
	return c.layout, true
}

// Call implements bridge.Caller.
func (b *Bridge) Call(ctx context.Context, method string, params bridge.Params) (bridge.Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	recorded := make(bridge.Params, len(params))
	for k, v := range params {
		recorded[k] = v
	}
	b.calls = append(b.calls, Call{Method: method, Params: recorded})

	if err, ok := b.faults[method]; ok {
		return nil, err
	}
	if r, ok := b.responses[method]; ok {
		return r, nil
	}
	if b.user != "" || b.password != "" {
		if str(params, bridge.FieldAuthUser) != b.user || str(params, bridge.FieldAuthPassword) != b.password {
			return nil, FaultAuthorization
		}
	}

	switch method {
	case bridge.MethodConferenceCreate:
		return b.conferenceCreate(params)
	case bridge.MethodConferenceEnumerate:
		return b.conferenceEnumerate(), nil
	case bridge.MethodConferenceModify:
		return b.conferenceModify(params)
	case bridge.MethodConferenceDestroy:
		return b.conferenceDestroy(params)
	case bridge.MethodParticipantEnumerate:
		return b.participantEnumerate(params), nil
	case bridge.MethodParticipantAdd:
		return b.participantAdd(params)
	case bridge.MethodParticipantDisconnect:
		return b.participantDisconnect(params)
	case bridge.MethodParticipantModify:
		return b.participantModify(params)
	case bridge.MethodParticipantMessage:
		return b.participantMessage(params)
	default:
		return nil, FaultMethodNotSupported
	}
}

func (b *Bridge) ok() bridge.Result {
	return bridge.Result{"status": b.status}
}

func (b *Bridge) createLocked(name, pin, guestPIN string) *conference {
	c := &conference{
		name:     name,
		id:       strconv.Itoa(b.nextID),
		pin:      pin,
		guestPIN: guestPIN,
	}
	b.nextID++
	b.conferences[name] = c
	return c
}

func (b *Bridge) conferenceCreate(params bridge.Params) (bridge.Result, error) {
	name := str(params, "conferenceAlias")
	if _, exists := b.conferences[name]; exists {
		return nil, FaultDuplicateConference
	}
	c := b.createLocked(name, str(params, "factoryOverridePIN"), str(params, "factoryOverrideGuestPIN"))
	r := b.ok()
	r["factory_conference_id"] = c.id
	return r, nil
}

// conferenceEnumerate answers without a status field, as some bridge
// firmware does.
func (b *Bridge) conferenceEnumerate() bridge.Result {
	list := make([]any, 0, len(b.conferences))
	for _, c := range b.sorted() {
		list = append(list, map[string]any{
			"conferenceName":        c.name,
			"factory_conference_id": c.id,
			"pin":                   c.pin,
			"customLayout":          c.layout,
			"participantCount":      len(c.participants),
		})
	}
	return bridge.Result{"conferences": list}
}

func (b *Bridge) conferenceModify(params bridge.Params) (bridge.Result, error) {
	c, err := b.find(params)
	if err != nil {
		return nil, err
	}
	if layout, ok := params["customLayout"].(int); ok {
		c.layout = layout
	}
	return b.ok(), nil
}

func (b *Bridge) conferenceDestroy(params bridge.Params) (bridge.Result, error) {
	c, err := b.find(params)
	if err != nil {
		return nil, err
	}
	delete(b.conferences, c.name)
	return b.ok(), nil
}

func (b *Bridge) participantEnumerate(params bridge.Params) bridge.Result {
	var filter map[string]bool
	if ids, ok := params["factoryConferenceIds"].([]string); ok {
		filter = make(map[string]bool, len(ids))
		for _, id := range ids {
			filter[id] = true
		}
	}

	list := make([]any, 0)
	for _, c := range b.sorted() {
		if filter != nil && !filter[c.id] {
			continue
		}
		for _, p := range c.participants {
			list = append(list, map[string]any{
				"conferenceName":      c.name,
				"participantName":     p.name,
				"participantProtocol": p.protocol,
				"address":             p.address,
				"audioRxMuted":        p.audioMuted,
				"videoRxMuted":        p.videoMuted,
				"displayName":         p.displayName,
			})
		}
	}
	r := b.ok()
	r["participants"] = list
	return r
}

func (b *Bridge) participantAdd(params bridge.Params) (bridge.Result, error) {
	c, err := b.find(params)
	if err != nil {
		return nil, err
	}
	protocol := str(params, "participantProtocol")
	switch protocol {
	case "h323", "sip", "vnc":
	default:
		return nil, FaultUnsupportedProtocol
	}
	p := &participant{
		name:     str(params, "participantName"),
		address:  str(params, "address"),
		protocol: protocol,
	}
	c.participants = append(c.participants, p)
	r := b.ok()
	r["participantName"] = p.name
	return r, nil
}

func (b *Bridge) participantDisconnect(params bridge.Params) (bridge.Result, error) {
	c, err := b.find(params)
	if err != nil {
		return nil, err
	}
	name := str(params, "participantName")
	for i, p := range c.participants {
		if p.name == name {
			c.participants = append(c.participants[:i], c.participants[i+1:]...)
			return b.ok(), nil
		}
	}
	return nil, FaultNoSuchParticipant
}

func (b *Bridge) participantModify(params bridge.Params) (bridge.Result, error) {
	p, err := b.findParticipant(params)
	if err != nil {
		return nil, err
	}
	if v, ok := params["audioRxMuted"].(bool); ok {
		p.audioMuted = v
	}
	if v, ok := params["videoRxMuted"].(bool); ok {
		p.videoMuted = v
	}
	if v, ok := params["displayNameOverrideStatus"].(bool); ok {
		if v {
			p.displayName = str(params, "displayNameOverrideValue")
		} else {
			p.displayName = ""
		}
	}
	return b.ok(), nil
}

func (b *Bridge) participantMessage(params bridge.Params) (bridge.Result, error) {
	p, err := b.findParticipant(params)
	if err != nil {
		return nil, err
	}
	p.messages = append(p.messages, str(params, "message"))
	return b.ok(), nil
}

func (b *Bridge) find(params bridge.Params) (*conference, error) {
	c, ok := b.conferences[str(params, "conferenceName")]
	if !ok {
		return nil, FaultConferenceNotFound
	}
	return c, nil
}

func (b *Bridge) findParticipant(params bridge.Params) (*participant, error) {
	c, err := b.find(params)
	if err != nil {
		return nil, err
	}
	name := str(params, "participantName")
	for _, p := range c.participants {
		if p.name == name {
			return p, nil
		}
	}
	return nil, FaultNoSuchParticipant
}

func (b *Bridge) sorted() []*conference {
	out := make([]*conference, 0, len(b.conferences))
	for _, c := range b.conferences {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func str(params bridge.Params, key string) string {
	switch v := params[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
