package fake

import (
	"context"
	"testing"

	"github.com/purezhi/mcu/internal/bridge"
	"github.com/purezhi/mcu/internal/bridge/bridgetest"
)

func call(t *testing.T, b *Bridge, method string, params bridge.Params) (bridge.Result, error) {
	t.Helper()
	return b.Call(context.Background(), method, params)
}

func TestConferenceLifecycle(t *testing.T) {
	b := New()

	r, err := call(t, b, bridge.MethodConferenceCreate, bridge.Params{"conferenceAlias": "weekly"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r["factory_conference_id"] != "1001" {
		t.Errorf("Expected id 1001, got %v", r["factory_conference_id"])
	}

	if _, err := call(t, b, bridge.MethodConferenceCreate, bridge.Params{"conferenceAlias": "weekly"}); err != FaultDuplicateConference {
		t.Errorf("Expected duplicate fault, got %v", err)
	}

	r, _ = call(t, b, bridge.MethodConferenceEnumerate, bridge.Params{})
	if r.Has("status") {
		t.Error("Expected conference enumerate without status")
	}
	if list := r["conferences"].([]any); len(list) != 1 {
		t.Errorf("Expected 1 conference, got %d", len(list))
	}

	if _, err := call(t, b, bridge.MethodConferenceDestroy, bridge.Params{"conferenceName": "weekly"}); err != nil {
		t.Errorf("Expected destroy to succeed, got %v", err)
	}
	if _, err := call(t, b, bridge.MethodConferenceDestroy, bridge.Params{"conferenceName": "weekly"}); err != FaultConferenceNotFound {
		t.Errorf("Expected not found fault, got %v", err)
	}
}

func TestParticipantEnumerateFilter(t *testing.T) {
	b := New()
	first := b.WithConference("a")
	b.WithConference("b")
	b.WithParticipant("a", "alice", "sip")
	b.WithParticipant("b", "bob", "h323")

	r, _ := call(t, b, bridge.MethodParticipantEnumerate, bridge.Params{})
	if list := r["participants"].([]any); len(list) != 2 {
		t.Errorf("Expected 2 participants without filter, got %d", len(list))
	}

	r, _ = call(t, b, bridge.MethodParticipantEnumerate, bridge.Params{"factoryConferenceIds": []string{first}})
	list := r["participants"].([]any)
	if len(list) != 1 {
		t.Fatalf("Expected 1 participant with filter, got %d", len(list))
	}
	if name := list[0].(map[string]any)["participantName"]; name != "alice" {
		t.Errorf("Expected alice, got %v", name)
	}
}

func TestParticipantAddProtocol(t *testing.T) {
	b := New()
	b.WithConference("a")

	_, err := call(t, b, bridge.MethodParticipantAdd, bridge.Params{
		"conferenceName": "a", "participantName": "p", "participantProtocol": "h.323",
	})
	if err != FaultUnsupportedProtocol {
		t.Errorf("Expected unsupported protocol fault, got %v", err)
	}

	_, err = call(t, b, bridge.MethodParticipantAdd, bridge.Params{
		"conferenceName": "a", "participantName": "p", "participantProtocol": "h323",
	})
	if err != nil {
		t.Errorf("Expected add to succeed, got %v", err)
	}
}

func TestCredentialsAndInjection(t *testing.T) {
	b := New().WithCredentials("admin", "secret")

	if _, err := call(t, b, bridge.MethodConferenceEnumerate, bridge.Params{}); err != FaultAuthorization {
		t.Errorf("Expected authorization fault, got %v", err)
	}

	_, err := call(t, b, bridge.MethodConferenceEnumerate, bridge.Params{
		bridge.FieldAuthUser: "admin", bridge.FieldAuthPassword: "secret",
	})
	if err != nil {
		t.Errorf("Expected valid credentials to pass, got %v", err)
	}

	injected := &bridge.Fault{Code: 201, String: "operation failed"}
	b.SetFault(bridge.MethodConferenceEnumerate, injected)
	if _, err := call(t, b, bridge.MethodConferenceEnumerate, bridge.Params{}); err != injected {
		t.Errorf("Expected injected fault, got %v", err)
	}

	if n := b.CallCount(bridge.MethodConferenceEnumerate); n != 3 {
		t.Errorf("Expected 3 recorded calls, got %d", n)
	}
}

func TestConformance(t *testing.T) {
	bridgetest.RunConformance(t, bridgetest.Setup{
		NewCaller: func(t *testing.T) bridge.Caller {
			return New().WithCredentials("admin", "secret")
		},
		Credentials: bridge.Credentials{User: "admin", Password: "secret"},
	})
}
