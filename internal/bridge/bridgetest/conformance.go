// Package bridgetest provides conformance checks for bridge.Caller
// implementations.
//
// The checks pin the behaviour the gateway depends on: the success status,
// the conference id returned by create, the fault wordings the translator
// recognises, and the shape of the enumerate responses.
package bridgetest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/purezhi/mcu/internal/bridge"
)

// Setup describes the caller under test.
type Setup struct {
	// NewCaller returns a caller backed by an empty bridge.
	NewCaller func(t *testing.T) bridge.Caller

	// Credentials are merged into every call.
	Credentials bridge.Credentials

	// Wordings the translator matches; defaults are the bridge's own.
	DuplicateWording   string
	NotFoundWording    string
	UnsupportedWording string
}

func (s *Setup) defaults() {
	if s.DuplicateWording == "" {
		s.DuplicateWording = "conference already present"
	}
	if s.NotFoundWording == "" {
		s.NotFoundWording = "not found"
	}
	if s.UnsupportedWording == "" {
		s.UnsupportedWording = "not supported"
	}
}

// RunConformance runs every check as a subtest.
func RunConformance(t *testing.T, setup Setup) {
	t.Helper()
	setup.defaults()

	checks := []struct {
		name string
		run  func(t *testing.T, c *bridge.Client, s Setup)
	}{
		{"CreateReturnsConferenceID", checkCreate},
		{"DuplicateCreateFaults", checkDuplicate},
		{"DestroyMissingFaults", checkDestroyMissing},
		{"UnsupportedProtocolFaults", checkUnsupportedProtocol},
		{"ConferenceEnumerateShape", checkConferenceEnumerate},
		{"ParticipantFilter", checkParticipantFilter},
		{"ParticipantLifecycle", checkParticipantLifecycle},
	}

	for _, check := range checks {
		t.Run(check.name, func(t *testing.T) {
			client := bridge.NewClient(setup.NewCaller(t), setup.Credentials, "")
			start := time.Now()
			check.run(t, client, setup)
			t.Logf("%s took %v", check.name, time.Since(start))
		})
	}
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func create(t *testing.T, c *bridge.Client, name string) string {
	t.Helper()
	r, err := c.CreateConference(ctx(t), bridge.CreateConference{Name: name, MinDurationMinutes: 5})
	if err != nil {
		t.Fatalf("Expected create %s to succeed, got %v", name, err)
	}
	id, ok := r["factory_conference_id"]
	if !ok {
		t.Fatalf("Expected factory_conference_id in %v", r)
	}
	return fmt.Sprint(id)
}

func expectFault(t *testing.T, err error, wording string) {
	t.Helper()
	f, ok := bridge.IsFault(err)
	if !ok {
		t.Fatalf("Expected fault, got %T: %v", err, err)
	}
	if !strings.Contains(f.String, wording) {
		t.Errorf("Expected fault wording to contain %q, got %q", wording, f.String)
	}
}

func checkCreate(t *testing.T, c *bridge.Client, _ Setup) {
	if id := create(t, c, "conformance-a"); id == "" {
		t.Error("Expected non-empty conference id")
	}
}

func checkDuplicate(t *testing.T, c *bridge.Client, s Setup) {
	create(t, c, "conformance-dup")
	_, err := c.CreateConference(ctx(t), bridge.CreateConference{Name: "conformance-dup"})
	expectFault(t, err, s.DuplicateWording)
}

func checkDestroyMissing(t *testing.T, c *bridge.Client, s Setup) {
	_, err := c.DestroyConference(ctx(t), "conformance-missing")
	expectFault(t, err, s.NotFoundWording)
}

func checkUnsupportedProtocol(t *testing.T, c *bridge.Client, s Setup) {
	create(t, c, "conformance-proto")
	_, err := c.AddParticipant(ctx(t), bridge.AddParticipant{
		ConferenceName:  "conformance-proto",
		ParticipantName: "p1",
		Address:         "10.0.0.9",
		Protocol:        "carrier-pigeon",
	})
	expectFault(t, err, s.UnsupportedWording)
}

func checkConferenceEnumerate(t *testing.T, c *bridge.Client, _ Setup) {
	create(t, c, "conformance-list")
	r, err := c.EnumerateConferences(ctx(t))
	if err != nil {
		t.Fatalf("Expected enumerate to succeed, got %v", err)
	}
	list, ok := r["conferences"].([]interface{})
	if !ok || len(list) == 0 {
		t.Errorf("Expected non-empty conferences list, got %#v", r["conferences"])
	}
}

func checkParticipantFilter(t *testing.T, c *bridge.Client, _ Setup) {
	first := create(t, c, "conformance-f1")
	create(t, c, "conformance-f2")
	for _, conf := range []string{"conformance-f1", "conformance-f2"} {
		if _, err := c.AddParticipant(ctx(t), bridge.AddParticipant{
			ConferenceName: conf, ParticipantName: "p-" + conf, Address: "10.0.0.1", Protocol: "sip",
		}); err != nil {
			t.Fatalf("Expected add to succeed, got %v", err)
		}
	}

	r, err := c.EnumerateParticipants(ctx(t), []string{first})
	if err != nil {
		t.Fatalf("Expected enumerate to succeed, got %v", err)
	}
	list, _ := r["participants"].([]interface{})
	if len(list) != 1 {
		t.Errorf("Expected 1 participant for %s, got %d", first, len(list))
	}

	r, err = c.EnumerateParticipants(ctx(t), nil)
	if err != nil {
		t.Fatalf("Expected unfiltered enumerate to succeed, got %v", err)
	}
	if list, _ := r["participants"].([]interface{}); len(list) != 2 {
		t.Errorf("Expected 2 participants unfiltered, got %d", len(list))
	}
}

func checkParticipantLifecycle(t *testing.T, c *bridge.Client, _ Setup) {
	create(t, c, "conformance-p")
	p := bridge.Participant{ConferenceName: "conformance-p", ParticipantName: "alice", Protocol: "h323", Type: "ad_hoc"}

	if _, err := c.AddParticipant(ctx(t), bridge.AddParticipant{
		ConferenceName: p.ConferenceName, ParticipantName: p.ParticipantName, Address: "10.0.0.2", Protocol: p.Protocol,
	}); err != nil {
		t.Fatalf("Expected add to succeed, got %v", err)
	}

	muted := true
	if _, err := c.ModifyParticipant(ctx(t), bridge.ModifyParticipant{Participant: p, AudioRxMuted: &muted}); err != nil {
		t.Errorf("Expected mute to succeed, got %v", err)
	}
	if _, err := c.MessageParticipant(ctx(t), bridge.MessageParticipant{Participant: p, Message: "hello"}); err != nil {
		t.Errorf("Expected message to succeed, got %v", err)
	}
	if _, err := c.DisconnectParticipant(ctx(t), p); err != nil {
		t.Errorf("Expected disconnect to succeed, got %v", err)
	}
	if _, err := c.DisconnectParticipant(ctx(t), p); err == nil {
		t.Error("Expected second disconnect to fail")
	}
}
