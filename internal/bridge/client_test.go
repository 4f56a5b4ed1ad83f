package bridge

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubCaller is a Caller backed by a function.
type stubCaller struct {
	CallFunc func(ctx context.Context, method string, params Params) (Result, error)

	methods []string
	params  []Params
}

func (s *stubCaller) Call(ctx context.Context, method string, params Params) (Result, error) {
	s.methods = append(s.methods, method)
	s.params = append(s.params, params)
	if s.CallFunc != nil {
		return s.CallFunc(ctx, method, params)
	}
	return Result{"status": DefaultSuccessStatus}, nil
}

func respond(r Result, err error) func(context.Context, string, Params) (Result, error) {
	return func(context.Context, string, Params) (Result, error) {
		return r, err
	}
}

type recordingObserver struct {
	outcomes map[string]string
}

func (o *recordingObserver) ObserveCall(method, outcome string, elapsed time.Duration) {
	o.outcomes[method] = outcome
}

func TestClientMergesCredentials(t *testing.T) {
	stub := &stubCaller{}
	client := NewClient(stub, Credentials{User: "admin", Password: "secret"}, "")

	_, err := client.DestroyConference(context.Background(), "weekly")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(stub.params) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(stub.params))
	}
	p := stub.params[0]
	if p[FieldAuthUser] != "admin" {
		t.Errorf("Expected user admin, got %v", p[FieldAuthUser])
	}
	if p[FieldAuthPassword] != "secret" {
		t.Errorf("Expected password secret, got %v", p[FieldAuthPassword])
	}
	if p["conferenceName"] != "weekly" {
		t.Errorf("Expected conferenceName weekly, got %v", p["conferenceName"])
	}
	if stub.methods[0] != MethodConferenceDestroy {
		t.Errorf("Expected method %s, got %s", MethodConferenceDestroy, stub.methods[0])
	}
}

func TestClientOperationsUseMethodNames(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		method string
		invoke func(c *Client) (Result, error)
	}{
		{"create", MethodConferenceCreate, func(c *Client) (Result, error) {
			return c.CreateConference(ctx, CreateConference{Name: "a", MinDurationMinutes: 5})
		}},
		{"enumerate conferences", MethodConferenceEnumerate, func(c *Client) (Result, error) {
			return c.EnumerateConferences(ctx)
		}},
		{"modify conference", MethodConferenceModify, func(c *Client) (Result, error) {
			return c.ModifyConference(ctx, ModifyConference{ConferenceName: "a", CustomLayout: 2})
		}},
		{"destroy", MethodConferenceDestroy, func(c *Client) (Result, error) {
			return c.DestroyConference(ctx, "a")
		}},
		{"enumerate participants", MethodParticipantEnumerate, func(c *Client) (Result, error) {
			return c.EnumerateParticipants(ctx, nil)
		}},
		{"add", MethodParticipantAdd, func(c *Client) (Result, error) {
			return c.AddParticipant(ctx, AddParticipant{ConferenceName: "a", ParticipantName: "p", Address: "1.2.3.4", Protocol: "sip"})
		}},
		{"disconnect", MethodParticipantDisconnect, func(c *Client) (Result, error) {
			return c.DisconnectParticipant(ctx, Participant{ConferenceName: "a", ParticipantName: "p"})
		}},
		{"modify participant", MethodParticipantModify, func(c *Client) (Result, error) {
			return c.ModifyParticipant(ctx, ModifyParticipant{Participant: Participant{ConferenceName: "a"}})
		}},
		{"message", MethodParticipantMessage, func(c *Client) (Result, error) {
			return c.MessageParticipant(ctx, MessageParticipant{Message: "hi"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubCaller{}
			client := NewClient(stub, Credentials{}, "")

			if _, err := tt.invoke(client); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(stub.methods) != 1 || stub.methods[0] != tt.method {
				t.Errorf("Expected single call to %s, got %v", tt.method, stub.methods)
			}
		})
	}
}

func TestClientSuccessDetection(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		result  Result
		invoke  func(c *Client) (Result, error)
		wantErr error
	}{
		{
			name:   "status success",
			result: Result{"status": DefaultSuccessStatus, "factory_conference_id": "1001"},
			invoke: func(c *Client) (Result, error) {
				return c.CreateConference(ctx, CreateConference{Name: "a"})
			},
		},
		{
			name:   "other status is unsuccessful",
			result: Result{"status": "operation pending"},
			invoke: func(c *Client) (Result, error) {
				return c.CreateConference(ctx, CreateConference{Name: "a"})
			},
			wantErr: ErrUnsuccessful,
		},
		{
			name:   "missing status is unsuccessful",
			result: Result{},
			invoke: func(c *Client) (Result, error) {
				return c.DestroyConference(ctx, "a")
			},
			wantErr: ErrUnsuccessful,
		},
		{
			name:   "enumerate payload without status",
			result: Result{"conferences": []any{}},
			invoke: func(c *Client) (Result, error) {
				return c.EnumerateConferences(ctx)
			},
		},
		{
			name:   "enumerate status without payload",
			result: Result{"status": DefaultSuccessStatus},
			invoke: func(c *Client) (Result, error) {
				return c.EnumerateParticipants(ctx, nil)
			},
		},
		{
			name:   "enumerate neither payload nor status",
			result: Result{"enumerateID": 3},
			invoke: func(c *Client) (Result, error) {
				return c.EnumerateParticipants(ctx, nil)
			},
			wantErr: ErrUnsuccessful,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubCaller{CallFunc: respond(tt.result, nil)}
			client := NewClient(stub, Credentials{}, "")

			_, err := tt.invoke(client)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestClientCustomSuccessStatus(t *testing.T) {
	stub := &stubCaller{CallFunc: respond(Result{"status": "ok"}, nil)}
	client := NewClient(stub, Credentials{}, "ok")

	if _, err := client.DestroyConference(context.Background(), "a"); err != nil {
		t.Errorf("Expected custom status to succeed, got %v", err)
	}
}

func TestClientEnumerateParticipantsFilter(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		wantField bool
	}{
		{"nil filter omitted", nil, false},
		{"empty filter omitted", []string{}, false},
		{"ids sent", []string{"1001", "1002"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubCaller{}
			client := NewClient(stub, Credentials{User: "u"}, "")

			if _, err := client.EnumerateParticipants(context.Background(), tt.ids); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			_, present := stub.params[0]["factoryConferenceIds"]
			if present != tt.wantField {
				t.Errorf("Expected factoryConferenceIds present=%v, got %v", tt.wantField, present)
			}
		})
	}
}

func TestClientPropagatesErrors(t *testing.T) {
	fault := &Fault{Code: 4, String: "conference not found"}
	transport := &TransportError{Code: 502, Message: "bad gateway"}

	tests := []struct {
		name        string
		err         error
		wantOutcome string
	}{
		{"fault", fault, OutcomeFault},
		{"transport", transport, OutcomeTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observer := &recordingObserver{outcomes: map[string]string{}}
			client := NewClient(&stubCaller{CallFunc: respond(nil, tt.err)}, Credentials{}, "")
			client.SetObserver(observer)

			result, err := client.DestroyConference(context.Background(), "a")
			if err != tt.err {
				t.Errorf("Expected %v, got %v", tt.err, err)
			}
			if result != nil {
				t.Errorf("Expected nil result, got %v", result)
			}
			if got := observer.outcomes[MethodConferenceDestroy]; got != tt.wantOutcome {
				t.Errorf("Expected outcome %s, got %s", tt.wantOutcome, got)
			}
		})
	}
}

func TestClientObserverOutcomes(t *testing.T) {
	observer := &recordingObserver{outcomes: map[string]string{}}
	stub := &stubCaller{CallFunc: func(_ context.Context, method string, _ Params) (Result, error) {
		if method == MethodConferenceDestroy {
			return Result{"status": "busy"}, nil
		}
		return Result{"status": DefaultSuccessStatus}, nil
	}}
	client := NewClient(stub, Credentials{}, "")
	client.SetObserver(observer)

	_, _ = client.DestroyConference(context.Background(), "a")
	_, _ = client.CreateConference(context.Background(), CreateConference{Name: "a"})

	if got := observer.outcomes[MethodConferenceDestroy]; got != OutcomeUnsuccessful {
		t.Errorf("Expected %s, got %s", OutcomeUnsuccessful, got)
	}
	if got := observer.outcomes[MethodConferenceCreate]; got != OutcomeSuccess {
		t.Errorf("Expected %s, got %s", OutcomeSuccess, got)
	}
}

func TestRequestFields(t *testing.T) {
	yes := true
	name := "Room A"

	create := CreateConference{Name: "weekly", PIN: "1234", MinDurationMinutes: 5}.fields()
	if create["conferenceAlias"] != "weekly" || create["factoryOverridePIN"] != "1234" {
		t.Errorf("Unexpected create fields: %v", create)
	}
	if create["factoryMinDurationMinutes"] != 5 || create["factoryMaxDurationMinutes"] != 0 {
		t.Errorf("Unexpected duration fields: %v", create)
	}

	layout := ModifyConference{ConferenceName: "1001", CustomLayoutEnabled: true, CustomLayout: 5}.fields()
	if layout["customLayoutEnabled"] != 1 || layout["newParticipantsCustomLayout"] != 0 {
		t.Errorf("Expected layout flags as 1/0, got %v", layout)
	}

	modify := ModifyParticipant{
		Participant:               Participant{ConferenceName: "c", ParticipantName: "p", Protocol: "h323", Type: "ad_hoc"},
		DisplayNameOverrideStatus: &yes,
		DisplayNameOverrideValue:  &name,
	}.fields()
	if _, ok := modify["audioRxMuted"]; ok {
		t.Error("Expected audioRxMuted to be omitted")
	}
	if modify["displayNameOverrideStatus"] != true || modify["displayNameOverrideValue"] != "Room A" {
		t.Errorf("Unexpected display name fields: %v", modify)
	}
	if modify["participantType"] != "ad_hoc" {
		t.Errorf("Expected participantType ad_hoc, got %v", modify["participantType"])
	}
}

func TestRedact(t *testing.T) {
	p := Credentials{User: "admin", Password: "secret"}.merge(Params{"conferenceName": "a"})
	redacted := Redact(p)

	if redacted[FieldAuthPassword] != "******" {
		t.Errorf("Expected masked password, got %v", redacted[FieldAuthPassword])
	}
	if p[FieldAuthPassword] != "secret" {
		t.Error("Expected Redact to leave the original untouched")
	}
	if redacted[FieldAuthUser] != "admin" {
		t.Errorf("Expected user to be kept, got %v", redacted[FieldAuthUser])
	}
}
