package command

import (
	"context"

	"github.com/purezhi/mcu/internal/audit"
	"github.com/purezhi/mcu/internal/bridge"
	"github.com/purezhi/mcu/internal/metrics"
)

// BridgePort is the part of the bridge client the dispatcher uses.
type BridgePort interface {
	CreateConference(ctx context.Context, req bridge.CreateConference) (bridge.Result, error)
	EnumerateConferences(ctx context.Context) (bridge.Result, error)
	ModifyConference(ctx context.Context, req bridge.ModifyConference) (bridge.Result, error)
	DestroyConference(ctx context.Context, conferenceName string) (bridge.Result, error)
	EnumerateParticipants(ctx context.Context, factoryConferenceIDs []string) (bridge.Result, error)
	AddParticipant(ctx context.Context, req bridge.AddParticipant) (bridge.Result, error)
	DisconnectParticipant(ctx context.Context, p bridge.Participant) (bridge.Result, error)
	ModifyParticipant(ctx context.Context, req bridge.ModifyParticipant) (bridge.Result, error)
	MessageParticipant(ctx context.Context, req bridge.MessageParticipant) (bridge.Result, error)
}

// AuditLogger receives one entry per mutating action.
type AuditLogger interface {
	Record(e audit.Entry)
}

// Recorder receives action and fault counts.
type Recorder interface {
	ObserveAction(action, outcome string)
	ObserveFault(method string, code int)
}

// Compile-time assertions for the production implementations
var (
	_ BridgePort  = (*bridge.Client)(nil)
	_ AuditLogger = (*audit.Logger)(nil)
	_ Recorder    = (*metrics.Metrics)(nil)
)
