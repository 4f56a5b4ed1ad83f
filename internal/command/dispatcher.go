package command

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/purezhi/mcu/internal/action"
	"github.com/purezhi/mcu/internal/audit"
	"github.com/purezhi/mcu/internal/auth"
	"github.com/purezhi/mcu/internal/bridge"
	"github.com/purezhi/mcu/internal/fault"
	"github.com/purezhi/mcu/internal/logging"
	"github.com/purezhi/mcu/internal/params"
)

// Action outcomes reported to the Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailure = "failure"
)

// Payload is the action-specific part of a success envelope.
type Payload map[string]any

// handlerFunc binds parameters and performs the remote call of one action.
type handlerFunc func(ctx context.Context, d *action.Descriptor, v params.Values) (bridge.Result, error)

// Dispatcher routes validated actions to the bridge client.
type Dispatcher struct {
	bridge     BridgePort
	translator *fault.Translator
	handlers   map[string]handlerFunc

	logger   *zap.Logger
	audit    AuditLogger
	recorder Recorder
}

// NewDispatcher creates a dispatcher over client.
func NewDispatcher(client BridgePort, translator *fault.Translator) *Dispatcher {
	d := &Dispatcher{
		bridge:     client,
		translator: translator,
		logger:     zap.NewNop(),
	}
	d.handlers = map[string]handlerFunc{
		action.ConferenceList:     d.listConferences,
		action.ConferenceCreate:   d.createConference,
		action.ConferenceEnd:      d.endConference,
		action.ConferenceLayout:   d.changeLayout,
		action.ParticipantList:    d.listParticipants,
		action.ParticipantAdd:     d.addParticipant,
		action.ParticipantRemove:  d.removeParticipant,
		action.ParticipantAudio:   d.muteAudio,
		action.ParticipantVideo:   d.muteVideo,
		action.ParticipantName:    d.renameParticipant,
		action.ParticipantMessage: d.messageParticipant,
	}
	return d
}

// SetLogger sets the logger.
func (d *Dispatcher) SetLogger(logger *zap.Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// SetAuditLogger sets the audit logger for mutating actions.
func (d *Dispatcher) SetAuditLogger(logger AuditLogger) {
	d.audit = logger
}

// SetRecorder sets the metrics recorder.
func (d *Dispatcher) SetRecorder(recorder Recorder) {
	d.recorder = recorder
}

// Dispatch runs the action described by desc with the request values and
// returns its success payload.
func (d *Dispatcher) Dispatch(ctx context.Context, desc *action.Descriptor, v params.Values) (Payload, error) {
	start := time.Now()

	handler, ok := d.handlers[desc.Code]
	if !ok {
		return nil, action.ErrUnknownAction
	}

	result, err := handler(ctx, desc, v)
	latency := time.Since(start)

	if err != nil {
		d.fail(ctx, desc, v, err, latency)
		return nil, err
	}

	d.record(ctx, desc, v, OutcomeSuccess, "", latency)
	return selectPayload(desc, result), nil
}

// selectPayload keeps only the fields the action exposes.
func selectPayload(desc *action.Descriptor, result bridge.Result) Payload {
	switch desc.Payload {
	case action.PayloadConferences, action.PayloadParticipants:
		list, ok := result[desc.Payload]
		if !ok || list == nil {
			list = []any{}
		}
		return Payload{desc.Payload: list}
	case action.PayloadConferenceID:
		return Payload{action.PayloadConferenceID: result["factory_conference_id"]}
	case action.PayloadResult, action.PayloadMessage:
		return Payload{desc.Payload: map[string]any(result)}
	default:
		return Payload{}
	}
}

func (d *Dispatcher) fail(ctx context.Context, desc *action.Descriptor, v params.Values, err error, latency time.Duration) {
	message := d.translator.Message(desc.Code, err)
	logger := logging.WithContext(ctx, d.logger).With(
		zap.String("action", desc.Code),
		zap.String("method", desc.Method),
	)

	outcome := OutcomeFailure
	if f, ok := bridge.IsFault(err); ok {
		logger.Warn("bridge fault",
			zap.Int("faultCode", f.Code),
			zap.String("faultString", f.String),
			zap.String("faultDescription", fault.Describe(f.Code)),
		)
		if d.recorder != nil {
			d.recorder.ObserveFault(desc.Method, f.Code)
		}
	} else if isValidation(err) {
		outcome = OutcomeInvalid
		logger.Debug("request rejected", zap.Error(err))
	} else {
		logger.Warn("action failed", zap.Error(err), zap.String("message", message))
	}

	d.record(ctx, desc, v, outcome, message, latency)
}

func (d *Dispatcher) record(ctx context.Context, desc *action.Descriptor, v params.Values, outcome, message string, latency time.Duration) {
	if d.recorder != nil {
		d.recorder.ObserveAction(desc.Code, outcome)
	}
	if d.audit == nil || !desc.Mutating {
		return
	}

	auditOutcome := audit.OutcomeSuccess
	if outcome != OutcomeSuccess {
		auditOutcome = audit.OutcomeFailure
	}
	d.audit.Record(audit.Entry{
		RequestID: logging.RequestID(ctx),
		User:      auth.Subject(ctx),
		Action:    desc.Code,
		Method:    desc.Method,
		Params:    auditParams(desc, v),
		Outcome:   auditOutcome,
		Message:   message,
		LatencyMs: latency.Milliseconds(),
	})
}

// auditParams collects the declared parameters that were supplied.
func auditParams(desc *action.Descriptor, v params.Values) map[string]any {
	out := make(map[string]any, len(desc.Required)+len(desc.Optional))
	for _, name := range desc.Required {
		if v.Has(name) {
			out[name] = v.Raw(name)
		}
	}
	for name := range desc.Optional {
		if v.Has(name) {
			out[name] = v.Raw(name)
		}
	}
	return out
}

func isValidation(err error) bool {
	var pe *params.Error
	return errors.As(err, &pe)
}

func intDefault(desc *action.Descriptor, name string) int {
	n, _ := strconv.Atoi(desc.Default(name))
	return n
}
