package bridge

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Call outcomes reported to an Observer.
const (
	OutcomeSuccess      = "success"
	OutcomeFault        = "fault"
	OutcomeTransport    = "transport"
	OutcomeUnsuccessful = "unsuccessful"
)

// Observer is notified once per remote call.
type Observer interface {
	ObserveCall(method, outcome string, elapsed time.Duration)
}

// Client exposes one operation per bridge method.
type Client struct {
	caller        Caller
	credentials   Credentials
	successStatus string
	logger        *zap.Logger
	observer      Observer
}

// NewClient creates a client. An empty successStatus selects
// DefaultSuccessStatus.
func NewClient(caller Caller, credentials Credentials, successStatus string) *Client {
	if caller == nil {
		panic("bridge.NewClient: nil caller")
	}
	if successStatus == "" {
		successStatus = DefaultSuccessStatus
	}
	return &Client{
		caller:        caller,
		credentials:   credentials,
		successStatus: successStatus,
		logger:        zap.NewNop(),
	}
}

// SetLogger sets the logger used for request/response dumps.
func (c *Client) SetLogger(logger *zap.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// SetObserver sets the per-call observer.
func (c *Client) SetObserver(observer Observer) {
	c.observer = observer
}

// CreateConference creates a conference from the bridge's factory.
// The result carries factory_conference_id.
func (c *Client) CreateConference(ctx context.Context, req CreateConference) (Result, error) {
	return c.expectStatus(ctx, MethodConferenceCreate, req.fields())
}

// EnumerateConferences lists the active conferences.
func (c *Client) EnumerateConferences(ctx context.Context) (Result, error) {
	return c.expectPayload(ctx, MethodConferenceEnumerate, Params{}, "conferences")
}

// ModifyConference changes a conference's layout settings.
func (c *Client) ModifyConference(ctx context.Context, req ModifyConference) (Result, error) {
	return c.expectStatus(ctx, MethodConferenceModify, req.fields())
}

// DestroyConference ends the named conference.
func (c *Client) DestroyConference(ctx context.Context, conferenceName string) (Result, error) {
	return c.expectStatus(ctx, MethodConferenceDestroy, Params{"conferenceName": conferenceName})
}

// EnumerateParticipants lists participants, filtered to the given factory
// conference IDs. An empty filter is omitted from the request so the bridge
// returns every participant.
func (c *Client) EnumerateParticipants(ctx context.Context, factoryConferenceIDs []string) (Result, error) {
	fields := Params{}
	if len(factoryConferenceIDs) > 0 {
		fields["factoryConferenceIds"] = factoryConferenceIDs
	}
	return c.expectPayload(ctx, MethodParticipantEnumerate, fields, "participants")
}

// AddParticipant dials a participant into a conference.
func (c *Client) AddParticipant(ctx context.Context, req AddParticipant) (Result, error) {
	return c.expectStatus(ctx, MethodParticipantAdd, req.fields())
}

// DisconnectParticipant removes a participant from its conference.
func (c *Client) DisconnectParticipant(ctx context.Context, p Participant) (Result, error) {
	return c.expectStatus(ctx, MethodParticipantDisconnect, p.fields())
}

// ModifyParticipant changes mute or display-name settings.
func (c *Client) ModifyParticipant(ctx context.Context, req ModifyParticipant) (Result, error) {
	return c.expectStatus(ctx, MethodParticipantModify, req.fields())
}

// MessageParticipant shows a text message on a participant's screen.
func (c *Client) MessageParticipant(ctx context.Context, req MessageParticipant) (Result, error) {
	return c.expectStatus(ctx, MethodParticipantMessage, req.fields())
}

// expectStatus succeeds only when the response carries the success status.
func (c *Client) expectStatus(ctx context.Context, method string, fields Params) (Result, error) {
	return c.call(ctx, method, fields, func(r Result) bool {
		return r.Status() == c.successStatus
	})
}

// expectPayload succeeds when the payload key is present, even without a
// status field, or when the status reports success.
func (c *Client) expectPayload(ctx context.Context, method string, fields Params, key string) (Result, error) {
	return c.call(ctx, method, fields, func(r Result) bool {
		return r.Has(key) || r.Status() == c.successStatus
	})
}

func (c *Client) call(ctx context.Context, method string, fields Params, succeeded func(Result) bool) (Result, error) {
	params := c.credentials.merge(fields)
	c.logger.Debug("bridge request",
		zap.String("method", method),
		zap.Any("params", map[string]any(Redact(params))),
	)

	start := time.Now()
	result, err := c.caller.Call(ctx, method, params)
	elapsed := time.Since(start)

	if err != nil {
		c.observe(method, classify(err), elapsed)
		c.logger.Debug("bridge call failed",
			zap.String("method", method),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("bridge response",
		zap.String("method", method),
		zap.Duration("elapsed", elapsed),
		zap.Any("result", map[string]any(result)),
	)

	if !succeeded(result) {
		c.observe(method, OutcomeUnsuccessful, elapsed)
		return result, ErrUnsuccessful
	}

	c.observe(method, OutcomeSuccess, elapsed)
	return result, nil
}

func (c *Client) observe(method, outcome string, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveCall(method, outcome, elapsed)
	}
}

func classify(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return OutcomeFault
	}
	return OutcomeTransport
}
