package command

import (
	"context"

	"github.com/purezhi/mcu/internal/action"
	"github.com/purezhi/mcu/internal/bridge"
	"github.com/purezhi/mcu/internal/params"
)

func (d *Dispatcher) listConferences(ctx context.Context, _ *action.Descriptor, _ params.Values) (bridge.Result, error) {
	return d.bridge.EnumerateConferences(ctx)
}

func (d *Dispatcher) createConference(ctx context.Context, desc *action.Descriptor, v params.Values) (bridge.Result, error) {
	name, err := v.Required("conferenceName")
	if err != nil {
		return nil, err
	}
	minDuration, err := v.Int("minDurationMinutes", intDefault(desc, "minDurationMinutes"))
	if err != nil {
		return nil, err
	}
	maxDuration, err := v.Int("maxDurationMinutes", intDefault(desc, "maxDurationMinutes"))
	if err != nil {
		return nil, err
	}

	return d.bridge.CreateConference(ctx, bridge.CreateConference{
		Name:               name,
		PIN:                v.String("mainPin", desc.Default("mainPin")),
		GuestPIN:           v.String("guestPin", desc.Default("guestPin")),
		MinDurationMinutes: minDuration,
		MaxDurationMinutes: maxDuration,
	})
}

func (d *Dispatcher) endConference(ctx context.Context, _ *action.Descriptor, v params.Values) (bridge.Result, error) {
	name, err := v.Required("conferenceName")
	if err != nil {
		return nil, err
	}
	return d.bridge.DestroyConference(ctx, name)
}

func (d *Dispatcher) changeLayout(ctx context.Context, _ *action.Descriptor, v params.Values) (bridge.Result, error) {
	name, err := v.Required("factoryConferenceId")
	if err != nil {
		return nil, err
	}
	enabled, err := v.Bool("customLayoutEnabled")
	if err != nil {
		return nil, err
	}
	forNew, err := v.Bool("newParticipantsCustomLayout")
	if err != nil {
		return nil, err
	}
	layout, err := v.Layout("customLayout")
	if err != nil {
		return nil, err
	}

	return d.bridge.ModifyConference(ctx, bridge.ModifyConference{
		ConferenceName:              name,
		CustomLayoutEnabled:         enabled,
		NewParticipantsCustomLayout: forNew,
		CustomLayout:                layout,
	})
}

func (d *Dispatcher) listParticipants(ctx context.Context, _ *action.Descriptor, v params.Values) (bridge.Result, error) {
	ids, err := v.CommaList("factoryConferenceIds")
	if err != nil {
		return nil, err
	}
	return d.bridge.EnumerateParticipants(ctx, ids)
}

func (d *Dispatcher) addParticipant(ctx context.Context, _ *action.Descriptor, v params.Values) (bridge.Result, error) {
	conference, err := v.Required("conferenceName")
	if err != nil {
		return nil, err
	}
	name, err := v.Required("participantName")
	if err != nil {
		return nil, err
	}
	address, err := v.Required("address")
	if err != nil {
		return nil, err
	}
	protocol, err := v.Protocol("participantProtocol")
	if err != nil {
		return nil, err
	}

	return d.bridge.AddParticipant(ctx, bridge.AddParticipant{
		ConferenceName:  conference,
		ParticipantName: name,
		Address:         address,
		Protocol:        protocol,
	})
}

func (d *Dispatcher) removeParticipant(ctx context.Context, _ *action.Descriptor, v params.Values) (bridge.Result, error) {
	p, err := bindParticipant(v)
	if err != nil {
		return nil, err
	}
	return d.bridge.DisconnectParticipant(ctx, p)
}

func (d *Dispatcher) muteAudio(ctx context.Context, _ *action.Descriptor, v params.Values) (bridge.Result, error) {
	p, err := bindParticipant(v)
	if err != nil {
		return nil, err
	}
	muted, err := v.Bool("audioRxMuted")
	if err != nil {
		return nil, err
	}
	return d.bridge.ModifyParticipant(ctx, bridge.ModifyParticipant{Participant: p, AudioRxMuted: &muted})
}

func (d *Dispatcher) muteVideo(ctx context.Context, _ *action.Descriptor, v params.Values) (bridge.Result, error) {
	p, err := bindParticipant(v)
	if err != nil {
		return nil, err
	}
	muted, err := v.Bool("videoRxMuted")
	if err != nil {
		return nil, err
	}
	return d.bridge.ModifyParticipant(ctx, bridge.ModifyParticipant{Participant: p, VideoRxMuted: &muted})
}

func (d *Dispatcher) renameParticipant(ctx context.Context, _ *action.Descriptor, v params.Values) (bridge.Result, error) {
	p, err := bindParticipant(v)
	if err != nil {
		return nil, err
	}
	override, err := v.Bool("displayNameOverrideStatus")
	if err != nil {
		return nil, err
	}
	displayName, err := v.Present("displayNameOverrideValue")
	if err != nil {
		return nil, err
	}
	return d.bridge.ModifyParticipant(ctx, bridge.ModifyParticipant{
		Participant:               p,
		DisplayNameOverrideStatus: &override,
		DisplayNameOverrideValue:  &displayName,
	})
}

func (d *Dispatcher) messageParticipant(ctx context.Context, _ *action.Descriptor, v params.Values) (bridge.Result, error) {
	p, err := bindParticipant(v)
	if err != nil {
		return nil, err
	}
	message, err := v.Required("message")
	if err != nil {
		return nil, err
	}
	return d.bridge.MessageParticipant(ctx, bridge.MessageParticipant{Participant: p, Message: message})
}

// bindParticipant reads the identification shared by pr, pa, pv, pn and ps.
func bindParticipant(v params.Values) (bridge.Participant, error) {
	conference, err := v.Required("conferenceName")
	if err != nil {
		return bridge.Participant{}, err
	}
	name, err := v.Required("participantName")
	if err != nil {
		return bridge.Participant{}, err
	}
	protocol, err := v.Protocol("participantProtocol")
	if err != nil {
		return bridge.Participant{}, err
	}
	participantType, err := v.ParticipantType("participantType")
	if err != nil {
		return bridge.Participant{}, err
	}
	return bridge.Participant{
		ConferenceName:  conference,
		ParticipantName: name,
		Protocol:        protocol,
		Type:            participantType,
	}, nil
}
