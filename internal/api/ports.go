package api

import (
	"context"

	"github.com/purezhi/mcu/internal/action"
	"github.com/purezhi/mcu/internal/command"
	"github.com/purezhi/mcu/internal/params"
)

// DispatcherPort is the minimal interface the API needs from the dispatcher.
type DispatcherPort interface {
	Dispatch(ctx context.Context, desc *action.Descriptor, v params.Values) (command.Payload, error)
}

// Compile-time assertion that command.Dispatcher implements DispatcherPort
var _ DispatcherPort = (*command.Dispatcher)(nil)
