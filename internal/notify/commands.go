package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-inventory/internal/device"
	"github.com/nerrad567/gray-logic-inventory/internal/infrastructure/mqtt"
)

// commandTimeout bounds a single power command.
const commandTimeout = 5 * time.Second

// PowerController switches devices on and off. *device.Registry implements it.
type PowerController interface {
	TurnOn(ctx context.Context, id string) (device.Outcome, error)
	TurnOff(ctx context.Context, id string) device.Outcome
}

// CommandHandler returns an MQTT handler for {prefix}/command/{id}/{on|off}.
// The payload is ignored. Unknown devices and refused power-ons are returned
// as errors so the client logs them; the registry reports them as usual.
func CommandHandler(ctrl PowerController, topics mqtt.Topics) mqtt.MessageHandler {
	return func(topic string, _ []byte) error {
		id, action, ok := topics.ParseCommand(topic)
		if !ok {
			return fmt.Errorf("unrecognised command topic %q", topic)
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		var (
			outcome device.Outcome
			err     error
		)
		switch action {
		case mqtt.ActionOn:
			outcome, err = ctrl.TurnOn(ctx, id)
		default:
			outcome = ctrl.TurnOff(ctx, id)
		}

		switch {
		case err != nil:
			return fmt.Errorf("turning %s %s: %w", id, action, err)
		case outcome == device.OutcomeNotFound:
			return fmt.Errorf("turning %s %s: %w", id, action, device.ErrDeviceNotFound)
		}
		return nil
	}
}
