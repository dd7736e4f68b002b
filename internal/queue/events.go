package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tazhibayda/authflow/internal/notify"
)

// BindKey matches every notification routing key.
const BindKey = "notification.*"

func RoutingKey(k notify.Kind) string { return "notification." + string(k) }

func DecodeNotification(body []byte) (notify.Message, error) {
	var m notify.Message
	if err := json.Unmarshal(body, &m); err != nil {
		return m, fmt.Errorf("decode notification: %w", err)
	}
	if m.Kind == "" || m.To == "" {
		return m, fmt.Errorf("decode notification: missing kind or recipient")
	}
	return m, nil
}

// DeliverTo returns a consumer handler that decodes each delivery and hands
// it to s. Malformed bodies and messages the sender reports as
// notify.ErrUndeliverable come back as ErrPoison.
func DeliverTo(s notify.Sender) Handler {
	return func(ctx context.Context, body []byte) error {
		m, err := DecodeNotification(body)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPoison, err)
		}
		if err := s.Send(ctx, m); err != nil {
			if errors.Is(err, notify.ErrUndeliverable) {
				return fmt.Errorf("%w: %v", ErrPoison, err)
			}
			return err
		}
		return nil
	}
}
