package notify

import (
	"context"

	"github.com/tazhibayda/authflow/internal/log"
	"go.uber.org/zap"
)

// LogSender prints messages instead of mailing them. Development only: it
// writes the code into the log.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, m Message) error {
	subject, _, err := Render(m)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info("[MAIL]",
		zap.String("to", m.To),
		zap.String("subject", subject),
		zap.String("otp", m.OTP),
	)
	return nil
}
