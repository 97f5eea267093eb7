package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/calcpay/server/internal/logging"
)

// LogNotifier writes messages to the log instead of delivering them. Used in
// development when no SMTP host is configured, mirroring how the product was
// originally tested against a disposable mail account.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notify")}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, body string) (string, error) {
	msgID := uuid.NewString()
	n.logger.Info(ctx, "email not sent (log-only notifier)",
		"message_id", msgID, "to", to, "subject", subject, "body", body)
	return msgID, nil
}
