// Package notify delivers outbound account email: verification codes and
// password-reset links. Delivery is best effort; callers must never treat a
// send failure as a reason to roll back an account mutation that already
// persisted.
package notify

import "context"

// Notifier sends a message to an address and returns a delivery handle
// identifying the message.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}
