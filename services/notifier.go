package services

import (
	"context"
	"log/slog"
)

// Notifier delivers a plain-text email. utils.SESMailer implements it.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// notify sends best-effort; a failed email never fails the request.
func notify(ctx context.Context, n Notifier, to, subject, body string) {
	if n == nil || to == "" {
		return
	}
	if err := n.Send(ctx, to, subject, body); err != nil {
		slog.Warn("notification email failed", "to", to, "subject", subject, "err", err)
	}
}
