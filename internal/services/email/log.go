// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"log/slog"
)

// LogTransport writes messages to the log instead of sending them.
// Used in development when no SMTP server is configured.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport creates a transport logging to logger.
func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(ctx context.Context, m Message) error {
	t.logger.InfoContext(ctx, "email_logged",
		"to", m.To,
		"subject", m.Subject,
		"body", m.Text,
	)
	return nil
}
