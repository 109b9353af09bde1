// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/i18n"
)

// Message is a transactional email. HTML is optional.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Transport delivers a single message. Implementations make one attempt.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Default link lifetimes announced when none are configured.
const (
	DefaultVerificationTTL = 24 * time.Hour
	DefaultResetTTL        = time.Hour
)

// Service renders account emails and hands them to a Transport.
type Service struct {
	transport       Transport
	baseURL         string
	verificationTTL time.Duration
	resetTTL        time.Duration
}

// NewService creates a new email service. The TTLs are the link lifetimes
// quoted in the mails; zero means the default.
func NewService(transport Transport, baseURL string, verificationTTL, resetTTL time.Duration) *Service {
	if verificationTTL <= 0 {
		verificationTTL = DefaultVerificationTTL
	}
	if resetTTL <= 0 {
		resetTTL = DefaultResetTTL
	}
	return &Service{
		transport:       transport,
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		verificationTTL: verificationTTL,
		resetTTL:        resetTTL,
	}
}

// VerificationURL returns the signup verification link for token.
func (s *Service) VerificationURL(token string) string {
	return fmt.Sprintf("%s/users/verify-email/%s", s.baseURL, token)
}

// ResetURL returns the password reset link for token.
func (s *Service) ResetURL(token string) string {
	return fmt.Sprintf("%s/users/reset-password/%s", s.baseURL, token)
}

// SendVerification sends a verification email with the given token.
func (s *Service) SendVerification(ctx context.Context, toEmail, token string) error {
	verifyURL := s.VerificationURL(token)
	data := map[string]any{"VerifyURL": verifyURL, "Validity": Validity(ctx, s.verificationTTL)}

	return s.transport.Send(ctx, Message{
		To:      toEmail,
		Subject: i18n.T(ctx, "email_verification_subject"),
		Text:    i18n.TData(ctx, "email_verification_body", data),
		HTML: fmt.Sprintf(`<a href="%s">%s</a>`,
			html.EscapeString(verifyURL), html.EscapeString(i18n.T(ctx, "email_verification_link"))),
	})
}

// SendPasswordReset sends a reset email with the given token and its expiry notice.
func (s *Service) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	return s.transport.Send(ctx, Message{
		To:      toEmail,
		Subject: i18n.T(ctx, "email_reset_subject"),
		Text: i18n.TData(ctx, "email_reset_body", map[string]any{
			"ResetURL": s.ResetURL(token),
			"Validity": Validity(ctx, s.resetTTL),
		}),
	})
}

// Validity renders a link lifetime in whole hours when possible, otherwise
// in minutes rounded up.
func Validity(ctx context.Context, d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return i18n.TPlural(ctx, "duration_hours", int(d/time.Hour))
	}
	return i18n.TPlural(ctx, "duration_minutes", max(1, int(math.Ceil(d.Minutes()))))
}
