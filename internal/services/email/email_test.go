// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/config"
	"codeberg.org/oliverandrich/localeats/internal/i18n"
	"codeberg.org/oliverandrich/localeats/internal/services/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func init() {
	_ = i18n.Init()
}

type recordingTransport struct {
	sent []email.Message
}

func (r *recordingTransport) Send(_ context.Context, m email.Message) error {
	r.sent = append(r.sent, m)
	return nil
}

func validSMTPConfig() *config.SMTPConfig {
	return &config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "testuser",
		Password: "testpass",
		From:     "noreply@example.com",
		FromName: "LocalEats",
		TLS:      true,
	}
}

func englishCtx() context.Context {
	return i18n.WithLocale(context.Background(), language.English)
}

func TestURLs_TrailingSlashTrimmed(t *testing.T) {
	svc := email.NewService(&recordingTransport{}, "https://example.com/", 0, 0)

	assert.Equal(t, "https://example.com/users/verify-email/tok", svc.VerificationURL("tok"))
	assert.Equal(t, "https://example.com/users/reset-password/tok", svc.ResetURL("tok"))
}

func TestSendVerification(t *testing.T) {
	tr := &recordingTransport{}
	svc := email.NewService(tr, "https://example.com", 0, 0)

	err := svc.SendVerification(englishCtx(), "alice@example.com", "abc123")

	require.NoError(t, err)
	require.Len(t, tr.sent, 1)
	m := tr.sent[0]
	assert.Equal(t, "alice@example.com", m.To)
	assert.Equal(t, "[LocalEats] Verify your email", m.Subject)
	assert.Contains(t, m.Text, "https://example.com/users/verify-email/abc123")
	assert.Contains(t, m.Text, "within 24 hours")
	assert.Contains(t, m.HTML, `href="https://example.com/users/verify-email/abc123"`)
}

func TestSendPasswordReset(t *testing.T) {
	tr := &recordingTransport{}
	svc := email.NewService(tr, "https://example.com", 0, 0)

	err := svc.SendPasswordReset(englishCtx(), "alice@example.com", "xyz")

	require.NoError(t, err)
	require.Len(t, tr.sent, 1)
	m := tr.sent[0]
	assert.Equal(t, "[LocalEats] Reset your password", m.Subject)
	assert.Contains(t, m.Text, "https://example.com/users/reset-password/xyz")
	assert.Contains(t, m.Text, "valid for 1 hour:")
}

func TestSendPasswordReset_ConfiguredTTL(t *testing.T) {
	tr := &recordingTransport{}
	svc := email.NewService(tr, "https://example.com", 48*time.Hour, 30*time.Minute)

	require.NoError(t, svc.SendPasswordReset(englishCtx(), "alice@example.com", "xyz"))
	require.NoError(t, svc.SendVerification(englishCtx(), "alice@example.com", "abc"))

	assert.Contains(t, tr.sent[0].Text, "valid for 30 minutes:")
	assert.NotContains(t, tr.sent[0].Text, "1 hour")
	assert.Contains(t, tr.sent[1].Text, "within 48 hours")
}

func TestValidity(t *testing.T) {
	en := englishCtx()
	ko := i18n.WithLocale(context.Background(), language.Korean)

	tests := []struct {
		d      time.Duration
		en, ko string
	}{
		{time.Hour, "1 hour", "1시간"},
		{24 * time.Hour, "24 hours", "24시간"},
		{90 * time.Minute, "90 minutes", "90분"},
		{time.Minute, "1 minute", "1분"},
		{10 * time.Second, "1 minute", "1분"},
	}
	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			assert.Equal(t, tt.en, email.Validity(en, tt.d))
			assert.Equal(t, tt.ko, email.Validity(ko, tt.d))
		})
	}
}

func TestSendPasswordReset_Korean(t *testing.T) {
	tr := &recordingTransport{}
	svc := email.NewService(tr, "https://example.com", 0, 0)
	ctx := i18n.WithLocale(context.Background(), language.Korean)

	require.NoError(t, svc.SendPasswordReset(ctx, "alice@example.com", "xyz"))

	assert.Equal(t, "[LocalEats] 비밀번호 재설정", tr.sent[0].Subject)
	assert.Contains(t, tr.sent[0].Text, "1시간")
}

func TestNewSMTPTransport(t *testing.T) {
	tr, err := email.NewSMTPTransport(validSMTPConfig())

	require.NoError(t, err)
	assert.NotNil(t, tr)
}

func TestNewSMTPTransport_MissingHost(t *testing.T) {
	cfg := validSMTPConfig()
	cfg.Host = ""

	_, err := email.NewSMTPTransport(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP host is required")
}

func TestNewSMTPTransport_MissingFrom(t *testing.T) {
	cfg := validSMTPConfig()
	cfg.From = ""

	_, err := email.NewSMTPTransport(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP from address is required")
}

func TestNewTransport_FallsBackToLog(t *testing.T) {
	tr, err := email.NewTransport(&config.SMTPConfig{})

	require.NoError(t, err)
	assert.IsType(t, &email.LogTransport{}, tr)
}

func TestNewTransport_SMTP(t *testing.T) {
	tr, err := email.NewTransport(validSMTPConfig())

	require.NoError(t, err)
	assert.IsType(t, &email.SMTPTransport{}, tr)
}

func TestLogTransport(t *testing.T) {
	var buf bytes.Buffer
	tr := email.NewLogTransport(slog.New(slog.NewTextHandler(&buf, nil)))

	err := tr.Send(context.Background(), email.Message{To: "a@example.com", Subject: "Hi", Text: "link"})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "email_logged")
	assert.Contains(t, buf.String(), "a@example.com")
}
