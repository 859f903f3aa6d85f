package mailer

import (
	"context"
	"testing"

	"github.com/staplewise/marketplace-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewPicksBackend(t *testing.T) {
	assert.IsType(t, &LogMailer{}, New(config.MailConfig{}, zap.NewNop()))
	assert.IsType(t, &SMTPMailer{}, New(config.MailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587}, zap.NewNop()))
}

func TestLogMailerLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := New(config.MailConfig{}, zap.New(core))

	require.NoError(t, m.Send(context.Background(), Message{To: "a@example.com", Subject: "Reset"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "a@example.com", logs.All()[0].ContextMap()["to"])
}

func TestSMTPMailerRequiresRecipient(t *testing.T) {
	m := New(config.MailConfig{SMTPHost: "127.0.0.1", SMTPPort: 1}, zap.NewNop())
	assert.Error(t, m.Send(context.Background(), Message{Subject: "x"}))
}
