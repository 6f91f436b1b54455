package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/config"
)

func TestRenderResetEmail(t *testing.T) {
	html, err := RenderResetEmail("Ann", "http://localhost:3000/reset-password?token=abc.def", 5*time.Minute)
	require.NoError(t, err)

	assert.Contains(t, html, "Hello, Ann!")
	assert.Contains(t, html, `href="http://localhost:3000/reset-password?token=abc.def"`)
	assert.Contains(t, html, "valid for 5 minutes")
}

func TestRenderResetEmailEscapesName(t *testing.T) {
	html, err := RenderResetEmail("<script>", "http://x", time.Hour)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "1 hour")
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Send(context.Background(), Message{To: "a@example.com"}))
	assert.Len(t, r.Sent(), 1)

	r.Err = errors.New("down")
	assert.Error(t, r.Send(context.Background(), Message{To: "b@example.com"}))
	assert.Len(t, r.Sent(), 1)
}

func TestSMTPSenderRejectsBadRecipient(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "localhost", Port: 2525, From: "noreply@example.com"}, zap.NewNop())
	err := s.Send(context.Background(), Message{To: "not an address", Subject: "x", HTML: "<p>x</p>"})
	assert.ErrorContains(t, err, "invalid recipient")
}
