package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyHandlerMasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.With("session_token", "abc123").Info("login", "user_id", 7, "Authorization", "Bearer abc123")

	out := buf.String()
	assert.Contains(t, out, "login")
	assert.Contains(t, out, "=7")
	assert.NotContains(t, out, "abc123")
	assert.Contains(t, out, masked)
}

func TestPrettyHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
