package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestCriticalLevelName(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Attrs: []any{"service", "colors-app"}})

	log.Critical("app: init failed", "component", "db")

	entry := decode(t, &buf)
	assert.Equal(t, "CRITICAL", entry["level"])
	assert.Equal(t, "db", entry["component"])
	assert.Equal(t, "colors-app", entry["service"])
}

func TestBusinessErrorIgnoresNil(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: slog.LevelDebug, Format: "text"})

	log.BusinessError("groups.get: not found", nil)
	assert.Zero(t, buf.Len())

	log.BusinessError("groups.get: not found", errors.New("group not found"), "group_id", "g-1")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "error_kind=business")
	assert.Contains(t, buf.String(), "group_id=g-1")
}

func TestInternalErrorKind(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{}).With("component", "nudge")

	log.InternalError("nudges.dispatch: send failed", errors.New("timeout"), "user_id", "u1")

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, KindInternal, entry["error_kind"])
	assert.Equal(t, "timeout", entry["err"])
	assert.Equal(t, "nudge", entry["component"])
	assert.Equal(t, "u1", entry["user_id"])
}

func TestPhoneAttributesAreMasked(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{})

	log.Info("support.compose: drafted", "recipient_phone", "+15550002222", "phone", "12", "user_id", "u1")

	entry := decode(t, &buf)
	assert.Equal(t, "+*********22", entry["recipient_phone"])
	assert.Equal(t, "**", entry["phone"])
	assert.Equal(t, "u1", entry["user_id"])
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: slog.LevelWarn, Format: "text"})

	log.Info("dropped")
	assert.Zero(t, buf.Len())
	log.Warn("kept")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestLevelFromEnv(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, levelFromEnv("", "development"))
	assert.Equal(t, slog.LevelInfo, levelFromEnv("", "production"))
	assert.Equal(t, slog.LevelWarn, levelFromEnv(" WARNING ", "production"))
	assert.Equal(t, slog.LevelError, levelFromEnv("Error", "production"))
	assert.Equal(t, LevelCritical, levelFromEnv("fatal", "production"))
	assert.Equal(t, slog.LevelInfo, levelFromEnv("bogus", "production"))
	assert.Equal(t, slog.LevelDebug, levelFromEnv("bogus", "development"))
}

func TestFormatFromEnvDefaultsToJSON(t *testing.T) {
	assert.Equal(t, "json", formatFromEnv(""))
	assert.Equal(t, "json", formatFromEnv("yaml"))
	assert.Equal(t, "text", formatFromEnv(" TEXT "))
}

func TestDiscardDropsEverything(t *testing.T) {
	assert.NotPanics(t, func() {
		log := Discard().With("component", "test")
		log.Critical("ignored")
		log.InternalError("ignored", errors.New("boom"))
	})
}
