package slogcustom

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandler(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	log := slog.New(NewCustomHandler(&buf, slog.LevelInfo))

	log.Debug("hidden")
	log.With(slog.String("attempt", "a1")).WithGroup("quiz").Info("finished", slog.Int("score", 67))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO: finished attempt=a1 quiz.score=67")
}

func TestCustomHandler_LevelVar(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	level := &slog.LevelVar{}
	level.Set(slog.LevelWarn)

	log := slog.New(NewCustomHandler(&buf, level))
	log.Info("quiet")
	assert.Empty(t, buf.String())

	level.Set(slog.LevelDebug)
	log.Debug("loud", slog.Group("doc", slog.Int("pages", 5)))
	assert.Contains(t, buf.String(), "DEBUG: loud doc.pages=5")
}
