//go:build !integration

package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	original := log.Logger
	level := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = original
		zerolog.SetGlobalLevel(level)
	})

	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", false)
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestInitWithWriter(t *testing.T) {
	buf := captureGlobal(t)

	l := Logger()
	l.Info().Str("quote_id", "Q1").Msg("Configuration session started")

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.Contains(t, buf.String(), `"service":"quote-configurator"`)
	assert.Contains(t, buf.String(), `"quote_id":"Q1"`)
}

func TestInitWithWriter_Pretty(t *testing.T) {
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })

	var buf bytes.Buffer
	InitWithWriter(&buf, "info", true)
	l := Logger()
	l.Info().Msg("Annex downloaded")

	assert.Contains(t, buf.String(), "Annex downloaded")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestCtx(t *testing.T) {
	buf := captureGlobal(t)

	ctx := WithRequestID(context.Background(), "req-9")
	Ctx(ctx).Warn().Msg("Dropping option line with unresolved parent")
	Ctx(context.Background()).Info().Msg("no request")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if assert.Len(t, lines, 2) {
		assert.Contains(t, string(lines[0]), `"request_id":"req-9"`)
		assert.NotContains(t, string(lines[1]), "request_id")
	}
}

func TestComponent(t *testing.T) {
	buf := captureGlobal(t)

	l := Component(WithRequestID(context.Background(), "req-3"), "annex")
	l.Info().Msg("collected")

	assert.Contains(t, buf.String(), `"component":"annex"`)
	assert.Contains(t, buf.String(), `"request_id":"req-3"`)
	assert.Contains(t, buf.String(), `"message":"collected"`)
}
