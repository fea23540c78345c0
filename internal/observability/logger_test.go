package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestEngineLoggerTagsDevice(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	logger := EngineLogger("phone", "AA:BB:CC:DD:EE:FF")
	logger.Info().Msg("ready")

	out := buf.String()
	if !strings.Contains(out, `"device":"phone"`) || !strings.Contains(out, `"radio":"AA:BB:CC:DD:EE:FF"`) {
		t.Fatalf("missing engine fields: %s", out)
	}
}
