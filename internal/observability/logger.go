package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EngineLogger derives a logger for one engine instance from the global
// logger, tagging every event with the device name and radio address.
func EngineLogger(device, address string) zerolog.Logger {
	return log.Logger.With().
		Str("device", device).
		Str("radio", address).
		Logger()
}
