package config

import (
	"github.com/danmuck/handover/internal/orchestrator"
)

// OrchestratorConfig maps the engine settings the orchestrator consumes.
func OrchestratorConfig(c EngineConfig) orchestrator.Config {
	return orchestrator.Config{
		EnableSetting: c.EnableSetting,
		ReplyTimeout:  c.ReplyTimeout,
		CollisionSeed: c.CollisionSeed,
		Metrics:       c.MetricsEnabled,
	}
}
