package config

import (
	"fmt"
	"os"
)

func Template() string {
	return engineTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(engineTemplate), 0o600)
}

const engineTemplate = `device_name = "handover.local"
radio_address = "00:11:22:33:44:55"
radio_enabled = false
enable_setting = "bluetooth.enabled"
# "0s" waits for a select reply indefinitely
reply_timeout = "30s"
collision_seed = 0

[log]
level = "info"

[metrics]
enabled = true
`
