package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"server": map[string]interface{}{
			"bind": "127.0.0.1",
			"port": 38400,
		},
		"database": map[string]interface{}{
			"path": "", // resolved at runtime via store.DefaultDBPath()
		},
		"clock": map[string]interface{}{
			// One tick per minute, matching the evaluator's resolution.
			"interval_seconds": 60,
		},
		"notify": map[string]interface{}{
			"feed_size": 50,
			"telegram": map[string]interface{}{
				"bot_token": "",
				"chat_id":   "",
			},
			"sound": map[string]interface{}{
				"command": "",
				"file":    "",
			},
			"haptic": map[string]interface{}{
				"command": "",
				"args":    []string{},
			},
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}
