package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
	"github.com/dmitrijs2005/profilekeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	SessionDB      string         `json:"session_db"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with the file named by -c / -config. Keys absent
// from the file keep their current values.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	jc := JsonConfig{
		ServerURL:      cfg.ServerURL,
		SessionDB:      cfg.SessionDB,
		RequestTimeout: timex.Duration{Duration: cfg.RequestTimeout},
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.SessionDB = jc.SessionDB
	cfg.RequestTimeout = jc.RequestTimeout.Duration
	return nil
}
