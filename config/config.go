package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// Config holds all configurable parameters for the board service. Board
// dimensions are intentionally absent — they come from the board-config
// text stream (package boardconfig), not from fixed gameplay constants.
type Config struct {
	WSPort               int    `json:"ws_port"`
	MaxNameLength        int    `json:"max_name_length"`
	ResetIntervalSec     int    `json:"reset_interval_sec"`
	KeepAliveIntervalSec int    `json:"keepalive_interval_sec"`
	BoardConfigPath      string `json:"board_config_path"`
	DatabaseURL          string `json:"database_url"`
	JWKSURL              string `json:"jwks_url"`
	JWTIssuer            string `json:"jwt_issuer"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		WSPort:               8080,
		MaxNameLength:        24,
		ResetIntervalSec:     300,
		KeepAliveIntervalSec: 30,
		BoardConfigPath:      "board.txt",
	}
}

// SimParams holds the delay jitter for one synthetic player profile in
// cmd/simplayers, the shape lifted directly from the teacher's
// AIParams (Name, DelayMinMS, DelayMaxMS): a synthetic player sleeps a
// random duration in [DelayMinMS, DelayMaxMS) between flips.
type SimParams struct {
	Name       string `json:"name"`
	DelayMinMS int    `json:"delay_min_ms"`
	DelayMaxMS int    `json:"delay_max_ms"`
}

// DefaultSimParams returns the jitter profile cmd/simplayers uses when
// no flag overrides it.
func DefaultSimParams() SimParams {
	return SimParams{Name: "default", DelayMinMS: 50, DelayMaxMS: 400}
}

// Load reads configuration from an optional config.json file, then
// applies environment variable overrides. Fields not set in either
// source retain their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.ResetIntervalSec, "RESET_INTERVAL_SEC")
	overrideInt(&cfg.KeepAliveIntervalSec, "KEEPALIVE_INTERVAL_SEC")
	overrideString(&cfg.BoardConfigPath, "BOARD_CONFIG_PATH")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.JWKSURL, "JWKS_URL")
	overrideString(&cfg.JWTIssuer, "JWT_ISSUER")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
