package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the frame runner.
// Zero values mean "unspecified" and are replaced by defaults in main.
type Config struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr" env:"HALO_ADDR"`
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level" env:"HALO_LOG_LEVEL"`

	FrameRate     float64 `json:"frame_rate" yaml:"frame_rate" toml:"frame_rate" env:"HALO_FRAME_RATE"`
	TimeScale     float64 `json:"time_scale" yaml:"time_scale" toml:"time_scale" env:"HALO_TIME_SCALE"`
	MaxFrames     int     `json:"max_frames" yaml:"max_frames" toml:"max_frames" env:"HALO_MAX_FRAMES"`
	Policy        string  `json:"policy" yaml:"policy" toml:"policy" env:"HALO_POLICY"`
	PreloadBudget int     `json:"preload_budget" yaml:"preload_budget" toml:"preload_budget" env:"HALO_PRELOAD_BUDGET"`
	ReleaseBudget int     `json:"release_budget" yaml:"release_budget" toml:"release_budget" env:"HALO_RELEASE_BUDGET"`

	AssetsDir         string   `json:"assets_dir" yaml:"assets_dir" toml:"assets_dir" env:"HALO_ASSETS_DIR"`
	AssetsExts        []string `json:"assets_exts" yaml:"assets_exts" toml:"assets_exts" env:"HALO_ASSETS_EXTS" envSeparator:","`
	AssetsPerFrame    int      `json:"assets_per_frame" yaml:"assets_per_frame" toml:"assets_per_frame" env:"HALO_ASSETS_PER_FRAME"`
	AssetsXORKey      string   `json:"assets_xor_key" yaml:"assets_xor_key" toml:"assets_xor_key" env:"HALO_ASSETS_XOR_KEY"`
	AssetsAESPassword string   `json:"assets_aes_password" yaml:"assets_aes_password" toml:"assets_aes_password" env:"HALO_ASSETS_AES_PASSWORD"`
	AssetsAESIV       string   `json:"assets_aes_iv" yaml:"assets_aes_iv" toml:"assets_aes_iv" env:"HALO_ASSETS_AES_IV"`

	RemoteURL       string `json:"remote_url" yaml:"remote_url" toml:"remote_url" env:"HALO_REMOTE_URL"`
	RemoteTimeoutMS int    `json:"remote_timeout_ms" yaml:"remote_timeout_ms" toml:"remote_timeout_ms" env:"HALO_REMOTE_TIMEOUT_MS"`

	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" env:"HALO_CORS_ORIGINS" envSeparator:","`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyEnv overlays HALO_* environment variables onto cfg. Unset variables
// leave the corresponding field untouched.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
