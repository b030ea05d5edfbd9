package server

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ironsheep/keypoint-density-mcp/internal/density"
)

// Environment variables read by LoadConfig.
const (
	EnvLogLevel  = "DENSITY_MCP_LOG_LEVEL"
	EnvMaxScale  = "DENSITY_MCP_MAX_SCALE"
	EnvMaxRadius = "DENSITY_MCP_MAX_RADIUS"
)

// Config holds server-wide settings. Tool calls may override Params per
// request.
type Config struct {
	// Version is reported to clients in the initialize response.
	Version string

	// Debug enables per-request logging to stderr.
	Debug bool

	// Params are the adaptive radius bounds used when a tool call does not
	// supply its own.
	Params density.Params
}

// DefaultConfig returns the configuration used when no environment
// variables are set: version "dev", debug off, max_scale 3.0,
// max_radius 15.0.
func DefaultConfig() Config {
	return Config{Version: "dev", Params: density.DefaultParams()}
}

// LoadConfig builds a Config from the environment, falling back to
// DefaultConfig for unset variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	cfg.Debug = os.Getenv(EnvLogLevel) == "debug"

	if v := os.Getenv(EnvMaxScale); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvMaxScale, err)
		}
		cfg.Params.MaxScale = f
	}
	if v := os.Getenv(EnvMaxRadius); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvMaxRadius, err)
		}
		cfg.Params.MaxRadius = f
	}

	if err := cfg.Params.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
