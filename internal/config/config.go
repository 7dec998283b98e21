package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backend classifies where the inference endpoint lives.
type Backend int

const (
	// BackendLocal is a loopback endpoint managed by the orchestrator itself.
	BackendLocal Backend = iota
	// BackendRemote is an operator-supplied endpoint assumed already provisioned.
	BackendRemote
)

func (b Backend) String() string {
	if b == BackendLocal {
		return "local"
	}
	return "remote"
}

// Config holds the resolved run configuration. It is built once at process
// start (defaults, then optional config file, then environment, then flags)
// and never re-read from the ambient environment afterwards.
type Config struct {
	OllamaURL       string `json:"ollama_url" yaml:"ollama_url" toml:"ollama_url" env:"OLLAMA_URL"`
	Model           string `json:"model" yaml:"model" toml:"model" env:"MODEL"`
	VenvDir         string `json:"venv_dir" yaml:"venv_dir" toml:"venv_dir" env:"DORMCTL_VENV"`
	DBPath          string `json:"db_path" yaml:"db_path" toml:"db_path" env:"DORMCTL_DB"`
	Python          string `json:"python" yaml:"python" toml:"python" env:"DORMCTL_PYTHON"`
	ServerScript    string `json:"server_script" yaml:"server_script" toml:"server_script" env:"DORMCTL_SERVER_SCRIPT"`
	AppScript       string `json:"app_script" yaml:"app_script" toml:"app_script" env:"DORMCTL_APP_SCRIPT"`
	MCPPort         int    `json:"mcp_port" yaml:"mcp_port" toml:"mcp_port" env:"DORMCTL_MCP_PORT"`
	ReadyTimeoutSec int    `json:"ready_timeout_sec" yaml:"ready_timeout_sec" toml:"ready_timeout_sec" env:"DORMCTL_READY_TIMEOUT_SEC"`
	SettleDelaySec  int    `json:"settle_delay_sec" yaml:"settle_delay_sec" toml:"settle_delay_sec" env:"DORMCTL_SETTLE_DELAY_SEC"`
	LogLevel        string `json:"log_level" yaml:"log_level" toml:"log_level" env:"DORMCTL_LOG_LEVEL"`
}

// Default returns the documented defaults: a loopback Ollama endpoint on its
// standard port and the llama3.1 model.
func Default() Config {
	return Config{
		OllamaURL:       "http://localhost:11434",
		Model:           "llama3.1",
		VenvDir:         ".venv",
		DBPath:          "dormitory.db",
		Python:          "python3",
		ServerScript:    "dorm_mcp_server.py",
		AppScript:       "dorm_rag_system.py",
		MCPPort:         3000,
		ReadyTimeoutSec: 30,
		SettleDelaySec:  3,
		LogLevel:        "info",
	}
}

// ReadyTimeout is how long the readiness poll waits for the local service.
func (c Config) ReadyTimeout() time.Duration { return time.Duration(c.ReadyTimeoutSec) * time.Second }

// SettleDelay is the pause kept after the service first answers its version
// probe, before the model inventory is consulted.
func (c Config) SettleDelay() time.Duration { return time.Duration(c.SettleDelaySec) * time.Second }

// ApplyEnv overlays operator environment variables onto c. Unset variables
// leave the existing values untouched.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Merge overlays non-zero fields of o onto c. Used to apply a config file on
// top of defaults before the environment pass.
func (c *Config) Merge(o Config) {
	if o.OllamaURL != "" {
		c.OllamaURL = o.OllamaURL
	}
	if o.Model != "" {
		c.Model = o.Model
	}
	if o.VenvDir != "" {
		c.VenvDir = o.VenvDir
	}
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.Python != "" {
		c.Python = o.Python
	}
	if o.ServerScript != "" {
		c.ServerScript = o.ServerScript
	}
	if o.AppScript != "" {
		c.AppScript = o.AppScript
	}
	if o.MCPPort != 0 {
		c.MCPPort = o.MCPPort
	}
	if o.ReadyTimeoutSec != 0 {
		c.ReadyTimeoutSec = o.ReadyTimeoutSec
	}
	if o.SettleDelaySec != 0 {
		c.SettleDelaySec = o.SettleDelaySec
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
}

// Backend classifies the endpoint: a loopback host means the local service is
// ours to install and start, anything else is an operator-managed remote.
func (c Config) Backend() Backend {
	u, err := url.Parse(c.OllamaURL)
	if err != nil {
		return BackendRemote
	}
	host := u.Hostname()
	if host == "" {
		return BackendRemote
	}
	if strings.EqualFold(host, "localhost") {
		return BackendLocal
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return BackendLocal
	}
	return BackendRemote
}

// Validate rejects configurations no step could act on.
func (c Config) Validate() error {
	if c.OllamaURL == "" {
		return fmt.Errorf("ollama_url must not be empty")
	}
	if _, err := url.Parse(c.OllamaURL); err != nil {
		return fmt.Errorf("ollama_url: %w", err)
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.ReadyTimeoutSec <= 0 {
		return fmt.Errorf("ready_timeout_sec must be positive")
	}
	return nil
}
