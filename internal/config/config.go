package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for the portfolio assistant.
type Config struct {
	General   GeneralConfig             `json:"general"`
	Server    ServerConfig              `json:"server"`
	Providers map[string]ProviderConfig `json:"providers"`
	Memory    MemoryConfig              `json:"memory"`
	Analytics AnalyticsConfig           `json:"analytics"`
	Portfolio PortfolioConfig           `json:"portfolio"`
	VectorDB  VectorDBConfig            `json:"vectorStore"`
	Agents    AgentsConfig              `json:"agents"`
	Metrics   MetricsConfig             `json:"metrics"`
}

type GeneralConfig struct {
	DataDir           string   `json:"dataDir"`
	LogLevel          string   `json:"logLevel"`
	DefaultProvider   string   `json:"defaultProvider"`
	FailoverChain     []string `json:"failoverChain,omitempty"` // provider failover order
	RequestTimeoutSec int      `json:"requestTimeoutSeconds"`   // bound on one orchestration call
}

type ServerConfig struct {
	Host          string   `json:"host"`
	Port          int      `json:"port"`
	CORSOrigins   []string `json:"corsOrigins"`
	RequireAPIKey bool     `json:"requireApiKey"`
	APIKey        string   `json:"apiKey,omitempty"`
}

type ProviderConfig struct {
	Enabled      bool    `json:"enabled"`
	APIBase      string  `json:"apiBase,omitempty"`
	APIKey       string  `json:"apiKey,omitempty"`
	DefaultModel string  `json:"defaultModel,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

type MemoryConfig struct {
	StoragePath         string `json:"storagePath"`
	MaxContextExchanges int    `json:"maxContextExchanges"` // exchanges folded into the prompt
}

type AnalyticsConfig struct {
	Enabled     bool   `json:"enabled"`
	StoragePath string `json:"storagePath"`
}

type PortfolioConfig struct {
	DataPath string `json:"dataPath"` // YAML file; empty = built-in data
}

// VectorDBConfig configures the optional similarity-search index.
// Initialization failure is never fatal to the request path.
type VectorDBConfig struct {
	Enabled            bool   `json:"enabled"`
	StoragePath        string `json:"storagePath"`
	EmbeddingsProvider string `json:"embeddingsProvider"` // openai | huggingface
	EmbeddingsModel    string `json:"embeddingsModel,omitempty"`
	ChunkSize          int    `json:"chunkSize"`
	ChunkOverlap       int    `json:"chunkOverlap"`
	SearchTopK         int    `json:"searchTopK"`
}

// AgentsConfig configures the role-specialized agents.
type AgentsConfig struct {
	SystemPromptExtra string                  `json:"systemPromptExtra,omitempty"`
	Profiles          map[string]AgentProfile `json:"profiles,omitempty"`
}

// AgentProfile overrides prompt/provider/keywords for one agent role.
type AgentProfile struct {
	SystemPrompt string   `json:"systemPrompt,omitempty"`
	Provider     string   `json:"provider,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

type MetricsConfig struct {
	Enabled bool `json:"enabled"`
}

// DefaultConfigDir returns the default config directory (~/.portfolio-assistant).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portfolio-assistant"
	}
	return filepath.Join(home, ".portfolio-assistant")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.DataDir = expandPath(cfg.General.DataDir)
	cfg.Memory.StoragePath = expandPath(cfg.Memory.StoragePath)
	cfg.Analytics.StoragePath = expandPath(cfg.Analytics.StoragePath)
	cfg.VectorDB.StoragePath = expandPath(cfg.VectorDB.StoragePath)
	cfg.Portfolio.DataPath = expandPath(cfg.Portfolio.DataPath)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	return nil
}

func Validate(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0-65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.RequireAPIKey && cfg.Server.APIKey == "" {
		return fmt.Errorf("server.requireApiKey is set but server.apiKey is empty")
	}
	if cfg.General.RequestTimeoutSec < 0 {
		return fmt.Errorf("general.requestTimeoutSeconds must be >= 0, got %d", cfg.General.RequestTimeoutSec)
	}
	if cfg.General.DefaultProvider != "" {
		if _, ok := cfg.Providers[cfg.General.DefaultProvider]; !ok {
			return fmt.Errorf("general.defaultProvider %q has no providers entry", cfg.General.DefaultProvider)
		}
	}
	for _, name := range cfg.General.FailoverChain {
		if _, ok := cfg.Providers[name]; !ok {
			return fmt.Errorf("failoverChain references unknown provider %q", name)
		}
	}
	switch cfg.VectorDB.EmbeddingsProvider {
	case "", "openai", "huggingface":
	default:
		return fmt.Errorf("vectorStore.embeddingsProvider must be openai or huggingface, got %q", cfg.VectorDB.EmbeddingsProvider)
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	return expandPath(path)
}
