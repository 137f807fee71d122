package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			DataDir:           "./data",
			LogLevel:          "info",
			DefaultProvider:   "openai",
			RequestTimeoutSec: 120,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			CORSOrigins: []string{"*"},
		},
		Providers: map[string]ProviderConfig{
			"openai": {
				Enabled:      true,
				APIKey:       "${OPENAI_API_KEY}",
				DefaultModel: "gpt-4o-mini",
				Temperature:  0.7,
			},
			"claude": {
				Enabled:      false,
				APIKey:       "${ANTHROPIC_API_KEY}",
				DefaultModel: "claude-3-5-haiku-20241022",
				Temperature:  0.7,
			},
			"huggingface": {
				Enabled:      false,
				APIKey:       "${HUGGINGFACE_API_KEY}",
				DefaultModel: "mistralai/Mistral-7B-Instruct-v0.3",
				Temperature:  0.7,
			},
			"together": {
				Enabled:      false,
				APIBase:      "https://api.together.xyz/v1",
				APIKey:       "${TOGETHER_API_KEY}",
				DefaultModel: "meta-llama/Llama-3.3-70B-Instruct-Turbo",
				Temperature:  0.7,
			},
		},
		Memory: MemoryConfig{
			StoragePath:         "./data/conversations",
			MaxContextExchanges: 3,
		},
		Analytics: AnalyticsConfig{
			Enabled:     true,
			StoragePath: "./data/analytics",
		},
		Portfolio: PortfolioConfig{
			DataPath: "./data/portfolio.yaml",
		},
		VectorDB: VectorDBConfig{
			Enabled:            false,
			StoragePath:        "./data/vectorstore",
			EmbeddingsProvider: "openai",
			ChunkSize:          1000,
			ChunkOverlap:       200,
			SearchTopK:         3,
		},
		Agents: AgentsConfig{},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
