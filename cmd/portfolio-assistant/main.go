package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/agent"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/analytics"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/config"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/domain"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/knowledge"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/memory"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/provider"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/server"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/service"
	"github.com/Santiagospinai7/portfolio-assistant-ai/internal/vectorstore"
)

var (
	version    = "1.0.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:     "portfolio-assistant",
		Short:   "AI assistant that answers questions about a personal portfolio",
		Long:    "portfolio-assistant serves an HTTP API and CLI chat backed by LLM providers,\nconversation memory and usage analytics.",
		Version: version,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.portfolio-assistant/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(chatCmd())
	root.AddCommand(analyticsCmd())
	root.AddCommand(configCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func loadConfig() *config.Config {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config not found, using defaults", "path", cfgPath, "err", err)
		cfg = config.Defaults()
	}
	configureLogger(cfg.General.LogLevel)
	return cfg
}

func configureLogger(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize config and data directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir := config.DefaultConfigDir()
			cfgPath := config.DefaultConfigPath()
			if err := os.MkdirAll(cfgDir, 0o755); err != nil {
				return err
			}
			cfg := config.Defaults()
			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			for _, dir := range []string{cfg.General.DataDir, cfg.Memory.StoragePath, cfg.Analytics.StoragePath} {
				if err := os.MkdirAll(config.ExpandPath(dir), 0o755); err != nil {
					return err
				}
			}
			dataPath := config.ExpandPath(cfg.Portfolio.DataPath)
			if _, err := os.Stat(dataPath); os.IsNotExist(err) {
				if err := knowledge.Save(dataPath, knowledge.Default()); err != nil {
					return err
				}
				logger.Info("wrote starter portfolio data", "path", dataPath)
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
}

// app holds the assembled application components.
type app struct {
	cfg     *config.Config
	store   *memory.Store
	tracker *analytics.Tracker
	queries *service.QueryService
	router  *agent.Router
}

// buildApp assembles the full pipeline from config. Vector store failures are
// logged and skipped so the assistant still answers from the flat portfolio.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	portfolio, err := knowledge.Load(config.ExpandPath(cfg.Portfolio.DataPath), logger)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	store, err := memory.NewStore(config.ExpandPath(cfg.Memory.StoragePath), logger)
	if err != nil {
		return nil, fmt.Errorf("memory store: %w", err)
	}

	tracker, err := analytics.NewTracker(config.ExpandPath(cfg.Analytics.StoragePath), logger)
	if err != nil {
		return nil, fmt.Errorf("analytics tracker: %w", err)
	}

	var vectors *vectorstore.Store
	if cfg.VectorDB.Enabled {
		embCfg := cfg.Providers[cfg.VectorDB.EmbeddingsProvider]
		vectors, err = vectorstore.New(vectorstore.Options{
			StoragePath:        config.ExpandPath(cfg.VectorDB.StoragePath),
			EmbeddingsProvider: cfg.VectorDB.EmbeddingsProvider,
			EmbeddingsModel:    cfg.VectorDB.EmbeddingsModel,
			EmbeddingsAPIKey:   embCfg.APIKey,
			EmbeddingsAPIBase:  embCfg.APIBase,
			ChunkSize:          cfg.VectorDB.ChunkSize,
			ChunkOverlap:       cfg.VectorDB.ChunkOverlap,
			TopK:               cfg.VectorDB.SearchTopK,
		}, logger)
		if err != nil {
			logger.Error("vector store unavailable, continuing without semantic search", "err", err)
			vectors = nil
		} else if vectors.Count() == 0 {
			if err := vectors.IndexDocument(ctx, portfolio.FormatContext(), cfg.VectorDB.ChunkSize, cfg.VectorDB.ChunkOverlap); err != nil {
				logger.Error("cannot index portfolio, continuing without semantic search", "err", err)
				vectors = nil
			}
		}
	}

	if !cfg.Analytics.Enabled {
		tracker.Disable()
	}

	factory := provider.NewFactory(cfg, logger)
	prov, err := factory.FailoverChain()
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}
	if err := prov.Healthy(ctx); err != nil {
		logger.Warn("provider unhealthy at startup", "provider", prov.Name(), "err", err)
	}

	// Agent profiles can pin a role to its own provider, replace its prompt,
	// and extend the routing keywords.
	roleProviders := make(map[string]domain.Provider)
	overrides := make(map[string]string)
	var extraKeywords []string
	for role, profile := range cfg.Agents.Profiles {
		if profile.Provider != "" {
			p, err := factory.Get(profile.Provider)
			if err != nil {
				logger.Warn("agent profile provider unavailable", "role", role, "provider", profile.Provider, "err", err)
			} else {
				roleProviders[role] = p
			}
		}
		if profile.SystemPrompt != "" {
			overrides[role] = profile.SystemPrompt
		}
		extraKeywords = append(extraKeywords, profile.Keywords...)
	}

	crew := agent.NewCrew(agent.CrewConfig{
		Provider:          prov,
		RoleProviders:     roleProviders,
		Portfolio:         portfolio,
		Vectors:           vectors,
		SystemPromptExtra: cfg.Agents.SystemPromptExtra,
		PromptOverrides:   overrides,
		Temperature:       cfg.Providers[cfg.General.DefaultProvider].Temperature,
		HistoryExchanges:  cfg.Memory.MaxContextExchanges,
		Logger:            logger,
	})

	queries := service.NewQueryService(store, crew, tracker, logger)

	return &app{
		cfg:     cfg,
		store:   store,
		tracker: tracker,
		queries: queries,
		router:  agent.NewRouter(extraKeywords),
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg)
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				Server:         cfg.Server,
				Queries:        a.queries,
				Memory:         a.store,
				Tracker:        a.tracker,
				DisableMetrics: !cfg.Metrics.Enabled,
				Logger:         logger,
			})
			return srv.Start(ctx)
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat with the portfolio assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg)
			if err != nil {
				return err
			}
			// Interactive sessions carry no project flags, so keyword
			// routing picks the specialist for project questions.
			a.queries.WithRouter(a.router)

			fmt.Println("Portfolio assistant ready. Type a question, or 'exit' to quit.")
			scanner := bufio.NewScanner(os.Stdin)
			var conversationID string
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				resp, err := a.queries.Process(ctx, service.QueryRequest{
					Query:          line,
					ConversationID: conversationID,
				})
				if err != nil {
					fmt.Fprintln(os.Stderr, "error:", err)
					continue
				}
				conversationID = resp.ConversationID
				fmt.Printf("\n%s\n\n(%s, %.2fs)\n", resp.Response, resp.AgentUsed, resp.ProcessingTime)
			}
		},
	}
}

func analyticsCmd() *cobra.Command {
	var popular int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show usage analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			tracker, err := analytics.NewTracker(config.ExpandPath(cfg.Analytics.StoragePath), logger)
			if err != nil {
				return err
			}

			sum := tracker.GetSummary()
			data, _ := json.MarshalIndent(sum, "", "  ")
			fmt.Println(string(data))

			if popular > 0 {
				top := tracker.GetPopularQueries(popular)
				fmt.Println("\nMost frequent queries:")
				for i, qc := range top {
					fmt.Printf("%2d. %s (%d)\n", i+1, qc.Query, qc.Count)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&popular, "popular", 0, "also show the N most frequent queries")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective config with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			sanitized := config.Sanitize(loadConfig())
			data, _ := json.MarshalIndent(sanitized, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(resolveConfigPath())
		},
	})

	return cmd
}
