package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"blogsmith/internal/config"
	"blogsmith/internal/llm"
	"blogsmith/internal/pipeline"
	"blogsmith/internal/store"
	"blogsmith/internal/trendsource"
)

var cfgFile string

// NewRootCmd creates the base command and wires all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blogsmith",
		Short: "Blogsmith generates and publishes blog posts from trending search topics",
		Long: `Blogsmith is a content automation pipeline. It discovers trending search
topics, selects the most promising one, generates a structured article with
an LLM, renders it to HTML, and schedules it for publication.

Run a single cycle with "blogsmith generate", or keep it running on an
interval with "blogsmith run".`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./blogsmith.yaml)")
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(NewFetchCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewPublishCmd())
	rootCmd.AddCommand(NewTopicsCmd())
	rootCmd.AddCommand(NewPostsCmd())

	return rootCmd
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("blogsmith")
	}
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig centralizes config loading for all handlers.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

// buildPipeline assembles the full pipeline from configuration. The
// conversation cache is database-backed so retries keep context across
// process restarts.
func buildPipeline(cfg *config.Config, st *store.Store) (*pipeline.Pipeline, error) {
	trends, err := newTrendClient(cfg)
	if err != nil {
		return nil, err
	}

	cache := st.Conversations(
		config.Duration(cfg.Cache.TTL, llm.DefaultCacheTTL),
		cfg.Cache.MaxConversations,
	)
	chat, err := llm.NewClient(cfg.Gemini.Model, cache)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	opts := pipelineOptions(cfg)
	return pipeline.New(trends, chat, st, opts), nil
}

func newTrendClient(cfg *config.Config) (*trendsource.Client, error) {
	apiKey := os.Getenv("SERPAPI_API_KEY")
	if apiKey == "" {
		apiKey = cfg.SerpAPI.APIKey
	}
	trends, err := trendsource.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create trend client: %w", err)
	}
	return trends, nil
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Region:           cfg.SerpAPI.Region,
		WindowHours:      cfg.SerpAPI.WindowHours,
		TopicWindow:      config.Duration(fmt.Sprintf("%dh", cfg.Pipeline.TopicWindowHours), 0),
		CandidateLimit:   cfg.Pipeline.CandidateLimit,
		PublishDelay:     config.Duration(cfg.Pipeline.PublishDelay, 0),
		PublishInstantly: cfg.Pipeline.PublishInstantly,
		DuplicateWindow:  config.Duration(cfg.Pipeline.DuplicateWindow, 0),
		RecencyWindow:    config.Duration(cfg.Pipeline.PostRecencyWindow, 0),
		RelatedKwLimit:   cfg.Content.RelatedKwLimit,
		BannedWords:      cfg.Content.BannedWords,
		FallbackTopics:   cfg.Content.FallbackTopics,
	}
}
