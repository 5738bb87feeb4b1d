// Package commands implements the promptforge CLI: the HTTP service plus
// one-shot extraction, planning, and generation runs.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/forgelabs/promptforge/config"
	"github.com/forgelabs/promptforge/llm"
	"github.com/forgelabs/promptforge/payload"
	"github.com/forgelabs/promptforge/salesforce"
	"github.com/forgelabs/promptforge/session"
	"github.com/forgelabs/promptforge/workflow"
)

const appName = "promptforge"

// Version is the CLI version reported by the version subcommand.
const Version = "1.0.0"

// app carries state shared across subcommands, populated by the root
// command's persistent pre-run.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd builds the CLI command tree.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Salesforce test prompt generator",
		Long: `Promptforge extracts Salesforce org metadata and generates
context-aware test prompts for AI agents.

It connects to an org, snapshots its objects, flows, reports, validation
rules, and sample data, then uses a generative model to identify use cases
and produce test prompts grounded in the org's actual records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = newLogger(logLevel)
			slog.SetDefault(a.logger)

			cfg, err := loadConfig(configPath, a.logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newExtractCmd(a))
	cmd.AddCommand(newPlanCmd(a))
	cmd.AddCommand(newGenerateCmd(a))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func newLogger(level string) *slog.Logger {
	l := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	loader := config.NewLoader(logger)
	if path != "" {
		return loader.LoadFile(path)
	}
	return loader.Load()
}

// newStore builds the configured session store. The returned close func
// releases the NATS connection for the nats backend.
func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, func(), error) {
	switch cfg.Sessions.Backend {
	case config.BackendNATS:
		nc, err := nats.Connect(cfg.Sessions.NATSURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to NATS: %w", err)
		}
		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, nil, fmt.Errorf("jetstream context: %w", err)
		}
		store, err := session.NewKVStore(ctx, js, cfg.Sessions.Bucket)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		logger.Info("using NATS session store", "url", cfg.Sessions.NATSURL)
		return store, nc.Close, nil
	default:
		return session.NewMemoryStore(), func() {}, nil
	}
}

// newPipeline wires the workflow against the configured model endpoint and
// Salesforce settings.
func newPipeline(a *app, store session.Store) *workflow.Pipeline {
	cfg := a.cfg
	httpClient := &http.Client{Timeout: cfg.Model.Timeout}

	factory := func(apiKey string) *llm.Client {
		return llm.NewClient(llm.Endpoint{
			Provider: cfg.Model.Provider,
			BaseURL:  cfg.Model.Endpoint,
			Model:    cfg.Model.Name,
			APIKey:   apiKey,
		}, llm.WithHTTPClient(httpClient), llm.WithLogger(a.logger))
	}

	connect := func(ctx context.Context, creds salesforce.Credentials) (salesforce.Connection, error) {
		opts := []salesforce.Option{
			salesforce.WithAPIVersion(cfg.Salesforce.APIVersion),
			salesforce.WithLogger(a.logger),
		}
		if cfg.Salesforce.LoginHost != "" {
			opts = append(opts, salesforce.WithLoginHost(cfg.Salesforce.LoginHost))
		}
		return salesforce.Connect(ctx, creds, opts...)
	}

	return workflow.NewPipeline(store, factory, cfg.Model.Name,
		workflow.WithConnectFunc(connect),
		workflow.WithRecorder(payload.NewRecorder(cfg.Recovery.Dir, a.logger)),
		workflow.WithLogger(a.logger))
}

// credentialsFromEnv reads org credentials the way the one-shot commands
// expect them.
func credentialsFromEnv() (salesforce.Credentials, error) {
	creds := salesforce.Credentials{
		Username:      os.Getenv("SF_USERNAME"),
		Password:      os.Getenv("SF_PASSWORD"),
		SecurityToken: os.Getenv("SF_SECURITY_TOKEN"),
		Domain:        os.Getenv("SF_DOMAIN"),
	}
	if err := creds.Validate(); err != nil {
		return salesforce.Credentials{}, fmt.Errorf("SF_USERNAME/SF_PASSWORD/SF_SECURITY_TOKEN must be set: %w", err)
	}
	return creds, nil
}

// apiKeyFromEnv resolves the model API key for one-shot commands.
func apiKeyFromEnv() (string, error) {
	for _, name := range []string{"PROMPTFORGE_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("no model API key found; set PROMPTFORGE_API_KEY")
}
