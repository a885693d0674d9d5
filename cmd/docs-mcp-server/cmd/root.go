// Package cmd provides the CLI commands of docs-mcp-server.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Coder-RL/docs-mcp-server/internal/config"
	"github.com/Coder-RL/docs-mcp-server/internal/version"
)

// globalOptions are persistent flags shared by all commands.
type globalOptions struct {
	env        string
	configPath string
	logLevel   string
}

// NewRootCmd creates the root command. Without a subcommand it serves HTTP.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "docs-mcp-server",
		Short: "Version-aware documentation search over Redis vector indexes",
		Long: `docs-mcp-server indexes library documentation per version and serves
semantic search that resolves version ranges ("2.x", "~1.2", "latest")
to the best indexed release.

Run without a subcommand to start the HTTP API.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.SetVersionTemplate("docs-mcp-server version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "Environment name, selects config/<env>.yaml")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Explicit config file path (overrides --env lookup)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override: debug, info, warn, error")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newIndexCmd(opts))
	cmd.AddCommand(newVersionsCmd(opts))
	cmd.AddCommand(newRemoveCmd(opts))
	cmd.AddCommand(newReindexCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command with a context canceled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

func (o *globalOptions) loadConfig() (config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	cfg, err := config.Load(o.env)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config for env %q: %w", o.env, err)
	}
	return cfg, nil
}

func (o *globalOptions) level(cfg *config.Config) string {
	if o.logLevel != "" {
		return o.logLevel
	}
	return cfg.Logging.Level
}
