// Package cli implements the swaggerpage command.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vitalvas/swaggerpage/internal/config"
	"github.com/vitalvas/swaggerpage/internal/logging"
)

const name = "swaggerpage"

// Execute runs the command with os.Args.
func Execute(ctx context.Context, version string) error {
	return NewRootCmd(version).ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           name,
		Short:         "Serve and generate Swagger 2.0 documentation pages",
		Long:          "swaggerpage builds a Swagger 2.0 document from annotated sources and serves it with swagger-ui.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "Config file path (YAML or JSON)")
	flags.StringSlice("env-file", nil, "Environment files to load (default .env and .env.local when present)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (default $LOG_LEVEL or info)")
	flags.String("log-format", "", "Log format: json or text")

	for _, sub := range []*cobra.Command{newServeCmd(version), newGenerateCmd(version)} {
		cmd.AddCommand(sub)
	}

	setFlagErrors(cmd)

	return cmd
}

func setFlagErrors(cmd *cobra.Command) {
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	})
	for _, sub := range cmd.Commands() {
		setFlagErrors(sub)
	}
}

// loadConfig resolves the configuration for cmd and builds its logger.
func loadConfig(cmd *cobra.Command, version string) (*config.Config, *slog.Logger, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}
	envFiles, err := cmd.Flags().GetStringSlice("env-file")
	if err != nil {
		return nil, nil, err
	}
	if !cmd.Flags().Changed("env-file") {
		envFiles = nil
	}

	cfg, err := config.Load(config.Options{
		File:     file,
		EnvFiles: envFiles,
		Flags:    cmd.Flags(),
	})
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: name,
		Version: version,
		Output:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, newUsageError(err.Error())
	}

	return cfg, logger, nil
}
