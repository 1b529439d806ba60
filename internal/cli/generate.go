package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitalvas/swaggerpage"
	"github.com/vitalvas/swaggerpage/mux"
)

func newGenerateCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the Swagger 2.0 document built from the annotated sources",
		Example: strings.TrimSpace(`  swaggerpage generate --title Pets --api-version 1.0.0 --apis './routes/*.go'
  swaggerpage -c swaggerpage.yaml generate --format yaml --validate`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, version)
		},
	}

	flags := cmd.Flags()
	flags.String("title", "", "API title")
	flags.String("api-version", "", "API version")
	flags.String("host", "", "API host")
	flags.StringSlice("apis", nil, "Glob patterns of annotated sources")
	flags.Bool("validate", false, "Validate the document before printing")
	flags.StringP("format", "f", "json", "Output format: json or yaml")
	flags.StringP("output", "o", "", "Write to a file instead of stdout")

	return cmd
}

func runGenerate(cmd *cobra.Command, version string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "json" && format != "yaml" {
		return newUsageError(fmt.Sprintf("unknown format %q: want json or yaml", format))
	}

	cfg, logger, err := loadConfig(cmd, version)
	if err != nil {
		return err
	}

	// The router is never served; BuildSpec only needs the options to be
	// complete.
	doc, err := swaggerpage.BuildSpec(cfg.PageOptions(mux.NewRouter(), logger))
	if err != nil {
		return err
	}

	if cfg.Validate {
		if err := doc.Validate(cmd.Context()); err != nil {
			return err
		}
	}

	var out []byte
	if format == "yaml" {
		out, err = doc.YAML()
	} else {
		out, err = doc.JSON()
		out = append(out, '\n')
	}
	if err != nil {
		return err
	}

	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if path != "" {
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Info("document written", "file", path, "format", format, "paths", len(doc.Paths))
		return nil
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}
