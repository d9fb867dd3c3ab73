package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dialboard/server/config"
	"github.com/dialboard/server/pkg/indicator"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func buildBuildCmd(logger *slog.Logger) *cobra.Command {
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Builds the snapshot feed from FRED and Stooq data",
		Run: func(cmd *cobra.Command, args []string) {
			err := runBuild(logger)
			if err != nil {
				logger.Error(err.Error())
				os.Exit(2)
			}
		},
	}
	return buildCmd
}

func runBuild(logger *slog.Logger) error {
	file, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("fail to read configuration file: %w", err)
	}
	var config config.Configuration
	if err := yaml.Unmarshal(file, &config); err != nil {
		return fmt.Errorf("fail to parse yaml configuration file: %w", err)
	}
	builder, err := indicator.NewBuilder(logger, config.Builder)
	if err != nil {
		return err
	}
	return builder.Run(context.Background())
}
