package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/hexsyn/intake/internal/app"
	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/logger"
)

var timeout time.Duration

var rootCmd = &cobra.Command{
	Use:           "intakectl",
	Short:         "Operator tool for the intake service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "deadline for remote calls")

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(sheetsCmd)
	rootCmd.AddCommand(driveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(previewCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// environment loads configuration and the configured collaborators
func environment(cmd *cobra.Command) (context.Context, context.CancelFunc, *config.Config, *app.Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Keep operator output readable; warnings still surface.
	log := logger.New("warn", "console")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	services, err := app.Build(ctx, cfg, log)
	if err != nil {
		cancel()
		return nil, nil, nil, nil, err
	}
	return ctx, cancel, cfg, services, nil
}
