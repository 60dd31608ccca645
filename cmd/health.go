package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rorical/RoriDecor/internal/backend"
	"github.com/Rorical/RoriDecor/internal/logger"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the backend and show its device",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		lg, err := logger.New(logger.Options{Level: cfg.LogLevel, Console: true})
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
		defer func() { _ = lg.Sync() }()

		client, err := backend.NewClient(cfg.Current().BackendURL, cfg.Timeout(), lg)
		if err != nil {
			log.Fatalf("Failed to create backend client: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
		defer cancel()
		health, err := client.Health(ctx)
		if err != nil {
			lg.Error("health check failed", zap.String("backend", client.Origin()), zap.Error(err))
			log.Fatalf("Backend unreachable: %v", err)
		}

		fmt.Printf("Backend: %s\n", client.Origin())
		fmt.Printf("Status:  %s\n", health.Status)
		fmt.Printf("Device:  %s\n", health.Device())
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
