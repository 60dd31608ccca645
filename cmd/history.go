package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rorical/RoriDecor/internal/app"
	"github.com/Rorical/RoriDecor/internal/backend"
	"github.com/Rorical/RoriDecor/internal/history"
	"github.com/Rorical/RoriDecor/internal/logger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past sessions, newest first",
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
		store, closer, err := app.OpenHistory(cfg, client)
		if err != nil {
			log.Fatalf("Failed to open history: %v", err)
		}
		if closer != nil {
			defer closer.Close()
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
		defer cancel()
		entries, err := store.List(ctx)
		if err != nil {
			log.Fatalf("Failed to list history: %v", err)
		}
		if len(entries) == 0 {
			fmt.Println("No sessions yet")
			return
		}
		for _, e := range history.Newest(entries) {
			fmt.Printf("%s  ₹%d  %s\n", e.ProjectName, e.TotalCost, strings.Join(e.Actions, ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
