package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rorical/RoriDecor/internal/app"
	"github.com/Rorical/RoriDecor/internal/config"
)

var (
	profileFlag string
	backendFlag string
)

var rootCmd = &cobra.Command{
	Use:   "roridecor [image]",
	Short: "AI interior redesign in the terminal",
	Long: `RoriDecor drives an interior redesign backend from the terminal.
Upload a room photo, generate a redesign, ask for a shopping plan and
edit regions of the image with the mouse.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		image := ""
		if len(args) > 0 {
			image = args[0]
		}
		runApplication(cfg, image)
	},
}

func runApplication(cfg *config.Config, image string) {
	application, err := app.NewApplication(cfg, image)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

// loadConfig applies the --profile and --backend overrides for this run only.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if profileFlag != "" {
		if err := cfg.Use(strings.ToLower(profileFlag)); err != nil {
			return nil, err
		}
	}
	if backendFlag != "" {
		p := cfg.Profiles[cfg.ActiveProfile]
		p.BackendURL = backendFlag
		cfg.Profiles[cfg.ActiveProfile] = p
		if err := cfg.Use(cfg.ActiveProfile); err != nil {
			return nil, err
		}
	}
	if !cfg.IsValid() {
		return nil, fmt.Errorf("profile '%s' has no backend url", cfg.ActiveProfile)
	}
	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "profile to use for this run")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "backend url, overrides the profile")

	rootCmd.AddCommand(profileCmd)
}
