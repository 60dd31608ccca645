package cmd

import (
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rorical/RoriDecor/internal/config"
)

var useCmd = &cobra.Command{
	Use:   "use [profile-name] [image]",
	Short: "Switch to a profile and start the app",
	Long:  `Switch to the specified profile, save it as active and start the app.`,
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		profileName := strings.ToLower(args[0])

		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		if err := cfg.Use(profileName); err != nil {
			log.Fatalf("Failed to switch profile: %v", err)
		}

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		image := ""
		if len(args) > 1 {
			image = args[1]
		}
		runApplication(cfg, image)
	},
}

func init() {
	rootCmd.AddCommand(useCmd)
}
