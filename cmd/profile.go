package cmd

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/RoriDecor/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage backend profiles",
	Long:  `Manage profiles for different backends, default settings and history stores.`,
}

func profileNames(cfg *config.Config, except string) []string {
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		if name != except {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// pickProfile returns args[0] or asks the user to select one.
func pickProfile(cfg *config.Config, args []string, label, except string) string {
	if len(args) > 0 {
		return strings.ToLower(args[0])
	}
	names := profileNames(cfg, except)
	if len(names) == 0 {
		log.Fatalf("No profiles available")
	}
	prompt := promptui.Select{Label: label, Items: names}
	_, name, err := prompt.Run()
	if err != nil {
		log.Fatalf("Selection failed: %v", err)
	}
	return name
}

func printProfile(p config.Profile) {
	fmt.Printf("  Backend: %s\n", p.BackendURL)
	fmt.Printf("  Timeout: %ds\n", p.TimeoutSeconds)
	fmt.Printf("  Defaults: %s, %s, %s, strength %.2f, budget %d\n",
		p.Defaults.RoomCategory, p.Defaults.Style, p.Defaults.Provider, p.Defaults.Strength, p.Defaults.Budget)
	fmt.Printf("  History: %s\n", p.History.Kind)
	if p.Assistant.Enabled {
		hasKey := "no key"
		if p.Assistant.APIKey != "" {
			hasKey = "key set"
		}
		fmt.Printf("  Assistant: %s at %s (%s)\n", p.Assistant.Model, p.Assistant.BaseURL, hasKey)
	} else {
		fmt.Println("  Assistant: disabled")
	}
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		fmt.Printf("Active Profile: %s\n\n", cfg.ActiveProfile)
		for _, name := range profileNames(cfg, "") {
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Printf("%s%s\n", name, marker)
			printProfile(cfg.Profiles[name])
			fmt.Println()
		}
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		name := pickProfile(cfg, args, "Select profile", "")
		profile, exists := cfg.Profiles[name]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", name)
		}
		fmt.Printf("Profile: %s\n", name)
		printProfile(profile)
	},
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http(s) url")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}

// promptProfile asks for every profile field, starting from p.
func promptProfile(p config.Profile) (config.Profile, error) {
	backendPrompt := promptui.Prompt{Label: "Backend URL", Default: p.BackendURL, Validate: validateURL}
	backendURL, err := backendPrompt.Run()
	if err != nil {
		return p, err
	}
	p.BackendURL = strings.TrimSpace(backendURL)

	timeoutPrompt := promptui.Prompt{
		Label:    "Request timeout (seconds)",
		Default:  strconv.Itoa(p.TimeoutSeconds),
		Validate: validatePositiveInt,
	}
	timeout, err := timeoutPrompt.Run()
	if err != nil {
		return p, err
	}
	p.TimeoutSeconds, _ = strconv.Atoi(timeout)

	historyPrompt := promptui.Select{
		Label: "History store",
		Items: []string{config.HistoryRemote, config.HistoryLocal},
	}
	_, p.History.Kind, err = historyPrompt.Run()
	if err != nil {
		return p, err
	}

	assistantPrompt := promptui.Select{
		Label: "Refine replace prompts with an assistant",
		Items: []string{"no", "yes"},
	}
	_, enabled, err := assistantPrompt.Run()
	if err != nil {
		return p, err
	}
	p.Assistant.Enabled = enabled == "yes"
	if !p.Assistant.Enabled {
		return p, nil
	}

	baseURLPrompt := promptui.Prompt{Label: "Assistant base URL", Default: p.Assistant.BaseURL, Validate: validateURL}
	if p.Assistant.BaseURL, err = baseURLPrompt.Run(); err != nil {
		return p, err
	}
	modelPrompt := promptui.Prompt{Label: "Assistant model", Default: p.Assistant.Model}
	if p.Assistant.Model, err = modelPrompt.Run(); err != nil {
		return p, err
	}
	keyPrompt := promptui.Prompt{Label: "Assistant API key (optional)", Default: p.Assistant.APIKey, Mask: '*'}
	if p.Assistant.APIKey, err = keyPrompt.Run(); err != nil {
		return p, err
	}
	return p, nil
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{Label: "Profile name"}
			profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Prompt failed: %v", err)
			}
		}
		// The config loader lowercases map keys.
		profileName = strings.ToLower(strings.TrimSpace(profileName))

		if _, exists := cfg.Profiles[profileName]; exists {
			log.Fatalf("Profile '%s' already exists", profileName)
		}

		profile, err := promptProfile(config.DefaultProfile())
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}
		cfg.Profiles[profileName] = profile

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' added successfully!\n", profileName)
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := pickProfile(cfg, args, "Select profile to edit", "")
		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		profile, err = promptProfile(profile)
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}
		cfg.Profiles[profileName] = profile

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' updated successfully!\n", profileName)
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := pickProfile(cfg, args, "Select profile to delete", "")
		if _, exists := cfg.Profiles[profileName]; !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'", profileName),
			IsConfirm: true,
		}
		if _, err := confirmPrompt.Run(); err != nil {
			fmt.Println("Deletion cancelled")
			return
		}

		delete(cfg.Profiles, profileName)
		if cfg.ActiveProfile == profileName {
			remaining := profileNames(cfg, "")
			if len(remaining) == 0 {
				cfg.Profiles["default"] = config.DefaultProfile()
				remaining = []string{"default"}
			}
			cfg.ActiveProfile = remaining[0]
		}

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' deleted successfully!\n", profileName)
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		if len(args) == 0 && len(profileNames(cfg, cfg.ActiveProfile)) == 0 {
			fmt.Println("No other profiles available to switch to")
			return
		}
		profileName := pickProfile(cfg, args, "Select profile to switch to", cfg.ActiveProfile)

		if err := cfg.Use(profileName); err != nil {
			log.Fatalf("Failed to switch profile: %v", err)
		}
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Switched to profile '%s'\n", profileName)
	},
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}
