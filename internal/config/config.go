package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	HistoryRemote = "remote"
	HistoryLocal  = "local"
)

// DefaultCaptions revolve in the status bar while a redesign is generating.
var DefaultCaptions = []string{
	"Dreaming up your room...",
	"Moving the furniture around...",
	"Picking a colour palette...",
	"Adjusting the lighting...",
	"Adding the finishing touches...",
}

type Defaults struct {
	RoomCategory string  `json:"room_category" mapstructure:"room_category"`
	Style        string  `json:"style" mapstructure:"style"`
	Budget       int64   `json:"budget" mapstructure:"budget"`
	Provider     string  `json:"provider" mapstructure:"provider"`
	Strength     float64 `json:"strength" mapstructure:"strength"`
}

// Assistant is an OpenAI-compatible endpoint used to refine replace prompts.
type Assistant struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	APIKey  string `json:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL string `json:"base_url,omitempty" mapstructure:"base_url"`
	Model   string `json:"model" mapstructure:"model"`
}

type History struct {
	Kind string `json:"kind" mapstructure:"kind"`
	Path string `json:"path,omitempty" mapstructure:"path"`
}

type UI struct {
	ComparisonOverlay bool     `json:"comparison_overlay" mapstructure:"comparison_overlay"`
	Captions          []string `json:"captions,omitempty" mapstructure:"captions"`
	CaptionInterval   int      `json:"caption_interval_seconds,omitempty" mapstructure:"caption_interval_seconds"`
}

type Profile struct {
	BackendURL     string    `json:"backend_url" mapstructure:"backend_url"`
	TimeoutSeconds int       `json:"timeout_seconds" mapstructure:"timeout_seconds"`
	Defaults       Defaults  `json:"defaults" mapstructure:"defaults"`
	Assistant      Assistant `json:"assistant" mapstructure:"assistant"`
	History        History   `json:"history" mapstructure:"history"`
	UI             UI        `json:"ui" mapstructure:"ui"`
}

type Config struct {
	Profiles       map[string]Profile `json:"profiles" mapstructure:"profiles"`
	ActiveProfile  string             `json:"active_profile" mapstructure:"active_profile"`
	LogLevel       string             `json:"log_level,omitempty" mapstructure:"log_level"`
	currentProfile *Profile
	path           string
}

// DefaultProfile points at a backend on localhost with the stock settings.
func DefaultProfile() Profile {
	return Profile{
		BackendURL:     "http://localhost:8000",
		TimeoutSeconds: 300,
		Defaults: Defaults{
			RoomCategory: "Living Room",
			Style:        "Modern",
			Budget:       50000,
			Provider:     "offline",
			Strength:     0.55,
		},
		Assistant: Assistant{
			BaseURL: "http://localhost:11434/v1",
			Model:   "llama3",
		},
		History: History{Kind: HistoryRemote},
		UI: UI{
			ComparisonOverlay: true,
			CaptionInterval:   3,
		},
	}
}

// LoadConfig reads the config file, creating a default one when missing.
// RORIDECOR_PROFILE and RORIDECOR_BACKEND_URL override the file, and a .env in
// the working directory is honoured.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.path = configPath

	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	return config, nil
}

// Dir is the directory holding the config file, logs and local history.
func Dir() (string, error) {
	p, err := getConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}

func (c *Config) IsValid() bool {
	return c.currentProfile != nil && c.currentProfile.BackendURL != ""
}

// Current returns the active profile with defaults filled in.
func (c *Config) Current() Profile {
	if c.currentProfile == nil {
		return DefaultProfile()
	}
	return *c.currentProfile
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Current().TimeoutSeconds) * time.Second
}

func (c *Config) Captions() []string {
	if caps := c.Current().UI.Captions; len(caps) > 0 {
		return caps
	}
	return DefaultCaptions
}

func (c *Config) CaptionInterval() time.Duration {
	if s := c.Current().UI.CaptionInterval; s > 0 {
		return time.Duration(s) * time.Second
	}
	return 3 * time.Second
}

// HistoryPath is where the local history database lives.
func (c *Config) HistoryPath() string {
	if p := c.Current().History.Path; p != "" {
		return p
	}
	dir := filepath.Dir(c.path)
	if c.path == "" {
		dir, _ = Dir()
	}
	return filepath.Join(dir, "history.db")
}

// LogPath is the rotating log file used while the TUI owns the terminal.
func (c *Config) LogPath() string {
	dir := filepath.Dir(c.path)
	if c.path == "" {
		dir, _ = Dir()
	}
	return filepath.Join(dir, "roridecor.log")
}

func getConfigPath() (string, error) {
	var configDir string

	// Use RORIDECOR_HOME if set, otherwise use user's home directory
	if home := os.Getenv("RORIDECOR_HOME"); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".roridecor", "config.json"), nil
}

func ensureConfigDir(configPath string) error {
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("RORIDECOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("active_profile", "RORIDECOR_PROFILE")
	_ = v.BindEnv("backend_url")
	_ = v.BindEnv("log_level")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if override := strings.TrimSpace(v.GetString("backend_url")); override != "" {
		if p, ok := config.Profiles[config.ActiveProfile]; ok {
			p.BackendURL = override
			config.Profiles[config.ActiveProfile] = p
		}
	}

	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			"default": DefaultProfile(),
		},
		ActiveProfile: "default",
		LogLevel:      "info",
	}

	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		p, err := getConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		configPath = p
	}

	return saveConfig(c, configPath)
}

// Use switches the active profile.
func (c *Config) Use(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.ActiveProfile = name
	return c.setCurrentProfile()
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to the first profile in name order
		first := ""
		for name := range c.Profiles {
			if first == "" || name < first {
				first = name
			}
		}
		c.ActiveProfile = first
		profile = c.Profiles[first]
	}

	profile = withDefaults(profile)
	c.currentProfile = &profile
	return nil
}

func withDefaults(p Profile) Profile {
	d := DefaultProfile()
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = d.TimeoutSeconds
	}
	if p.Defaults.RoomCategory == "" {
		p.Defaults.RoomCategory = d.Defaults.RoomCategory
	}
	if p.Defaults.Style == "" {
		p.Defaults.Style = d.Defaults.Style
	}
	if p.Defaults.Budget <= 0 {
		p.Defaults.Budget = d.Defaults.Budget
	}
	if p.Defaults.Provider == "" {
		p.Defaults.Provider = d.Defaults.Provider
	}
	if p.Defaults.Strength <= 0 || p.Defaults.Strength > 1 {
		p.Defaults.Strength = d.Defaults.Strength
	}
	if p.History.Kind == "" {
		p.History.Kind = HistoryRemote
	}
	if p.Assistant.Model == "" {
		p.Assistant.Model = d.Assistant.Model
	}
	return p
}
