package app

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Rorical/RoriDecor/internal/backend"
	"github.com/Rorical/RoriDecor/internal/config"
	"github.com/Rorical/RoriDecor/internal/core"
	"github.com/Rorical/RoriDecor/internal/dispatcher"
	"github.com/Rorical/RoriDecor/internal/eventbus"
	"github.com/Rorical/RoriDecor/internal/history"
	"github.com/Rorical/RoriDecor/internal/imagecache"
	"github.com/Rorical/RoriDecor/internal/logger"
	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/internal/prompt"
)

const (
	imageCacheSize   = 32
	remoteHistoryTTL = 30 * time.Second
)

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	logger     *zap.Logger
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.SessionService
	model      *AppModel
	closers    []io.Closer
}

// NewApplication wires the backend client, history store and session core
// for the active profile. initialImage, when set, is uploaded on start.
func NewApplication(cfg *config.Config, initialImage string) (*Application, error) {
	profile := cfg.Current()

	log, err := logger.New(logger.Options{FilePath: cfg.LogPath(), Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := backend.NewClient(profile.BackendURL, cfg.Timeout(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	store, closer, err := OpenHistory(cfg, client)
	if err != nil {
		return nil, err
	}

	opts := core.Options{
		Settings:        SettingsFromProfile(profile),
		RequestTimeout:  cfg.Timeout(),
		Captions:        cfg.Captions(),
		CaptionInterval: cfg.CaptionInterval(),
		History:         store,
	}
	if profile.Assistant.Enabled {
		opts.Refiner = prompt.NewRefiner(prompt.Options{
			APIKey:  profile.Assistant.APIKey,
			BaseURL: profile.Assistant.BaseURL,
			Model:   profile.Assistant.Model,
		})
	}

	images, err := imagecache.New(imageCacheSize, client, log)
	if err != nil {
		return nil, err
	}

	eb := eventbus.NewEventBus()
	disp := dispatcher.NewEventDispatcher(eb, log)
	service := core.NewSessionService(client, eb, log, opts)

	var initial []eventbus.UIEvent
	initial = append(initial, eventbus.HealthEvent{}, eventbus.RefreshHistoryEvent{})
	if initialImage != "" {
		initial = append(initial, eventbus.UploadEvent{Path: initialImage})
	}

	model := &AppModel{
		appModel:   createInitialAppModel(service.Snapshot(), profile),
		dispatcher: disp,
		images:     images,
		initial:    initial,
	}

	app := &Application{
		config:     cfg,
		logger:     log,
		eventBus:   eb,
		dispatcher: disp,
		service:    service,
		model:      model,
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	log.Info("application created",
		zap.String("profile", cfg.ActiveProfile),
		zap.String("backend", client.Origin()),
		zap.String("history", profile.History.Kind),
		zap.Bool("assistant", profile.Assistant.Enabled),
	)
	return app, nil
}

// OpenHistory returns the history store selected by the profile. The closer
// is nil for stores that hold no resources.
func OpenHistory(cfg *config.Config, client *backend.Client) (history.Store, io.Closer, error) {
	switch kind := cfg.Current().History.Kind; kind {
	case config.HistoryLocal:
		store, err := history.OpenLocal(cfg.HistoryPath())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open local history: %w", err)
		}
		return store, store, nil
	case config.HistoryRemote, "":
		return history.NewRemoteStore(client, remoteHistoryTTL), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown history kind %q", kind)
	}
}

// SettingsFromProfile maps the profile defaults onto session settings.
func SettingsFromProfile(p config.Profile) models.Settings {
	return models.Settings{
		RoomCategory: p.Defaults.RoomCategory,
		Style:        p.Defaults.Style,
		Budget:       p.Defaults.Budget,
		Provider:     p.Defaults.Provider,
		Strength:     p.Defaults.Strength,
	}
}

func (app *Application) Start() error {
	app.dispatcher.Start()
	app.service.Start()

	p := tea.NewProgram(app.model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	if err != nil {
		app.logger.Error("program exited with error", zap.Error(err))
	}
	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.dispatcher.Stop()
	app.eventBus.Close()
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = app.logger.Sync()
}

func createInitialAppModel(session models.SessionSnapshot, profile config.Profile) models.AppModel {
	input := textinput.New()
	input.Placeholder = "Path to a room photo, a request, or :help"
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	return models.AppModel{
		Session:           session,
		Input:             input,
		Spinner:           spinner.New(spinner.WithSpinner(spinner.Dot)),
		EditColor:         "#ffffff",
		ComparisonEnabled: profile.UI.ComparisonOverlay,
	}
}
