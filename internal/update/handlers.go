package update

import (
	"context"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriDecor/internal/eventbus"
	"github.com/Rorical/RoriDecor/internal/imagecache"
	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/ui/components"
)

const (
	imageLoadTimeout = 30 * time.Second
	strengthStep     = 0.05
)

// HandleKeyMsg handles keyboard input. Anything not bound here goes to the
// text input.
func HandleKeyMsg(appModel *models.AppModel, keyMsg tea.KeyMsg, deps Deps) tea.Cmd {
	appModel.Notice = ""
	s := appModel.Session

	switch keyMsg.String() {
	case "ctrl+c":
		return tea.Quit
	case "tab":
		return setMode(appModel, deps, (s.Mode+1)%3)
	case "shift+tab":
		return setMode(appModel, deps, (s.Mode+2)%3)
	case "esc":
		appModel.Gesture.Cancel()
		return nil
	case "ctrl+g":
		return request(appModel, deps, eventbus.GenerateEvent{})
	case "ctrl+d":
		return request(appModel, deps, eventbus.DetectEvent{})
	case "ctrl+e":
		return submitEdit(appModel, deps, appModel.Input.Value())
	case "ctrl+k":
		appModel.EditKind = (appModel.EditKind + 1) % 3
		return nil
	case "ctrl+x":
		appModel.Gesture.Cancel()
		return send(appModel, deps, eventbus.ClearMaskEvent{})
	case "ctrl+o":
		if appModel.ComparisonEnabled && appModel.Original != nil {
			appModel.ShowOriginal = !appModel.ShowOriginal
			appModel.Gesture.Cancel()
			refreshSurface(appModel)
		}
		return nil
	case "ctrl+r":
		next := s.Settings
		next.RoomCategory = cycle(models.RoomCategories, next.RoomCategory)
		return sendSettings(appModel, deps, next)
	case "ctrl+t":
		next := s.Settings
		next.Style = cycle(models.Styles, next.Style)
		return sendSettings(appModel, deps, next)
	case "ctrl+p":
		next := s.Settings
		next.Provider = cycle(models.Providers, next.Provider)
		return sendSettings(appModel, deps, next)
	case "pgup":
		next := s.Settings
		next.Strength += strengthStep
		return sendSettings(appModel, deps, next)
	case "pgdown":
		next := s.Settings
		next.Strength -= strengthStep
		return sendSettings(appModel, deps, next)
	case "f5":
		return tea.Batch(
			send(appModel, deps, eventbus.HealthEvent{}),
			send(appModel, deps, eventbus.RefreshHistoryEvent{}),
		)
	case "enter":
		return handleEnter(appModel, deps)
	}

	var cmd tea.Cmd
	appModel.Input, cmd = appModel.Input.Update(keyMsg)
	return cmd
}

func handleEnter(appModel *models.AppModel, deps Deps) tea.Cmd {
	text := strings.TrimSpace(appModel.Input.Value())
	if strings.HasPrefix(text, ":") {
		appModel.Input.Reset()
		return runCommand(appModel, deps, text[1:])
	}

	switch appModel.Session.Mode {
	case models.ModePlan:
		if text == "" {
			return nil
		}
		cmd := request(appModel, deps, eventbus.PlanEvent{Text: text})
		if !appModel.Session.Busy {
			appModel.Input.Reset()
		}
		return cmd
	case models.ModeEdit:
		return submitEdit(appModel, deps, text)
	default:
		if text == "" {
			return request(appModel, deps, eventbus.GenerateEvent{})
		}
		cmd := request(appModel, deps, eventbus.UploadEvent{Path: text})
		if !appModel.Session.Busy {
			appModel.Input.Reset()
		}
		return cmd
	}
}

// submitEdit builds the operation for the selected edit kind. The apply
// control is disabled without a mask, so nothing is sent then.
func submitEdit(appModel *models.AppModel, deps Deps, text string) tea.Cmd {
	if appModel.Session.Mode != models.ModeEdit {
		return nil
	}
	if !appModel.Session.CanSubmitEdit() {
		if appModel.Session.MaskRef == "" {
			appModel.Notice = "Select a region on the image first"
		} else {
			appModel.Notice = "Busy: " + appModel.Session.BusyOp
		}
		return nil
	}

	text = strings.TrimSpace(text)
	var op models.EditOperation
	switch appModel.EditKind {
	case models.EditReplace:
		op = models.Replace(text)
	case models.EditRemove:
		op = models.Remove()
	default:
		if text != "" {
			appModel.EditColor = text
		}
		op = models.Recolor(appModel.EditColor)
	}
	appModel.Input.Reset()
	return send(appModel, deps, eventbus.EditEvent{Operation: op})
}

func setMode(appModel *models.AppModel, deps Deps, mode models.Mode) tea.Cmd {
	appModel.Gesture.Cancel()
	appModel.ShowOriginal = false
	return send(appModel, deps, eventbus.ModeEvent{Mode: mode})
}

func sendSettings(appModel *models.AppModel, deps Deps, next models.Settings) tea.Cmd {
	return send(appModel, deps, eventbus.SettingsEvent{Settings: next})
}

// request sends an event that starts a backend operation. While the session
// is busy the controls are disabled.
func request(appModel *models.AppModel, deps Deps, event eventbus.UIEvent) tea.Cmd {
	if appModel.Session.Busy {
		appModel.Notice = "Busy: " + appModel.Session.BusyOp
		return nil
	}
	return send(appModel, deps, event)
}

func send(appModel *models.AppModel, deps Deps, event eventbus.UIEvent) tea.Cmd {
	if deps.Sender == nil {
		return nil
	}
	if err := deps.Sender.SendToCore(event); err != nil {
		appModel.Notice = "Error sending event: " + err.Error()
	}
	return nil
}

func cycle(values []string, current string) string {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg, deps Deps) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		appModel.Session = event.Session
		if event.Session.Mode != models.ModeEdit {
			appModel.Gesture.Cancel()
		}
		return syncImages(appModel, deps)
	}
	return nil
}

// syncImages starts loads for any canvas image whose source changed.
func syncImages(appModel *models.AppModel, deps Deps) tea.Cmd {
	s := appModel.Session
	var cmds []tea.Cmd

	cmds = append(cmds, syncSlot(&appModel.Image, &appModel.ImageKey, SlotImage, activeSource(s), deps))
	cmds = append(cmds, syncSlot(&appModel.Mask, &appModel.MaskKey, SlotMask, maskSource(s), deps))
	if appModel.ComparisonEnabled {
		cmds = append(cmds, syncSlot(&appModel.Original, &appModel.OriginalKey, SlotOriginal, imagecache.LocalFile(s.OriginalFile), deps))
	}
	if appModel.Original == nil {
		appModel.ShowOriginal = false
	}
	refreshSurface(appModel)
	return tea.Batch(cmds...)
}

func syncSlot(img *image.Image, key *string, slot ImageSlot, src imagecache.Source, deps Deps) tea.Cmd {
	if src.Empty() {
		*img = nil
		*key = ""
		return nil
	}
	if src.Key() == *key {
		return nil
	}
	*img = nil
	*key = src.Key()
	return loadImage(deps.Images, slot, src)
}

// activeSource reads the local file while the active image is still the
// upload, and fetches from the backend after edits.
func activeSource(s models.SessionSnapshot) imagecache.Source {
	if s.ActiveImageRef == "" {
		return imagecache.Source{}
	}
	if s.ActiveImageRef == s.OriginalImageRef && s.OriginalFile != "" {
		return imagecache.LocalFile(s.OriginalFile)
	}
	if s.ActiveImageURL != "" {
		return imagecache.Remote(s.ActiveImageURL)
	}
	return imagecache.Remote(s.ActiveImageRef)
}

func maskSource(s models.SessionSnapshot) imagecache.Source {
	if s.MaskURL != "" {
		return imagecache.Remote(s.MaskURL)
	}
	return imagecache.Remote(s.MaskRef)
}

func loadImage(loader ImageLoader, slot ImageSlot, src imagecache.Source) tea.Cmd {
	if loader == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), imageLoadTimeout)
		defer cancel()
		img, err := loader.Load(ctx, src)
		return ImageLoadedMsg{Slot: slot, Key: src.Key(), Image: img, Err: err}
	}
}

// HandleImageLoaded stores a decoded image unless its slot has moved on.
func HandleImageLoaded(appModel *models.AppModel, msg ImageLoadedMsg) {
	var img *image.Image
	var key string
	switch msg.Slot {
	case SlotImage:
		img, key = &appModel.Image, appModel.ImageKey
	case SlotMask:
		img, key = &appModel.Mask, appModel.MaskKey
	case SlotOriginal:
		img, key = &appModel.Original, appModel.OriginalKey
	default:
		return
	}
	if msg.Key != key {
		return
	}
	if msg.Err != nil {
		appModel.Notice = "Could not load image: " + msg.Err.Error()
		return
	}
	*img = msg.Image
	refreshSurface(appModel)
}

// refreshSurface recomputes where the displayed image sits on screen.
func refreshSurface(appModel *models.AppModel) {
	img := appModel.DisplayedImage()
	if img == nil {
		appModel.Surface = components.FitImage(components.Rect{}, 0, 0)
		return
	}
	b := img.Bounds()
	appModel.Surface = components.FitImage(components.CanvasArea(appModel.Width, appModel.Height), b.Dx(), b.Dy())
}
