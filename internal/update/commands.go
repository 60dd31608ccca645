package update

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriDecor/internal/eventbus"
	"github.com/Rorical/RoriDecor/internal/models"
)

// runCommand handles ":name args" input lines.
func runCommand(appModel *models.AppModel, deps Deps, line string) tea.Cmd {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	next := appModel.Session.Settings

	switch strings.ToLower(name) {
	case "help":
		appModel.Notice = "commands: :open :generate :scan :room :style :provider :strength :budget :color :mode :clear :health :history"
		return nil
	case "open":
		if arg == "" {
			appModel.Notice = "usage: :open <path>"
			return nil
		}
		return request(appModel, deps, eventbus.UploadEvent{Path: arg})
	case "generate":
		return request(appModel, deps, eventbus.GenerateEvent{})
	case "scan":
		return request(appModel, deps, eventbus.DetectEvent{})
	case "health":
		return send(appModel, deps, eventbus.HealthEvent{})
	case "history":
		return send(appModel, deps, eventbus.RefreshHistoryEvent{})
	case "clear":
		appModel.Gesture.Cancel()
		return send(appModel, deps, eventbus.ClearMaskEvent{})
	case "mode":
		mode, ok := models.ParseMode(strings.ToLower(arg))
		if !ok {
			appModel.Notice = "usage: :mode create|plan|edit"
			return nil
		}
		return setMode(appModel, deps, mode)
	case "color":
		appModel.EditColor = arg
		appModel.EditKind = models.EditRecolor
		return nil
	case "room":
		v, ok := match(models.RoomCategories, arg)
		if !ok {
			appModel.Notice = "rooms: " + strings.Join(models.RoomCategories, ", ")
			return nil
		}
		next.RoomCategory = v
	case "style":
		v, ok := match(models.Styles, arg)
		if !ok {
			appModel.Notice = "styles: " + strings.Join(models.Styles, ", ")
			return nil
		}
		next.Style = v
	case "provider":
		v, ok := match(models.Providers, arg)
		if !ok {
			appModel.Notice = "providers: " + strings.Join(models.Providers, ", ")
			return nil
		}
		next.Provider = v
	case "strength":
		pct, err := strconv.Atoi(strings.TrimSuffix(arg, "%"))
		if err != nil {
			appModel.Notice = "usage: :strength <percent>"
			return nil
		}
		next.Strength = float64(pct) / 100
	case "budget":
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || n < 0 {
			appModel.Notice = "usage: :budget <amount>"
			return nil
		}
		next.Budget = n
	default:
		appModel.Notice = fmt.Sprintf("unknown command %q", name)
		return nil
	}
	return sendSettings(appModel, deps, next)
}

func match(values []string, s string) (string, bool) {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return v, true
		}
	}
	return "", false
}
