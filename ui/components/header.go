package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/ui/styles"
)

var tabs = []struct {
	mode  models.Mode
	label string
}{
	{models.ModeCreate, "Create"},
	{models.ModePlan, "Plan"},
	{models.ModeEdit, "Edit"},
}

// RenderHeader draws the title, the mode tabs and the backend device.
func RenderHeader(session models.SessionSnapshot, width int) string {
	parts := []string{styles.TitleStyle().Render("RoriDecor")}
	for _, t := range tabs {
		if t.mode == session.Mode {
			parts = append(parts, styles.ActiveTabStyle().Render(t.label))
		} else {
			parts = append(parts, styles.TabStyle().Render(t.label))
		}
	}
	left := strings.Join(parts, " ")

	device := session.Device
	if device == "" {
		device = "unknown"
	}
	right := styles.MutedStyle().Render("device: " + device)

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}
