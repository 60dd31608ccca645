package components

import (
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/ui/styles"
)

// RenderStatus shows the notice, the error or the session status, in that
// order of preference.
func RenderStatus(session models.SessionSnapshot, notice string, sp spinner.Model, width int) string {
	switch {
	case notice != "":
		return styles.StatusStyle(width).Render(notice)
	case session.Error != "":
		return styles.ErrorStatusStyle(width).Render("Error: " + session.Error)
	case session.Busy:
		return styles.StatusStyle(width).Render(sp.View() + " " + session.Status)
	case session.Status != "":
		return styles.StatusStyle(width).Render(session.Status)
	default:
		return styles.StatusStyle(width).Render("Ready")
	}
}
