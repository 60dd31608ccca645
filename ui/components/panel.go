package components

import (
	"fmt"
	"strings"

	"github.com/Rorical/RoriDecor/internal/budget"
	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/ui/styles"
)

const maxHistoryRows = 5

// PanelInput is the local UI state the side panel shows next to the session.
type PanelInput struct {
	Session      models.SessionSnapshot
	EditKind     models.EditKind
	EditColor    string
	ShowOriginal bool
	Comparison   bool
}

// RenderPanel draws the mode specific side panel.
func RenderPanel(in PanelInput, width, height int) string {
	var body string
	switch in.Session.Mode {
	case models.ModePlan:
		body = RenderTranscript(in.Session.Messages, width, height)
	case models.ModeEdit:
		body = tail(renderEditTools(in), height)
	default:
		body = tail(renderCreate(in.Session), height)
	}
	return body
}

func renderCreate(s models.SessionSnapshot) string {
	var b strings.Builder
	b.WriteString(styles.PanelTitleStyle().Render("Settings") + "\n")

	room := s.Settings.RoomCategory
	if badge := s.RoomBadge(); badge != "" {
		room += " " + styles.BadgeStyle().Render(badge)
	}
	fmt.Fprintf(&b, "Room:     %s\n", room)
	fmt.Fprintf(&b, "Style:    %s\n", s.Settings.Style)
	fmt.Fprintf(&b, "Provider: %s\n", s.Settings.Provider)
	pct := s.Settings.StrengthPercent()
	label := models.StrengthLabel(pct)
	fmt.Fprintf(&b, "Strength: %d%% %s\n", pct, styles.StrengthStyle(label).Render(label))

	b.WriteString("\n" + renderBudget(s.Budget))

	if len(s.Detections) > 0 {
		b.WriteString("\n" + styles.PanelTitleStyle().Render("Detected items") + "\n")
		for _, d := range s.Detections {
			fmt.Fprintf(&b, "- %s (%.0f%%)\n", d.Label, d.Confidence*100)
		}
	}

	if len(s.History) > 0 {
		b.WriteString("\n" + styles.PanelTitleStyle().Render("History") + "\n")
		for i, h := range s.History {
			if i == maxHistoryRows {
				break
			}
			fmt.Fprintf(&b, "%s  ₹%d  %s\n", h.ProjectName, h.TotalCost, strings.Join(h.Actions, ", "))
		}
	}

	b.WriteString("\n" + styles.MutedStyle().Render("enter: open path / generate  ctrl+r room  ctrl+t style  ctrl+p provider  pgup/pgdn strength  ctrl+d scan"))
	return b.String()
}

func renderBudget(sum budget.Summary) string {
	var b strings.Builder
	b.WriteString(styles.PanelTitleStyle().Render("Budget") + "\n")
	line := fmt.Sprintf("₹%d of ₹%d (%.0f%%)", sum.Total, sum.Ceiling, sum.Percent)
	b.WriteString(styles.BudgetStyle(string(sum.Status)).Render(line) + "\n")
	fmt.Fprintf(&b, "Remaining: ₹%d\n", sum.Remaining)
	for _, e := range sum.Breakdown {
		fmt.Fprintf(&b, "  %s  ₹%d\n", e.Action, e.Cost)
	}
	return b.String()
}

func renderEditTools(in PanelInput) string {
	var b strings.Builder
	b.WriteString(styles.PanelTitleStyle().Render("Edit") + "\n")

	kinds := []models.EditKind{models.EditRecolor, models.EditReplace, models.EditRemove}
	var labels []string
	for _, k := range kinds {
		if k == in.EditKind {
			labels = append(labels, styles.ActiveTabStyle().Render(k.String()))
		} else {
			labels = append(labels, styles.TabStyle().Render(k.String()))
		}
	}
	b.WriteString(strings.Join(labels, " ") + "\n\n")

	switch in.EditKind {
	case models.EditRecolor:
		fmt.Fprintf(&b, "Color: %s (type a hex color or :color)\n", in.EditColor)
	case models.EditReplace:
		b.WriteString("Type what should replace the selection.\n")
	case models.EditRemove:
		b.WriteString("The selection will be filled with background.\n")
	}

	if in.Session.MaskRef != "" {
		b.WriteString("Mask: " + styles.BadgeStyle().Render("selected") + "\n")
	} else {
		b.WriteString("Mask: click or drag on the image\n")
	}
	if in.Session.CanSubmitEdit() {
		b.WriteString("Apply: enter\n")
	} else {
		b.WriteString(styles.MutedStyle().Render("Apply: unavailable") + "\n")
	}
	if in.Comparison {
		view := "edited"
		if in.ShowOriginal {
			view = "original"
		}
		fmt.Fprintf(&b, "Showing: %s (ctrl+o)\n", view)
	}

	b.WriteString("\n" + renderBudget(in.Session.Budget))
	b.WriteString("\n" + styles.MutedStyle().Render("ctrl+k kind  ctrl+x clear mask  esc cancel drag"))
	return b.String()
}
