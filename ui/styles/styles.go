package styles

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
)

var (
	Accent  = lipgloss.Color("62")
	Muted   = lipgloss.Color("241")
	Warning = lipgloss.Color("202")
	Good    = lipgloss.Color("35")
)

// Canvas overlay colors.
var (
	MaskTint      = color.RGBA{R: 80, G: 160, B: 255, A: 255}
	SelectionEdge = color.RGBA{R: 255, G: 214, B: 0, A: 255}
)

func InputStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Accent).
		Padding(0, 1).
		Width(max(width-4, 1))
}

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(Muted).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(width)
}

func ErrorStatusStyle(width int) lipgloss.Style {
	return StatusStyle(width).Foreground(Warning).Bold(true)
}

func TabStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(Muted).
		Padding(0, 1)
}

func ActiveTabStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(Accent).
		Bold(true).
		Padding(0, 1)
}

func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("141")).
		Bold(true)
}

func PanelTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true).
		Underline(true)
}

func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Muted)
}

func BadgeStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(Good).
		Padding(0, 1)
}

func UserStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("39")).
		Padding(0, 1)
}

func AssistantStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("214")).
		Padding(0, 1)
}

func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(Warning).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(Warning).
		Padding(0, 1)
}

func TransientStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(Muted).
		Italic(true).
		Padding(0, 2)
}

func StepStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func LinkStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("75")).
		Underline(true)
}

// StrengthStyle colors the strength label the way the band reads.
func StrengthStyle(label string) lipgloss.Style {
	switch label {
	case "Subtle":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	case "Balanced":
		return lipgloss.NewStyle().Foreground(Good)
	default:
		return lipgloss.NewStyle().Foreground(Warning)
	}
}

// BudgetStyle colors the spend line by budget status.
func BudgetStyle(status string) lipgloss.Style {
	switch status {
	case "over_budget":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	case "near_budget":
		return lipgloss.NewStyle().Foreground(Warning)
	default:
		return lipgloss.NewStyle().Foreground(Good)
	}
}
