package components

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/ui/styles"
)

var stepLine = regexp.MustCompile(`^(\d+)\.\s+(\S+)(.*)$`)

// RenderTranscript renders the plan conversation and keeps the newest lines
// that fit in height.
func RenderTranscript(messages []models.Message, width, height int) string {
	if len(messages) == 0 {
		return styles.MutedStyle().Render("Describe the change you want and press enter.")
	}

	var blocks []string
	for _, msg := range messages {
		blocks = append(blocks, renderMessage(msg, width))
	}
	return tail(strings.Join(blocks, "\n"), height)
}

func renderMessage(msg models.Message, width int) string {
	inner := max(width-3, 1)
	switch {
	case msg.Transient:
		return styles.TransientStyle().Width(inner).Render(msg.Content)
	case msg.Warning:
		return styles.WarningStyle().Width(inner).Render(msg.Content)
	case msg.Role == models.User:
		return styles.UserStyle().Width(inner).Render("You: " + msg.Content)
	case msg.Role == models.Assistant:
		return styles.AssistantStyle().Width(inner).Render(renderPlanText(msg.Content))
	default:
		return styles.MutedStyle().Width(inner).Render(msg.Content)
	}
}

// renderPlanText highlights numbered steps and suggestion links.
func renderPlanText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case stepLine.MatchString(line):
			m := stepLine.FindStringSubmatch(line)
			lines[i] = m[1] + ". " + styles.StepStyle().Render(m[2]) + m[3]
		case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
			indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
			lines[i] = indent + styles.LinkStyle().Render(trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

func tail(s string, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
