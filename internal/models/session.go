package models

import (
	"fmt"
	"math"

	"github.com/Rorical/RoriDecor/internal/budget"
)

// Mode is the active tab of the session.
type Mode int

const (
	ModeCreate Mode = iota
	ModePlan
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModePlan:
		return "plan"
	case ModeEdit:
		return "edit"
	default:
		return "create"
	}
}

// ParseMode accepts the names produced by Mode.String.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "create":
		return ModeCreate, true
	case "plan":
		return ModePlan, true
	case "edit":
		return ModeEdit, true
	}
	return ModeCreate, false
}

var (
	RoomCategories = []string{"Living Room", "Bedroom", "Kitchen", "Bathroom", "Dining Room", "Office"}
	Styles         = []string{"Modern", "Minimalist", "Vintage", "Professional"}
	Providers      = []string{"offline", "replicate", "hf"}
)

// IsRoomCategory reports whether name is one of RoomCategories.
func IsRoomCategory(name string) bool {
	for _, c := range RoomCategories {
		if c == name {
			return true
		}
	}
	return false
}

const (
	DefaultStrength = 0.55
	DefaultBudget   = 50000
)

// Settings is the generation configuration bundle.
type Settings struct {
	RoomCategory string
	Style        string
	Budget       int64
	Provider     string
	Strength     float64
}

// StrengthPercent is the strength as a whole percentage.
func (s Settings) StrengthPercent() int {
	return int(math.Round(s.Strength * 100))
}

// StrengthLabel names the strength band shown next to the percentage.
func StrengthLabel(pct int) string {
	switch {
	case pct < 50:
		return "Subtle"
	case pct < 75:
		return "Balanced"
	default:
		return "Aggressive"
	}
}

type DetectedItem struct {
	Label      string
	Category   string
	Confidence float64
}

type Suggestion struct {
	Title       string
	URL         string
	Vendor      string
	ApproxPrice float64
}

type PlanStep struct {
	Action      string
	Target      string
	Reason      string
	Suggestions []Suggestion
}

type Plan struct {
	Summary string
	Steps   []PlanStep
}

type EditKind int

const (
	EditRecolor EditKind = iota
	EditReplace
	EditRemove
)

func (k EditKind) String() string {
	switch k {
	case EditReplace:
		return "replace"
	case EditRemove:
		return "remove"
	default:
		return "recolor"
	}
}

// RemovePrompt is sent to the inpainting endpoint for removals.
const RemovePrompt = "empty space, background, wall, floor"

// EditOperation is exactly one of recolor, replace or remove.
type EditOperation struct {
	Kind   EditKind
	Color  string
	Prompt string
}

func Recolor(color string) EditOperation  { return EditOperation{Kind: EditRecolor, Color: color} }
func Replace(prompt string) EditOperation { return EditOperation{Kind: EditReplace, Prompt: prompt} }
func Remove() EditOperation               { return EditOperation{Kind: EditRemove} }

// HistoryItem is a past session summary for display.
type HistoryItem struct {
	ProjectName string
	TotalCost   int64
	Actions     []string
}

// SessionSnapshot is an immutable copy of the session state. Rendering works
// only from snapshots.
type SessionSnapshot struct {
	Mode              Mode
	Busy              bool
	BusyOp            string
	Status            string
	Error             string
	OriginalFile      string
	OriginalImageRef  string
	ActiveImageRef    string
	ActiveImageURL    string
	MaskRef           string
	MaskURL           string
	Settings          Settings
	InferredRoom      string
	RoomConfidence    float64
	Detections        []DetectedItem
	DetectionRan      bool
	OnlineSuggestions map[string][]Suggestion
	Messages          []Message
	Budget            budget.Summary
	History           []HistoryItem
	Device            string
}

// CanSubmitEdit reports whether the apply-edit control is enabled.
func (s SessionSnapshot) CanSubmitEdit() bool {
	return s.Mode == ModeEdit && s.MaskRef != "" && !s.Busy
}

// HasImage reports whether an image has been uploaded.
func (s SessionSnapshot) HasImage() bool {
	return s.ActiveImageRef != ""
}

// ConfidenceLabel formats the room classifier confidence, e.g. "92%".
func (s SessionSnapshot) ConfidenceLabel() string {
	if s.InferredRoom == "" || s.RoomConfidence <= 0 {
		return ""
	}
	return fmt.Sprintf("%d%%", int(math.Round(s.RoomConfidence*100)))
}

// RoomBadge is the "Detected: ..." badge text, empty when nothing was inferred.
func (s SessionSnapshot) RoomBadge() string {
	if s.InferredRoom == "" {
		return ""
	}
	if label := s.ConfidenceLabel(); label != "" {
		return fmt.Sprintf("Detected: %s (%s)", s.InferredRoom, label)
	}
	return "Detected: " + s.InferredRoom
}
