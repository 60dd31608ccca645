package models

import (
	"image"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/Rorical/RoriDecor/internal/selection"
)

// AppModel represents the UI state - only local UI concerns. Session data
// arrives from the core as snapshots.
type AppModel struct {
	Session SessionSnapshot
	Input   textinput.Model
	Spinner spinner.Model
	Notice  string // local feedback, cleared on the next key
	Width   int    // terminal width
	Height  int    // terminal height

	EditKind  EditKind
	EditColor string

	// Canvas state. Keys identify what is loaded so stale loads are dropped.
	Image        image.Image
	ImageKey     string
	Mask         image.Image
	MaskKey      string
	Original     image.Image
	OriginalKey  string
	ShowOriginal bool
	Surface      selection.Surface
	Gesture      selection.Tracker

	ComparisonEnabled bool
}

// DisplayedImage is the image the canvas shows.
func (m *AppModel) DisplayedImage() image.Image {
	if m.ShowOriginal && m.Original != nil {
		return m.Original
	}
	return m.Image
}
