package update

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/RoriDecor/internal/eventbus"
	"github.com/Rorical/RoriDecor/internal/imagecache"
	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/internal/selection"
)

type recordingSender struct {
	mu     sync.Mutex
	events []eventbus.UIEvent
	err    error
}

func (r *recordingSender) SendToCore(e eventbus.UIEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSender) last(t *testing.T) eventbus.UIEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events)
	return r.events[len(r.events)-1]
}

type mapLoader map[string]image.Image

func (m mapLoader) Load(_ context.Context, src imagecache.Source) (image.Image, error) {
	img, ok := m[src.Key()]
	if !ok {
		return nil, errors.New("not found")
	}
	return img, nil
}

func newModel() *models.AppModel {
	return &models.AppModel{
		Input:     textinput.New(),
		Width:     120,
		Height:    40,
		EditColor: "#ffffff",
		Session: models.SessionSnapshot{
			Settings: models.Settings{
				RoomCategory: "Living Room",
				Style:        "Modern",
				Provider:     "offline",
				Budget:       models.DefaultBudget,
				Strength:     models.DefaultStrength,
			},
		},
	}
}

// editReady puts the model in edit mode with a 1024x768 image on the canvas.
func editReady(m *models.AppModel) {
	m.Session.Mode = models.ModeEdit
	m.Session.ActiveImageRef = "/uploads/room.jpg"
	m.Image = image.NewRGBA(image.Rect(0, 0, 1024, 768))
	refreshSurface(m)
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestEnterInCreateModeUploadsPath(t *testing.T) {
	m := newModel()
	s := &recordingSender{}
	m.Input.SetValue("  /tmp/room.jpg ")

	HandleUpdate(m, key(tea.KeyEnter), Deps{Sender: s})

	assert.Equal(t, eventbus.UploadEvent{Path: "/tmp/room.jpg"}, s.last(t))
	assert.Empty(t, m.Input.Value())
}

func TestEnterWithoutTextGenerates(t *testing.T) {
	m := newModel()
	s := &recordingSender{}
	HandleUpdate(m, key(tea.KeyEnter), Deps{Sender: s})
	assert.Equal(t, eventbus.GenerateEvent{}, s.last(t))
}

func TestBusySessionDisablesRequests(t *testing.T) {
	m := newModel()
	m.Session.Busy = true
	m.Session.BusyOp = "generate"
	s := &recordingSender{}

	HandleUpdate(m, key(tea.KeyCtrlG), Deps{Sender: s})

	assert.Empty(t, s.events)
	assert.Equal(t, "Busy: generate", m.Notice)
}

func TestPlanModeSendsText(t *testing.T) {
	m := newModel()
	m.Session.Mode = models.ModePlan
	s := &recordingSender{}
	m.Input.SetValue("make it cozy")

	HandleUpdate(m, key(tea.KeyEnter), Deps{Sender: s})
	assert.Equal(t, eventbus.PlanEvent{Text: "make it cozy"}, s.last(t))

	HandleUpdate(m, key(tea.KeyEnter), Deps{Sender: s})
	assert.Len(t, s.events, 1, "empty text is ignored")
}

func TestTabCyclesModes(t *testing.T) {
	m := newModel()
	s := &recordingSender{}

	HandleUpdate(m, key(tea.KeyTab), Deps{Sender: s})
	assert.Equal(t, eventbus.ModeEvent{Mode: models.ModePlan}, s.last(t))

	HandleUpdate(m, key(tea.KeyShiftTab), Deps{Sender: s})
	assert.Equal(t, eventbus.ModeEvent{Mode: models.ModeEdit}, s.last(t))
}

func TestEditRequiresMask(t *testing.T) {
	m := newModel()
	editReady(m)
	s := &recordingSender{}

	HandleUpdate(m, key(tea.KeyEnter), Deps{Sender: s})
	assert.Empty(t, s.events)
	assert.Equal(t, "Select a region on the image first", m.Notice)

	m.Session.MaskRef = "/masks/7.png"
	HandleUpdate(m, key(tea.KeyEnter), Deps{Sender: s})
	assert.Equal(t, eventbus.EditEvent{Operation: models.Recolor("#ffffff")}, s.last(t))
}

func TestEditKindCycleAndReplace(t *testing.T) {
	m := newModel()
	editReady(m)
	m.Session.MaskRef = "/masks/7.png"
	s := &recordingSender{}

	HandleUpdate(m, key(tea.KeyCtrlK), Deps{Sender: s})
	assert.Equal(t, models.EditReplace, m.EditKind)

	m.Input.SetValue("velvet sofa")
	HandleUpdate(m, key(tea.KeyEnter), Deps{Sender: s})
	assert.Equal(t, eventbus.EditEvent{Operation: models.Replace("velvet sofa")}, s.last(t))

	HandleUpdate(m, key(tea.KeyCtrlK), Deps{Sender: s})
	HandleUpdate(m, key(tea.KeyEnter), Deps{Sender: s})
	assert.Equal(t, eventbus.EditEvent{Operation: models.Remove()}, s.last(t))
}

func TestSettingsKeys(t *testing.T) {
	m := newModel()
	s := &recordingSender{}

	HandleUpdate(m, key(tea.KeyCtrlR), Deps{Sender: s})
	ev := s.last(t).(eventbus.SettingsEvent)
	assert.Equal(t, "Bedroom", ev.Settings.RoomCategory)

	HandleUpdate(m, key(tea.KeyPgUp), Deps{Sender: s})
	ev = s.last(t).(eventbus.SettingsEvent)
	assert.InDelta(t, 0.60, ev.Settings.Strength, 1e-9)
}

func TestCommands(t *testing.T) {
	m := newModel()
	s := &recordingSender{}

	run := func(line string) {
		m.Input.SetValue(line)
		HandleUpdate(m, key(tea.KeyEnter), Deps{Sender: s})
	}

	run(":budget 1000")
	assert.Equal(t, int64(1000), s.last(t).(eventbus.SettingsEvent).Settings.Budget)

	run(":room kitchen")
	assert.Equal(t, "Kitchen", s.last(t).(eventbus.SettingsEvent).Settings.RoomCategory)

	run(":strength 80%")
	assert.InDelta(t, 0.8, s.last(t).(eventbus.SettingsEvent).Settings.Strength, 1e-9)

	run(":open /tmp/a.png")
	assert.Equal(t, eventbus.UploadEvent{Path: "/tmp/a.png"}, s.last(t))

	n := len(s.events)
	run(":bogus")
	assert.Len(t, s.events, n)
	assert.Contains(t, m.Notice, "unknown command")

	run(":budget -5")
	assert.Len(t, s.events, n)

	run(":color #123")
	assert.Equal(t, "#123", m.EditColor)
}

func TestSendFailureShowsNotice(t *testing.T) {
	m := newModel()
	s := &recordingSender{err: eventbus.ErrFull}
	HandleUpdate(m, key(tea.KeyCtrlD), Deps{Sender: s})
	assert.Contains(t, m.Notice, "Error sending event")
}

func TestCoreEventLoadsActiveImage(t *testing.T) {
	m := newModel()
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	loader := mapLoader{"file:/tmp/room.jpg": img}
	deps := Deps{Images: loader}

	snap := m.Session
	snap.OriginalFile = "/tmp/room.jpg"
	snap.OriginalImageRef = "/uploads/room.jpg"
	snap.ActiveImageRef = "/uploads/room.jpg"

	cmd := HandleUpdate(m, CoreEventMsg{Event: eventbus.StateUpdateEvent{Session: snap}}, deps)
	require.NotNil(t, cmd)
	assert.Equal(t, "file:/tmp/room.jpg", m.ImageKey)

	HandleUpdate(m, loadFor(t, loader, SlotImage, imagecache.LocalFile("/tmp/room.jpg")), deps)
	assert.Same(t, img, m.Image)
	assert.True(t, m.Surface.Valid())
	assert.Equal(t, 640, m.Surface.NativeWidth)

	// An edit moves the active image to the backend URL.
	snap.ActiveImageRef = "/edits/1.png"
	snap.ActiveImageURL = "http://backend/edits/1.png"
	HandleUpdate(m, CoreEventMsg{Event: eventbus.StateUpdateEvent{Session: snap}}, deps)
	assert.Equal(t, "ref:http://backend/edits/1.png", m.ImageKey)
	assert.Nil(t, m.Image)
}

func loadFor(t *testing.T, loader ImageLoader, slot ImageSlot, src imagecache.Source) tea.Msg {
	t.Helper()
	msg := loadImage(loader, slot, src)()
	loaded, ok := msg.(ImageLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.Err)
	return loaded
}

func TestStaleImageLoadIsDropped(t *testing.T) {
	m := newModel()
	m.ImageKey = "ref:/edits/2.png"
	HandleImageLoaded(m, ImageLoadedMsg{Slot: SlotImage, Key: "ref:/edits/1.png", Image: image.NewRGBA(image.Rect(0, 0, 4, 4))})
	assert.Nil(t, m.Image)
}

func TestMaskClearsWhenSessionDropsIt(t *testing.T) {
	m := newModel()
	m.Mask = image.NewRGBA(image.Rect(0, 0, 4, 4))
	m.MaskKey = "ref:/masks/7.png"

	HandleCoreEvent(m, CoreEventMsg{Event: eventbus.StateUpdateEvent{Session: m.Session}}, Deps{})
	assert.Nil(t, m.Mask)
	assert.Empty(t, m.MaskKey)
}

func mouse(x, y int, action tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func TestClickSendsPointInNativePixels(t *testing.T) {
	m := newModel()
	editReady(m)
	s := &recordingSender{}
	deps := Deps{Sender: s}

	HandleUpdate(m, mouse(36, 18, tea.MouseActionPress), deps)
	HandleUpdate(m, mouse(36, 18, tea.MouseActionRelease), deps)

	assert.Equal(t, eventbus.SegmentEvent{Region: selection.Region{Kind: selection.KindPoint, X: 512, Y: 384}}, s.last(t))
}

func TestDragSendsNormalizedBox(t *testing.T) {
	m := newModel()
	editReady(m)
	s := &recordingSender{}
	deps := Deps{Sender: s}

	HandleUpdate(m, mouse(41, 25, tea.MouseActionPress), deps)
	HandleUpdate(m, mouse(30, 20, tea.MouseActionMotion), deps)
	HandleUpdate(m, mouse(11, 15, tea.MouseActionRelease), deps)

	start, _ := m.Surface.ToNative(41, 50)
	end, _ := m.Surface.ToNative(11, 30)
	want := selection.Classify(start, end)
	require.Equal(t, selection.KindBox, want.Kind)
	assert.Equal(t, eventbus.SegmentEvent{Region: want}, s.last(t))
	assert.LessOrEqual(t, want.XMin, want.XMax)
	assert.LessOrEqual(t, want.YMin, want.YMax)
}

func TestLeavingCanvasCancelsGesture(t *testing.T) {
	m := newModel()
	editReady(m)
	s := &recordingSender{}
	deps := Deps{Sender: s}

	HandleUpdate(m, mouse(36, 18, tea.MouseActionPress), deps)
	HandleUpdate(m, mouse(110, 18, tea.MouseActionMotion), deps)
	HandleUpdate(m, mouse(36, 18, tea.MouseActionRelease), deps)

	assert.Empty(t, s.events)
	assert.False(t, m.Gesture.Active())
}

func TestGesturesIgnoredOutsideEditMode(t *testing.T) {
	m := newModel()
	editReady(m)
	m.Session.Mode = models.ModeCreate
	s := &recordingSender{}
	deps := Deps{Sender: s}

	HandleUpdate(m, mouse(36, 18, tea.MouseActionPress), deps)
	HandleUpdate(m, mouse(36, 18, tea.MouseActionRelease), deps)
	assert.Empty(t, s.events)
}

func TestResizeCancelsGestureAndRefits(t *testing.T) {
	m := newModel()
	editReady(m)
	before := m.Surface

	HandleUpdate(m, mouse(36, 18, tea.MouseActionPress), Deps{})
	require.True(t, m.Gesture.Active())

	HandleUpdate(m, tea.WindowSizeMsg{Width: 200, Height: 60}, Deps{})
	assert.False(t, m.Gesture.Active())
	assert.NotEqual(t, before, m.Surface)
}

func TestClickJustPastImageEdgeIsIgnored(t *testing.T) {
	m := newModel()
	editReady(m)
	s := &recordingSender{}
	deps := Deps{Sender: s}

	col := int(m.Surface.OriginX + m.Surface.DisplayWidth)
	row := int(m.Surface.OriginY+m.Surface.DisplayHeight) / 2
	require.Equal(t, 71, col)
	require.Equal(t, 31, row)

	HandleUpdate(m, mouse(col, row, tea.MouseActionPress), deps)
	HandleUpdate(m, mouse(col, row, tea.MouseActionRelease), deps)
	assert.Empty(t, s.events)

	HandleUpdate(m, mouse(col, 18, tea.MouseActionPress), deps)
	HandleUpdate(m, mouse(col, 18, tea.MouseActionRelease), deps)
	assert.Empty(t, s.events)
}

func TestLastDrawnPixelStaysInsideImage(t *testing.T) {
	m := newModel()
	editReady(m)
	s := &recordingSender{}
	deps := Deps{Sender: s}

	HandleUpdate(m, mouse(70, 30, tea.MouseActionPress), deps)
	HandleUpdate(m, mouse(70, 30, tea.MouseActionRelease), deps)
	region := s.last(t).(eventbus.SegmentEvent).Region
	assert.Less(t, region.X, 1024)
	assert.Less(t, region.Y, 768)

	// An upscaled image rounds its last pixel up to the width; it is clamped.
	m.Image = image.NewRGBA(image.Rect(0, 0, 10, 8))
	refreshSurface(m)
	col := int(m.Surface.OriginX+m.Surface.DisplayWidth) - 1
	row := (int(m.Surface.OriginY+m.Surface.DisplayHeight) - 1) / 2
	HandleUpdate(m, mouse(col, row, tea.MouseActionPress), deps)
	HandleUpdate(m, mouse(col, row, tea.MouseActionRelease), deps)
	assert.Equal(t, eventbus.SegmentEvent{Region: selection.Region{Kind: selection.KindPoint, X: 9, Y: 7}}, s.last(t))
}

func TestDragToFarCornerStaysInsideImage(t *testing.T) {
	m := newModel()
	m.Session.Mode = models.ModeEdit
	m.Session.ActiveImageRef = "/uploads/small.png"
	m.Image = image.NewRGBA(image.Rect(0, 0, 10, 8))
	refreshSurface(m)
	s := &recordingSender{}
	deps := Deps{Sender: s}

	x0, y0 := int(m.Surface.OriginX), int(m.Surface.OriginY)/2
	x1 := int(m.Surface.OriginX+m.Surface.DisplayWidth) - 1
	y1 := (int(m.Surface.OriginY+m.Surface.DisplayHeight) - 1) / 2
	HandleUpdate(m, mouse(x0, y0, tea.MouseActionPress), deps)
	HandleUpdate(m, mouse(x1, y1, tea.MouseActionRelease), deps)

	region := s.last(t).(eventbus.SegmentEvent).Region
	require.Equal(t, selection.KindBox, region.Kind)
	assert.Equal(t, 0, region.XMin)
	assert.Equal(t, 0, region.YMin)
	assert.Equal(t, 9, region.XMax)
	assert.Equal(t, 7, region.YMax)
}
