package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Rorical/RoriDecor/internal/budget"
	"github.com/Rorical/RoriDecor/internal/models"
)

const (
	matchStrength    = models.DefaultStrength
	mismatchStrength = 0.75
	remodelStrength  = 0.85
)

// UploadResult is the typed outcome of the upload step.
type UploadResult struct {
	LocalFile      string
	ImageRef       string
	ImageURL       string
	DetectedRoom   string
	RoomConfidence float64
}

// SessionState is the single shared session record. Every mutation goes
// through a named transition so the mask and busy invariants hold in one place.
type SessionState struct {
	mu sync.RWMutex

	mode   models.Mode
	busy   bool
	busyOp string
	status string
	err    string

	originalFile string
	originalRef  string
	activeRef    string
	activeURL    string
	maskRef      string
	maskURL      string

	settings       models.Settings
	inferredRoom   string
	roomConfidence float64
	detections     []models.DetectedItem
	detectionRan   bool
	suggestions    map[string][]models.Suggestion

	messages []models.Message
	budget   *budget.Tracker
	history  []models.HistoryItem
	device   string
}

func NewSessionState(settings models.Settings) *SessionState {
	if settings.Strength <= 0 || settings.Strength > 1 {
		settings.Strength = models.DefaultStrength
	}
	return &SessionState{
		mode:     models.ModeCreate,
		settings: settings,
		messages: make([]models.Message, 0),
		budget:   budget.NewTracker(settings.Budget),
	}
}

// Acquire marks op as in flight. check runs under the lock against the
// current state and may veto the operation before busy is considered; the
// returned snapshot is what the operation works from.
func (s *SessionState) Acquire(op string, check func(models.SessionSnapshot) error) (models.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if check != nil {
		if err := check(snap); err != nil {
			return snap, err
		}
	}
	if s.busy {
		return snap, ErrBusy
	}
	s.busy = true
	s.busyOp = op
	s.err = ""
	snap.Busy = true
	snap.BusyOp = op
	snap.Error = ""
	return snap, nil
}

// Release ends the in-flight operation.
func (s *SessionState) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.busyOp = ""
}

func (s *SessionState) IsBusy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

func (s *SessionState) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// SetError records a failure for display. A nil error clears it.
func (s *SessionState) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.err = ""
		return
	}
	s.err = err.Error()
}

func (s *SessionState) SetDevice(device string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = device
}

// ApplyUploadResult installs a freshly uploaded image as both the original and
// the active image. Everything derived from the previous image is dropped.
func (s *SessionState) ApplyUploadResult(r UploadResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.originalFile = r.LocalFile
	s.originalRef = r.ImageRef
	s.activeRef = r.ImageRef
	s.activeURL = r.ImageURL
	s.maskRef = ""
	s.maskURL = ""
	s.detections = nil
	s.suggestions = nil
	s.detectionRan = false
	s.inferredRoom = ""
	s.roomConfidence = 0

	if r.DetectedRoom != "" {
		s.inferredRoom = r.DetectedRoom
		s.roomConfidence = r.RoomConfidence
		s.autoSelectRoom(r.DetectedRoom)
	}
	s.status = "Image uploaded"
}

// ApplySegmentationResult binds a new mask. The result is dropped when the
// user has left edit mode while the request was in flight.
func (s *SessionState) ApplySegmentationResult(maskRef, maskURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != models.ModeEdit {
		return false
	}
	s.maskRef = maskRef
	s.maskURL = maskURL
	s.status = "Mask selected"
	return true
}

// ApplyEditResult replaces the active image and clears the mask.
func (s *SessionState) ApplyEditResult(imageRef, imageURL, action string, cost int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeRef = imageRef
	s.activeURL = imageURL
	s.maskRef = ""
	s.maskURL = ""
	s.budget.Record(action, cost)
	s.status = action + " applied"
}

// ApplyGenerationResult replaces the active image with a full redesign.
func (s *SessionState) ApplyGenerationResult(imageRef, imageURL string, cost int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeRef = imageRef
	s.activeURL = imageURL
	s.maskRef = ""
	s.maskURL = ""
	s.budget.Record("Generation", cost)
	s.status = "Redesign ready"
}

// ApplyDetections stores a detection pass. A non-empty inferred room is
// auto-selected and the strength heuristic runs.
func (s *SessionState) ApplyDetections(items []models.DetectedItem, suggestions map[string][]models.Suggestion, inferred string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.detections = append([]models.DetectedItem(nil), items...)
	s.suggestions = suggestions
	s.detectionRan = true
	s.status = fmt.Sprintf("Detected %d items", len(items))
	if inferred == "" {
		return
	}
	if inferred != s.inferredRoom {
		s.roomConfidence = 0
	}
	s.inferredRoom = inferred
	s.autoSelectRoom(inferred)
	s.adjustStrength()
}

// SetMode switches tabs. Leaving or entering a mode always drops the mask.
func (s *SessionState) SetMode(mode models.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.maskRef = ""
	s.maskURL = ""
}

func (s *SessionState) ClearMask() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maskRef = ""
	s.maskURL = ""
}

// UpdateSettings replaces the generation settings. A changed room category
// runs the strength heuristic, which may override the supplied strength.
func (s *SessionState) UpdateSettings(next models.Settings) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomChanged := next.RoomCategory != s.settings.RoomCategory
	if next.Strength < 0 {
		next.Strength = 0
	}
	if next.Strength > 1 {
		next.Strength = 1
	}
	s.settings = next
	s.budget.SetCeiling(next.Budget)
	if !roomChanged {
		return ""
	}
	return s.adjustStrength()
}

// autoSelectRoom switches the target room to the inferred one and restores
// the balanced strength. Caller holds the lock.
func (s *SessionState) autoSelectRoom(room string) {
	if s.settings.RoomCategory == room {
		return
	}
	s.settings.RoomCategory = room
	s.settings.Strength = matchStrength
}

// adjustStrength picks the strength for turning the inferred room into the
// target room. Only a bedroom gets the remodel boost. Caller holds the lock.
func (s *SessionState) adjustStrength() string {
	detected, target := s.inferredRoom, s.settings.RoomCategory
	switch {
	case detected == "":
		return ""
	case detected == target:
		s.settings.Strength = matchStrength
		return ""
	case detected == "Bedroom":
		s.settings.Strength = remodelStrength
		tip := fmt.Sprintf("Tip: I see a Bedroom but you want a %s. I've boosted creativity to 85%% to help remodel the furniture.", target)
		s.appendLocked(models.Assistant, tip, false)
		return tip
	default:
		s.settings.Strength = mismatchStrength
		return ""
	}
}

// AppendMessage adds a transcript entry and returns its id.
func (s *SessionState) AppendMessage(role models.Role, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(role, content, false)
}

// AppendWarning adds an entry rendered as a warning.
func (s *SessionState) AppendWarning(content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.appendLocked(models.Assistant, content, false)
	s.messages[len(s.messages)-1].Warning = true
	return id
}

// AddTransient appends a placeholder that is later removed by id.
func (s *SessionState) AddTransient(content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(models.Assistant, content, true)
}

// RemoveTransient deletes a transient entry. Permanent entries are never
// removed.
func (s *SessionState) RemoveTransient(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.messages {
		if m.ID == id && m.Transient {
			s.messages = append(s.messages[:i:i], s.messages[i+1:]...)
			return true
		}
	}
	return false
}

func (s *SessionState) appendLocked(role models.Role, content string, transient bool) string {
	id := uuid.NewString()
	s.messages = append(s.messages, models.Message{
		ID:        id,
		Role:      role,
		Content:   content,
		Transient: transient,
	})
	return id
}

// SetHistory replaces the displayed history, newest first.
func (s *SessionState) SetHistory(items []models.HistoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]models.HistoryItem(nil), items...)
}

// Snapshot returns an immutable copy for rendering.
func (s *SessionState) Snapshot() models.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *SessionState) snapshot() models.SessionSnapshot {
	snap := models.SessionSnapshot{
		Mode:             s.mode,
		Busy:             s.busy,
		BusyOp:           s.busyOp,
		Status:           s.status,
		Error:            s.err,
		OriginalFile:     s.originalFile,
		OriginalImageRef: s.originalRef,
		ActiveImageRef:   s.activeRef,
		ActiveImageURL:   s.activeURL,
		MaskRef:          s.maskRef,
		MaskURL:          s.maskURL,
		Settings:         s.settings,
		InferredRoom:     s.inferredRoom,
		RoomConfidence:   s.roomConfidence,
		DetectionRan:     s.detectionRan,
		Budget:           s.budget.Summary(),
		Device:           s.device,
	}
	snap.Detections = append([]models.DetectedItem(nil), s.detections...)
	snap.Messages = append([]models.Message(nil), s.messages...)
	snap.History = append([]models.HistoryItem(nil), s.history...)
	if s.suggestions != nil {
		snap.OnlineSuggestions = make(map[string][]models.Suggestion, len(s.suggestions))
		for k, v := range s.suggestions {
			snap.OnlineSuggestions[k] = append([]models.Suggestion(nil), v...)
		}
	}
	return snap
}
