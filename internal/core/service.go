package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Rorical/RoriDecor/internal/backend"
	"github.com/Rorical/RoriDecor/internal/eventbus"
	"github.com/Rorical/RoriDecor/internal/history"
	"github.com/Rorical/RoriDecor/internal/models"
)

const (
	opUpload   = "upload"
	opGenerate = "generate"
	opSegment  = "segment"
	opEdit     = "edit"
	opDetect   = "detect"
	opPlan     = "plan"
	opHealth   = "health"
	opHistory  = "history"
)

// Backend is the subset of the backend client the session drives.
type Backend interface {
	Upload(ctx context.Context, image backend.ImageFile) (*backend.UploadResponse, error)
	Generate(ctx context.Context, req backend.GenerateRequest) (*backend.GenerateResponse, error)
	Detect(ctx context.Context, req backend.DetectRequest) (*backend.DetectResponse, error)
	Plan(ctx context.Context, req backend.PlanRequest) (*backend.PlanResponse, error)
	Segment(ctx context.Context, req backend.SegmentRequest) (*backend.SegmentResponse, error)
	Recolor(ctx context.Context, req backend.RecolorRequest) (*backend.EditResponse, error)
	Inpaint(ctx context.Context, req backend.InpaintRequest) (*backend.EditResponse, error)
	Health(ctx context.Context) (*backend.HealthResponse, error)
	Fetch(ctx context.Context, ref string) ([]byte, error)
	Resolve(ref string) string
}

// PromptRefiner rewrites a short replace prompt into a detailed one.
type PromptRefiner interface {
	Refine(ctx context.Context, prompt string) (string, error)
}

// Options configures a SessionService. History and Refiner are optional.
type Options struct {
	Settings        models.Settings
	RequestTimeout  time.Duration
	Captions        []string
	CaptionInterval time.Duration
	History         history.Store
	Refiner         PromptRefiner
}

// SessionService owns the session state and runs operations requested by the
// UI. At most one network-bound operation runs at a time.
type SessionService struct {
	backend  Backend
	history  history.Store
	refiner  PromptRefiner
	state    *SessionState
	eventBus *eventbus.EventBus
	logger   *zap.Logger
	opts     Options
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewSessionService(b Backend, eb *eventbus.EventBus, logger *zap.Logger, opts Options) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CaptionInterval <= 0 {
		opts.CaptionInterval = 3 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionService{
		backend:  b,
		history:  opts.History,
		refiner:  opts.Refiner,
		state:    NewSessionState(opts.Settings),
		eventBus: eb,
		logger:   logger,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start pushes the initial state and runs the event loop in a goroutine.
func (s *SessionService) Start() {
	s.pushStateToUI()
	go s.eventLoop()
}

// Stop cancels outstanding requests and waits for them to return.
func (s *SessionService) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *SessionService) State() *SessionState {
	return s.state
}

func (s *SessionService) Snapshot() models.SessionSnapshot {
	return s.state.Snapshot()
}

func (s *SessionService) eventLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.eventBus.UIToCore():
			if !ok {
				return
			}
			s.handleUIEvent(event)
		}
	}
}

func (s *SessionService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.UploadEvent:
		s.spawn(opUpload, func(ctx context.Context) error { return s.Upload(ctx, e.Path) })
	case eventbus.GenerateEvent:
		s.spawn(opGenerate, s.Generate)
	case eventbus.SegmentEvent:
		s.spawn(opSegment, func(ctx context.Context) error { return s.Segment(ctx, e.Region) })
	case eventbus.EditEvent:
		s.spawn(opEdit, func(ctx context.Context) error { return s.ApplyEdit(ctx, e.Operation) })
	case eventbus.PlanEvent:
		s.spawn(opPlan, func(ctx context.Context) error { return s.Plan(ctx, e.Text) })
	case eventbus.DetectEvent:
		s.spawn(opDetect, s.Detect)
	case eventbus.HealthEvent:
		s.spawn(opHealth, func(ctx context.Context) error {
			_, err := s.Health(ctx)
			return err
		})
	case eventbus.RefreshHistoryEvent:
		s.spawn(opHistory, s.RefreshHistory)
	case eventbus.ModeEvent:
		s.state.SetMode(e.Mode)
		s.pushStateToUI()
	case eventbus.ClearMaskEvent:
		s.state.ClearMask()
		s.pushStateToUI()
	case eventbus.SettingsEvent:
		s.state.UpdateSettings(e.Settings)
		s.pushStateToUI()
	}
}

// spawn runs fn off the event loop with the per-request deadline.
func (s *SessionService) spawn(op string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := s.requestContext()
		defer cancel()
		s.report(op, fn(ctx))
		s.pushStateToUI()
	}()
}

func (s *SessionService) requestContext() (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout > 0 {
		return context.WithTimeout(s.ctx, s.opts.RequestTimeout)
	}
	return context.WithCancel(s.ctx)
}

// report surfaces an operation error. Busy rejections are dropped.
func (s *SessionService) report(op string, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, ErrBusy):
		s.logger.Debug("operation rejected while busy", zap.String("op", op))
		return
	case IsPrecondition(err):
		s.logger.Info("operation precondition failed", zap.String("op", op), zap.Error(err))
	case backend.IsRequestFailure(err):
		s.logger.Error("operation failed", zap.String("op", op), zap.Error(err))
	default:
		s.logger.Error("operation error", zap.String("op", op), zap.Error(err))
	}
	s.state.SetError(err)
}

// begin acquires the busy gate for op and shows caption while it runs.
func (s *SessionService) begin(op, caption string, check func(models.SessionSnapshot) error) (models.SessionSnapshot, error) {
	snap, err := s.state.Acquire(op, check)
	if err != nil {
		return snap, err
	}
	s.state.SetStatus(caption)
	s.pushStateToUI()
	return snap, nil
}

// finish releases the busy gate. Every operation defers it right after begin.
func (s *SessionService) finish() {
	s.state.Release()
	s.pushStateToUI()
}

// recordSpend appends a history entry and refreshes the listing. Failures are
// logged and never reach the user.
func (s *SessionService) recordSpend(ctx context.Context, action string, cost int64) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(ctx, history.NewEntry(action, cost, time.Now())); err != nil {
		s.logger.Warn("history append failed", zap.String("action", action), zap.Error(err))
		return
	}
	if err := s.RefreshHistory(ctx); err != nil {
		s.logger.Warn("history refresh failed", zap.Error(err))
	}
}

// RefreshHistory reloads the history listing, newest first.
func (s *SessionService) RefreshHistory(ctx context.Context) error {
	if s.history == nil {
		return nil
	}
	entries, err := s.history.List(ctx)
	if err != nil {
		return err
	}
	items := make([]models.HistoryItem, 0, len(entries))
	for _, e := range history.Newest(entries) {
		items = append(items, models.HistoryItem{
			ProjectName: e.ProjectName,
			TotalCost:   e.TotalCost,
			Actions:     e.Actions,
		})
	}
	s.state.SetHistory(items)
	return nil
}

func (s *SessionService) pushStateToUI() {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.SendToUI(eventbus.StateUpdateEvent{Session: s.state.Snapshot()}); err != nil {
		s.logger.Warn("failed to send state to UI", zap.Error(err))
	}
}
