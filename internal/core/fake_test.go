package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rorical/RoriDecor/internal/backend"
	"github.com/Rorical/RoriDecor/internal/history"
	"github.com/Rorical/RoriDecor/internal/models"
)

// fakeBackend records calls and answers with the configured funcs.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	upload   func(backend.ImageFile) (*backend.UploadResponse, error)
	generate func(backend.GenerateRequest) (*backend.GenerateResponse, error)
	detect   func(backend.DetectRequest) (*backend.DetectResponse, error)
	plan     func(backend.PlanRequest) (*backend.PlanResponse, error)
	segment  func(context.Context, backend.SegmentRequest) (*backend.SegmentResponse, error)
	recolor  func(backend.RecolorRequest) (*backend.EditResponse, error)
	inpaint  func(backend.InpaintRequest) (*backend.EditResponse, error)
	health   func() (*backend.HealthResponse, error)
	fetch    func(string) ([]byte, error)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: make(map[string]int),
		upload: func(backend.ImageFile) (*backend.UploadResponse, error) {
			return &backend.UploadResponse{ImagePath: "/uploads/room.jpg"}, nil
		},
		segment: func(context.Context, backend.SegmentRequest) (*backend.SegmentResponse, error) {
			return &backend.SegmentResponse{MaskPath: "/masks/7.png", MaskURL: "/masks/7.png"}, nil
		},
		detect: func(backend.DetectRequest) (*backend.DetectResponse, error) {
			return &backend.DetectResponse{}, nil
		},
	}
}

func (f *fakeBackend) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeBackend) Upload(_ context.Context, image backend.ImageFile) (*backend.UploadResponse, error) {
	f.record("upload")
	return f.upload(image)
}

func (f *fakeBackend) Generate(_ context.Context, req backend.GenerateRequest) (*backend.GenerateResponse, error) {
	f.record("generate")
	return f.generate(req)
}

func (f *fakeBackend) Detect(_ context.Context, req backend.DetectRequest) (*backend.DetectResponse, error) {
	f.record("detect")
	return f.detect(req)
}

func (f *fakeBackend) Plan(_ context.Context, req backend.PlanRequest) (*backend.PlanResponse, error) {
	f.record("plan")
	return f.plan(req)
}

func (f *fakeBackend) Segment(ctx context.Context, req backend.SegmentRequest) (*backend.SegmentResponse, error) {
	f.record("segment")
	return f.segment(ctx, req)
}

func (f *fakeBackend) Recolor(_ context.Context, req backend.RecolorRequest) (*backend.EditResponse, error) {
	f.record("recolor")
	return f.recolor(req)
}

func (f *fakeBackend) Inpaint(_ context.Context, req backend.InpaintRequest) (*backend.EditResponse, error) {
	f.record("inpaint")
	return f.inpaint(req)
}

func (f *fakeBackend) Health(context.Context) (*backend.HealthResponse, error) {
	f.record("health")
	return f.health()
}

func (f *fakeBackend) Fetch(_ context.Context, ref string) ([]byte, error) {
	f.record("fetch")
	if f.fetch == nil {
		return []byte("remote:" + ref), nil
	}
	return f.fetch(ref)
}

func (f *fakeBackend) Resolve(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http") {
		return ref
	}
	return "http://backend" + ref
}

// memoryHistory is an in-memory history.Store.
type memoryHistory struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (m *memoryHistory) Append(_ context.Context, e history.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryHistory) List(context.Context) ([]history.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]history.Entry(nil), m.entries...), nil
}

type stubRefiner struct {
	out string
	err error
}

func (r stubRefiner) Refine(context.Context, string) (string, error) {
	return r.out, r.err
}

func defaultSettings() models.Settings {
	return models.Settings{
		RoomCategory: "Living Room",
		Style:        "Modern",
		Budget:       models.DefaultBudget,
		Provider:     "offline",
		Strength:     models.DefaultStrength,
	}
}

func newTestService(t *testing.T, fb *fakeBackend, opts Options) *SessionService {
	t.Helper()
	if opts.Settings == (models.Settings{}) {
		opts.Settings = defaultSettings()
	}
	svc := NewSessionService(fb, nil, zap.NewNop(), opts)
	t.Cleanup(svc.Stop)
	return svc
}

// uploadImage writes a fake photo and uploads it through svc.
func uploadImage(t *testing.T, svc *SessionService) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "room.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpegdata"), 0o600))
	require.NoError(t, svc.Upload(context.Background(), path))
	return path
}

// selectMask uploads, switches to edit mode and segments a point.
func selectMask(t *testing.T, svc *SessionService) {
	t.Helper()
	uploadImage(t, svc)
	svc.State().SetMode(models.ModeEdit)
	require.NoError(t, svc.Segment(context.Background(), pointRegion(120, 80)))
	require.Equal(t, "/masks/7.png", svc.Snapshot().MaskRef)
}
