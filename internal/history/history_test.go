package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/RoriDecor/internal/backend"
)

type fakeAPI struct {
	entries   []backend.HistoryEntry
	listCalls int
	failList  bool
}

func (f *fakeAPI) AppendHistory(_ context.Context, e backend.HistoryEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAPI) ListHistory(context.Context) ([]backend.HistoryEntry, error) {
	f.listCalls++
	if f.failList {
		return nil, errors.New("down")
	}
	return append([]backend.HistoryEntry(nil), f.entries...), nil
}

func TestNewEntry(t *testing.T) {
	now := time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC)
	e := NewEntry("Generation", 120000, now)
	assert.Equal(t, "Design 14:05:09", e.ProjectName)
	assert.Equal(t, []string{"Generation"}, e.Actions)
	assert.Equal(t, int64(120000), e.TotalCost)
}

func TestNewest(t *testing.T) {
	in := []Entry{{ProjectName: "a"}, {ProjectName: "b"}, {ProjectName: "c"}}
	out := Newest(in)
	assert.Equal(t, "c", out[0].ProjectName)
	assert.Equal(t, "a", out[2].ProjectName)
	assert.Equal(t, "a", in[0].ProjectName)
}

func TestRemoteStoreCachesUntilAppend(t *testing.T) {
	api := &fakeAPI{}
	s := NewRemoteStore(api, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, NewEntry("Generation", 10, time.Now())))
	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"Generation"}, list[0].Actions)

	_, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.listCalls)

	require.NoError(t, s.Append(ctx, NewEntry("Edit: recolor", 500, time.Now())))
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, api.listCalls)
}

func TestRemoteStoreListError(t *testing.T) {
	s := NewRemoteStore(&fakeAPI{failList: true}, time.Minute)
	_, err := s.List(context.Background())
	require.Error(t, err)
}

func TestRemoteStoreNamesUntitledSessions(t *testing.T) {
	api := &fakeAPI{entries: []backend.HistoryEntry{{TotalCost: 3, Timestamp: "2026-03-01T10:00:00.123456"}}}
	list, err := NewRemoteStore(api, time.Minute).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Session", list[0].ProjectName)
	assert.Equal(t, 10, list[0].CreatedAt.Hour())
}

func TestLocalStore(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := OpenLocal(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(ctx, NewEntry("Generation", 120000, now)))
	require.NoError(t, s.Append(ctx, Entry{ProjectName: "Design 09:01:00", Actions: []string{"Edit: remove", "Edit: recolor"}, TotalCost: 1000}))
	require.NoError(t, s.Append(ctx, Entry{ProjectName: "empty"}))

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Design 09:00:00", list[0].ProjectName)
	assert.Equal(t, []string{"Generation"}, list[0].Actions)
	assert.Equal(t, []string{"Edit: remove", "Edit: recolor"}, list[1].Actions)
	assert.Empty(t, list[2].Actions)
	assert.Equal(t, int64(1000), list[1].TotalCost)
}

func TestLocalStoreReopenKeepsData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	s, err := OpenLocal(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, NewEntry("Generation", 1, time.Now())))
	require.NoError(t, s.Close())

	s, err = OpenLocal(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
