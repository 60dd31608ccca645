package history

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Rorical/RoriDecor/internal/backend"
)

const listKey = "history"

// API is the part of the backend client the remote store needs.
type API interface {
	AppendHistory(ctx context.Context, entry backend.HistoryEntry) error
	ListHistory(ctx context.Context) ([]backend.HistoryEntry, error)
}

// RemoteStore keeps history on the backend and caches listings briefly.
type RemoteStore struct {
	api   API
	cache *cache.Cache
}

func NewRemoteStore(api API, ttl time.Duration) *RemoteStore {
	return &RemoteStore{
		api:   api,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *RemoteStore) Append(ctx context.Context, e Entry) error {
	actions := make([]backend.HistoryAction, 0, len(e.Actions))
	for _, a := range e.Actions {
		actions = append(actions, backend.HistoryAction{Name: a})
	}
	err := s.api.AppendHistory(ctx, backend.HistoryEntry{
		ProjectName: e.ProjectName,
		Actions:     actions,
		TotalCost:   e.TotalCost,
	})
	s.cache.Delete(listKey)
	return err
}

func (s *RemoteStore) List(ctx context.Context) ([]Entry, error) {
	if x, found := s.cache.Get(listKey); found {
		return x.([]Entry), nil
	}
	raw, err := s.api.ListHistory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(raw))
	for _, r := range raw {
		e := Entry{ProjectName: r.ProjectName, TotalCost: r.TotalCost}
		if r.ProjectName == "" {
			e.ProjectName = "Session"
		}
		for _, a := range r.Actions {
			e.Actions = append(e.Actions, a.Name)
		}
		if ts, err := time.Parse("2006-01-02T15:04:05.999999", r.Timestamp); err == nil {
			e.CreatedAt = ts
		}
		out = append(out, e)
	}
	s.cache.Set(listKey, out, cache.DefaultExpiration)
	return out, nil
}
