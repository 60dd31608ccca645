package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/Rorical/RoriDecor/internal/backend"
	"github.com/Rorical/RoriDecor/internal/models"
)

// roomRules is checked in order; the first rule with any label present wins.
// A room with both a bed and a couch is therefore always a Bedroom.
var roomRules = []struct {
	room   string
	labels []string
}{
	{"Bedroom", []string{"bed"}},
	{"Living Room", []string{"couch", "sofa", "tv monitor"}},
	{"Kitchen", []string{"oven", "sink", "refrigerator"}},
	{"Bathroom", []string{"toilet"}},
}

// InferRoomCategory derives a room category from detected labels. It returns
// "" when no rule matches.
func InferRoomCategory(items []models.DetectedItem) string {
	counts := make(map[string]int, len(items))
	for _, it := range items {
		counts[it.Label]++
	}
	for _, rule := range roomRules {
		for _, l := range rule.labels {
			if counts[l] > 0 {
				return rule.room
			}
		}
	}
	return ""
}

// Detect runs object detection on the active image and infers the room.
func (s *SessionService) Detect(ctx context.Context) error {
	snap, err := s.begin(opDetect, "Scanning the room...", requireImage(opDetect))
	if err != nil {
		return err
	}
	defer s.finish()

	_, err = s.detect(ctx, snap)
	return err
}

// detect does the work of Detect for a caller already holding the gate.
func (s *SessionService) detect(ctx context.Context, snap models.SessionSnapshot) ([]models.DetectedItem, error) {
	image, err := s.sourceImage(ctx, snap)
	if err != nil {
		return nil, err
	}
	res, err := s.backend.Detect(ctx, backend.DetectRequest{Image: image, Budget: snap.Settings.Budget})
	if err != nil {
		return nil, err
	}

	items := make([]models.DetectedItem, 0, len(res.Detections))
	for _, d := range res.Detections {
		items = append(items, models.DetectedItem{Label: d.Label, Category: d.Category, Confidence: d.Confidence})
	}
	suggestions := make(map[string][]models.Suggestion, len(res.OnlineSuggestions))
	for category, group := range res.OnlineSuggestions {
		suggestions[category] = toSuggestions(group.Results)
	}
	inferred := InferRoomCategory(items)
	s.state.ApplyDetections(items, suggestions, inferred)

	s.logger.Named(opDetect).Info("detection done",
		zap.Int("items", len(items)),
		zap.String("inferred_room", inferred),
	)
	return items, nil
}

func toSuggestions(links []backend.Link) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(links))
	for _, l := range links {
		out = append(out, models.Suggestion{
			Title:       l.Title,
			URL:         l.Href(),
			Vendor:      l.Source(),
			ApproxPrice: l.ApproxPrice,
		})
	}
	return out
}
