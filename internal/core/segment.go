package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/Rorical/RoriDecor/internal/backend"
	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/internal/selection"
)

// Segment asks the backend for a mask covering region of the active image.
// On success the mask is bound; on failure any previous mask stays unset.
func (s *SessionService) Segment(ctx context.Context, region selection.Region) error {
	snap, err := s.begin(opSegment, "Selecting "+region.String()+"...", func(snap models.SessionSnapshot) error {
		if snap.Mode != models.ModeEdit {
			return precondition(opSegment, "switch to edit mode to select a region")
		}
		return requireImage(opSegment)(snap)
	})
	if err != nil {
		return err
	}
	defer s.finish()

	// A new selection replaces the old one, never accumulates.
	s.state.ClearMask()

	var req backend.SegmentRequest
	switch region.Kind {
	case selection.KindBox:
		req = backend.BoxSegment(snap.ActiveImageRef, region.XMin, region.YMin, region.XMax, region.YMax)
	default:
		req = backend.PointSegment(snap.ActiveImageRef, region.X, region.Y)
	}

	res, err := s.backend.Segment(ctx, req)
	if err != nil {
		return err
	}

	maskURL := res.MaskURL
	if maskURL == "" {
		maskURL = res.MaskPath
	}
	if !s.state.ApplySegmentationResult(res.MaskPath, s.backend.Resolve(maskURL)) {
		s.logger.Named(opSegment).Debug("mask dropped after mode change", zap.String("mask_path", res.MaskPath))
		return nil
	}
	s.logger.Named(opSegment).Info("mask selected",
		zap.Stringer("region", region),
		zap.String("mask_path", res.MaskPath),
	)
	return nil
}
