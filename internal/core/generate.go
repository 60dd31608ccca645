package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Rorical/RoriDecor/internal/backend"
	"github.com/Rorical/RoriDecor/internal/models"
)

// ValidateSettings checks a generation settings bundle.
func ValidateSettings(st models.Settings) error {
	switch {
	case st.RoomCategory == "":
		return precondition(opGenerate, "room category is required")
	case st.Style == "":
		return precondition(opGenerate, "style is required")
	case st.Budget <= 0:
		return precondition(opGenerate, "budget must be positive")
	case !validProvider(st.Provider):
		return precondition(opGenerate, fmt.Sprintf("unknown provider %q", st.Provider))
	case st.Strength < 0 || st.Strength > 1:
		return precondition(opGenerate, "strength must be between 0 and 1")
	}
	return nil
}

func validProvider(p string) bool {
	for _, known := range models.Providers {
		if p == known {
			return true
		}
	}
	return false
}

// Generate requests a full redesign of the original image with the current
// settings. The previous image is kept on failure.
func (s *SessionService) Generate(ctx context.Context) error {
	captions := s.opts.Captions
	first := "Generating..."
	if len(captions) > 0 {
		first = captions[0]
	}
	snap, err := s.begin(opGenerate, first, func(snap models.SessionSnapshot) error {
		if snap.OriginalFile == "" {
			return precondition(opGenerate, "upload an image first")
		}
		return ValidateSettings(snap.Settings)
	})
	if err != nil {
		return err
	}
	defer s.finish()

	data, err := os.ReadFile(snap.OriginalFile)
	if err != nil {
		return fmt.Errorf("read original image: %w", err)
	}

	stop := s.revolveCaptions(captions)
	st := snap.Settings
	res, err := s.backend.Generate(ctx, backend.GenerateRequest{
		Image:    backend.ImageFile{Name: filepath.Base(snap.OriginalFile), Data: data},
		RoomType: st.RoomCategory,
		Style:    st.Style,
		Budget:   st.Budget,
		Provider: st.Provider,
		Strength: st.Strength,
	})
	stop()
	if err != nil {
		return err
	}

	s.state.ApplyGenerationResult(res.ImageURL, s.backend.Resolve(res.ImageURL), res.EstimatedCost)
	s.logger.Named(opGenerate).Info("redesign ready",
		zap.String("image_url", res.ImageURL),
		zap.String("provider", res.ProviderUsed),
		zap.Int64("estimated_cost", res.EstimatedCost),
	)

	s.recordSpend(ctx, "Generation", res.EstimatedCost)
	return nil
}

// revolveCaptions cycles the status caption until the returned func is called.
func (s *SessionService) revolveCaptions(captions []string) func() {
	if len(captions) < 2 {
		return func() {}
	}
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(s.opts.CaptionInterval)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				i = (i + 1) % len(captions)
				s.state.SetStatus(captions[i])
				s.pushStateToUI()
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}
