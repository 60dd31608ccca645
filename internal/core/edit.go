package core

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Rorical/RoriDecor/internal/backend"
	"github.com/Rorical/RoriDecor/internal/models"
)

// EditCost is the fixed spend recorded for every applied edit.
const EditCost = 500

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether c is a #rgb or #rrggbb color.
func ValidColor(c string) bool {
	return hexColor.MatchString(c)
}

// ApplyEdit applies op to the selected mask. Preconditions are checked before
// any request; on failure the mask stays selected so the user can retry.
func (s *SessionService) ApplyEdit(ctx context.Context, op models.EditOperation) error {
	if err := validateEdit(op); err != nil {
		return err
	}
	snap, err := s.begin(opEdit, "Applying "+op.Kind.String()+"...", func(snap models.SessionSnapshot) error {
		if snap.MaskRef == "" {
			return precondition(opEdit, "select a region before editing")
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer s.finish()

	log := s.logger.Named(opEdit)
	var res *backend.EditResponse
	switch op.Kind {
	case models.EditRecolor:
		res, err = s.backend.Recolor(ctx, backend.RecolorRequest{
			ImagePath: snap.ActiveImageRef,
			MaskPath:  snap.MaskRef,
			ColorHex:  op.Color,
		})
	default:
		prompt := models.RemovePrompt
		if op.Kind == models.EditReplace {
			prompt = s.refinePrompt(ctx, strings.TrimSpace(op.Prompt))
		}
		res, err = s.backend.Inpaint(ctx, backend.InpaintRequest{
			ImagePath: snap.ActiveImageRef,
			MaskPath:  snap.MaskRef,
			Prompt:    prompt,
		})
	}
	if err != nil {
		return err
	}

	action := "Edit: " + op.Kind.String()
	s.state.ApplyEditResult(res.ImageURL, s.backend.Resolve(res.ImageURL), action, EditCost)
	log.Info("edit applied", zap.String("kind", op.Kind.String()), zap.String("image_url", res.ImageURL))

	s.recordSpend(ctx, action, EditCost)
	return nil
}

func validateEdit(op models.EditOperation) error {
	switch op.Kind {
	case models.EditRecolor:
		if !ValidColor(op.Color) {
			return precondition(opEdit, "recolor needs a color like #ffffff")
		}
	case models.EditReplace:
		if strings.TrimSpace(op.Prompt) == "" {
			return precondition(opEdit, "describe what to place in the selection")
		}
	case models.EditRemove:
	default:
		return precondition(opEdit, "unknown edit operation")
	}
	return nil
}

// refinePrompt runs the optional prompt refiner. Any failure keeps the
// user's prompt.
func (s *SessionService) refinePrompt(ctx context.Context, prompt string) string {
	if s.refiner == nil {
		return prompt
	}
	s.state.SetStatus("Refining prompt...")
	s.pushStateToUI()
	refined, err := s.refiner.Refine(ctx, prompt)
	if err != nil || strings.TrimSpace(refined) == "" {
		s.logger.Named(opEdit).Warn("prompt refinement failed, using original", zap.Error(err))
		return prompt
	}
	s.logger.Named(opEdit).Debug("prompt refined", zap.String("prompt", prompt), zap.String("refined", refined))
	return refined
}
