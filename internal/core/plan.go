package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Rorical/RoriDecor/internal/backend"
	"github.com/Rorical/RoriDecor/internal/models"
)

const (
	thinkingText  = "Thinking..."
	planErrorText = "Sorry, I encountered an error planning that."
)

// Plan turns a free-text request into a structured plan rendered in the
// transcript. Backend failures become a transcript entry instead of an error.
func (s *SessionService) Plan(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	snap, err := s.begin(opPlan, "Planning...", nil)
	if err != nil {
		return err
	}
	defer s.finish()

	log := s.logger.Named(opPlan)
	s.state.AppendMessage(models.User, text)
	pending := s.state.AddTransient(thinkingText)
	s.pushStateToUI()

	items := snap.Detections
	if !snap.DetectionRan && snap.HasImage() {
		detected, err := s.detect(ctx, snap)
		if err != nil {
			log.Warn("auto-detection failed, planning without context", zap.Error(err))
			detected = nil
		}
		items = detected
	}

	detections := make([]backend.Detection, 0, len(items))
	for _, it := range items {
		detections = append(detections, backend.Detection{Label: it.Label, Category: it.Category, Confidence: it.Confidence})
	}
	budget := s.state.Snapshot().Settings.Budget

	res, err := s.backend.Plan(ctx, backend.PlanRequest{
		UserRequest:   text,
		DetectedItems: detections,
		Budget:        budget,
	})
	s.state.RemoveTransient(pending)
	if err != nil {
		log.Error("plan request failed", zap.Error(err))
		s.state.AppendWarning(planErrorText)
		return nil
	}

	if res.Verification.Rejected() {
		s.state.AppendWarning("Budget Warning: " + res.Verification.Feedback)
	}
	s.state.AppendMessage(models.Assistant, RenderPlan(toPlan(res.Plan)))
	log.Info("plan ready", zap.Int("steps", len(res.Plan.Steps)))
	return nil
}

func toPlan(body *backend.PlanBody) models.Plan {
	plan := models.Plan{Summary: body.Summary}
	for _, st := range body.Steps {
		plan.Steps = append(plan.Steps, models.PlanStep{
			Action:      st.Action,
			Target:      st.Target,
			Reason:      st.Reason,
			Suggestions: toSuggestions(st.Suggestions),
		})
	}
	return plan
}

// RenderPlan formats a plan as a single transcript entry.
func RenderPlan(p models.Plan) string {
	var b strings.Builder
	b.WriteString("Here is my plan:\n")
	b.WriteString(p.Summary)
	for i, st := range p.Steps {
		fmt.Fprintf(&b, "\n\n%d. %s %s: %s", i+1, strings.ToUpper(st.Action), st.Target, st.Reason)
		if len(st.Suggestions) == 0 {
			continue
		}
		b.WriteString("\n   Suggestions:")
		for _, sg := range st.Suggestions {
			price := "Check Price"
			if sg.ApproxPrice > 0 {
				price = fmt.Sprintf("₹%.0f", sg.ApproxPrice)
			}
			fmt.Fprintf(&b, "\n   - %s (%s) - %s", sg.Title, sg.Vendor, price)
			if sg.URL != "" {
				fmt.Fprintf(&b, "\n     %s", sg.URL)
			}
		}
	}
	return b.String()
}
