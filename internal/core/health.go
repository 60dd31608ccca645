package core

import (
	"context"
	"fmt"

	"github.com/Rorical/RoriDecor/internal/backend"
)

// Health queries the backend's device report. It is read-only and not gated
// by busy.
func (s *SessionService) Health(ctx context.Context) (*backend.HealthResponse, error) {
	res, err := s.backend.Health(ctx)
	if err != nil {
		s.state.SetDevice("")
		return nil, err
	}
	device := res.Device()
	if res.CUDAAvailable {
		device = fmt.Sprintf("%s (CUDA)", device)
	}
	s.state.SetDevice(device)
	s.pushStateToUI()
	return res, nil
}
