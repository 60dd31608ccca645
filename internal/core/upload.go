package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Rorical/RoriDecor/internal/backend"
	"github.com/Rorical/RoriDecor/internal/models"
)

// Upload sends a local image to the backend and makes it the original and
// active image. A room category reported by the backend's classifier is
// auto-selected.
func (s *SessionService) Upload(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return precondition(opUpload, "no image file given")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return precondition(opUpload, fmt.Sprintf("cannot read %s: %v", path, err))
	}
	if len(data) == 0 {
		return precondition(opUpload, path+" is empty")
	}

	if _, err := s.begin(opUpload, "Uploading "+filepath.Base(path)+"...", nil); err != nil {
		return err
	}
	defer s.finish()

	res, err := s.backend.Upload(ctx, backend.ImageFile{Name: filepath.Base(path), Data: data})
	if err != nil {
		return err
	}

	result := UploadResult{
		LocalFile: path,
		ImageRef:  res.ImagePath,
		ImageURL:  s.backend.Resolve(res.ImagePath),
	}
	if models.IsRoomCategory(res.DetectedRoomType) {
		result.DetectedRoom = res.DetectedRoomType
		result.RoomConfidence = res.RoomConfidence
	}
	s.state.ApplyUploadResult(result)

	s.logger.Named(opUpload).Info("image uploaded",
		zap.String("image_path", res.ImagePath),
		zap.String("detected_room", res.DetectedRoomType),
		zap.Float64("confidence", res.RoomConfidence),
	)
	return nil
}

// sourceImage returns the bytes of the active image: the local file while the
// original is shown, otherwise the backend copy.
func (s *SessionService) sourceImage(ctx context.Context, snap models.SessionSnapshot) (backend.ImageFile, error) {
	name := filepath.Base(snap.OriginalFile)
	if snap.ActiveImageRef == snap.OriginalImageRef {
		data, err := os.ReadFile(snap.OriginalFile)
		if err != nil {
			return backend.ImageFile{}, fmt.Errorf("read original image: %w", err)
		}
		return backend.ImageFile{Name: name, Data: data}, nil
	}
	data, err := s.backend.Fetch(ctx, snap.ActiveImageRef)
	if err != nil {
		return backend.ImageFile{}, err
	}
	if base := filepath.Base(snap.ActiveImageRef); base != "." && base != "/" {
		name = base
	}
	return backend.ImageFile{Name: name, Data: data}, nil
}

func requireImage(op string) func(models.SessionSnapshot) error {
	return func(snap models.SessionSnapshot) error {
		if !snap.HasImage() {
			return precondition(op, "upload an image first")
		}
		return nil
	}
}
