package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"scaffold/internal/middleware"
	"scaffold/internal/models"
	"scaffold/internal/observability"
	"scaffold/internal/policy"
	"scaffold/internal/storage"
)

// UploadService stores editor image uploads.
type UploadService struct {
	files *storage.Files
}

func NewUploadService(files *storage.Files) *UploadService {
	return &UploadService{files: files}
}

// Upload stores r as filename for an admin and returns the stored name.
func (s *UploadService) Upload(ctx context.Context, identity models.Identity, filename string, r io.Reader) (string, error) {
	if err := policy.Authorize(identity, policy.ActionUploadAsset, nil).Err("File", filename); err != nil {
		return "", err
	}

	name, err := s.files.Save(filename, r)
	if err != nil {
		observability.RecordResult(observability.Uploads, false)
		switch {
		case errors.Is(err, storage.ErrExtensionNotAllowed), errors.Is(err, storage.ErrInvalidName):
			return "", models.NewValidationError(err.Error())
		default:
			middleware.Logger.ErrorContext(ctx, "Upload failed", slog.String("file", filename), slog.String("error", err.Error()))
			return "", models.NewInternalError(err)
		}
	}

	observability.RecordResult(observability.Uploads, true)
	return name, nil
}

// Locate returns the on-disk path of a stored asset.
func (s *UploadService) Locate(name string) (string, error) {
	path, err := s.files.Path(name)
	if err != nil {
		return "", models.NewNotFoundError("File", name)
	}
	return path, nil
}
