// Package upload validates and stores the single image file accepted by campaign
// creation and community requests. Callers only ever see the returned reference.
package upload

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"

	"donation-api/internal/apperror"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	FolderCampaigns = "campaigns"
	FolderKTP       = "ktp"
)

var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Storage persists an uploaded file and returns the reference stored on the entity.
type Storage interface {
	Save(ctx context.Context, file *multipart.FileHeader, folder string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Validator enforces the size cap and sniffs the real content type.
type Validator struct {
	maxSize int64
	allowed []string
}

func NewValidator(maxSize int64, allowed ...string) *Validator {
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}
	return &Validator{maxSize: maxSize, allowed: allowed}
}

// Check returns the detected MIME type or a 400 AppError.
func (v *Validator) Check(file *multipart.FileHeader) (*mimetype.MIME, error) {
	if file == nil {
		return nil, apperror.BadRequest("File is required")
	}
	if file.Size > v.maxSize {
		return nil, apperror.BadRequest(fmt.Sprintf("File too large. Maximum size is %dMB", v.maxSize/(1024*1024)))
	}

	f, err := file.Open()
	if err != nil {
		return nil, apperror.BadRequest("Unable to read uploaded file")
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, apperror.BadRequest("Unable to read uploaded file")
	}
	if !mimetype.EqualsAny(mt.String(), v.allowed...) {
		return nil, apperror.BadRequest("Only image files are allowed")
	}
	return mt, nil
}

// objectKey names the stored object after a fresh uuid, keeping the sniffed extension.
func objectKey(folder string, mt *mimetype.MIME) string {
	return path.Join(folder, uuid.NewString()+mt.Extension())
}
