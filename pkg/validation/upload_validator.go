package validation

import (
	"path/filepath"
	"strings"

	apperrors "github.com/anime-shed/first-aid-triage/internal/errors"
)

// Messages returned to clients for rejected uploads.
const (
	MsgNoImage         = "No image uploaded"
	MsgNoFileSelected  = "No file selected"
	MsgInvalidFileType = "Invalid file type. Please upload an image (PNG, JPG, JPEG, GIF, WEBP)"
	MsgEmptyFile       = "Uploaded file is empty"
)

// UploadValidator checks uploaded file names against an extension allowlist.
// Content is never sniffed here; the decoder decides whether bytes are an image.
type UploadValidator struct {
	allowed map[string]struct{}
}

// NewUploadValidator builds a validator for the given extensions (with or
// without a leading dot, any case).
func NewUploadValidator(extensions []string) *UploadValidator {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext != "" {
			allowed[ext] = struct{}{}
		}
	}
	return &UploadValidator{allowed: allowed}
}

// AllowedFile reports whether the filename carries an allowed extension.
func (v *UploadValidator) AllowedFile(filename string) bool {
	ext := filepath.Ext(filename)
	if ext == "" || ext == "." {
		return false
	}
	_, ok := v.allowed[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

// ValidateUpload applies the name and size checks in the order clients see them.
func (v *UploadValidator) ValidateUpload(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return apperrors.NewValidationError(MsgNoFileSelected, nil)
	}
	if !v.AllowedFile(filename) {
		return apperrors.NewValidationError(MsgInvalidFileType, nil).WithDetails("filename: " + filename)
	}
	if size == 0 {
		return apperrors.NewValidationError(MsgEmptyFile, nil)
	}
	return nil
}
