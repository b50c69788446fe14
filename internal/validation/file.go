package validation

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
)

var (
	ErrFileRequired = errors.New("a CV file is required")
	ErrFileTooLarge = errors.New("file too large")
	ErrFileType     = errors.New("invalid file type")
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes map[string]bool
	Label            string // human readable list of allowed formats
	MaxSize          int64
}

// CVMimeTypes are the document formats accepted for résumés
var CVMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// CVConstraints returns the résumé rules with the given size limit
func CVConstraints(maxSize int64) FileConstraints {
	return FileConstraints{
		AllowedMimeTypes: CVMimeTypes,
		Label:            "PDF, DOC, DOCX",
		MaxSize:          maxSize,
	}
}

// ValidateUpload checks a media type and size against constraints.
// Returned errors wrap ErrFileType or ErrFileTooLarge and carry a message fit for the applicant.
func ValidateUpload(mediaType string, size int64, constraints FileConstraints) error {
	if !constraints.AllowedMimeTypes[MediaType(mediaType)] {
		return fmt.Errorf("%w: only %s are allowed", ErrFileType, constraints.Label)
	}

	if size > constraints.MaxSize {
		return fmt.Errorf("%w: maximum size is %s", ErrFileTooLarge, FormatSize(constraints.MaxSize))
	}

	return nil
}

// DeclaredMediaType returns the media type the client declared for the part
func DeclaredMediaType(header *multipart.FileHeader) string {
	return MediaType(header.Header.Get("Content-Type"))
}

// MediaType strips parameters from a Content-Type value and lower-cases it
func MediaType(raw string) string {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}

var cvExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// CVContentType guesses a résumé's media type from its file name
func CVContentType(filename string) string {
	if ct, ok := cvExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// FormatSize renders a byte count as whole megabytes when possible (5242880 -> "5 MB")
func FormatSize(size int64) string {
	if size >= 1<<20 && size%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", size/(1<<20))
	}
	if size >= 1<<10 && size%(1<<10) == 0 {
		return fmt.Sprintf("%d KB", size/(1<<10))
	}
	return fmt.Sprintf("%d bytes", size)
}
