package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pymetra/registration/internal/service"
	"github.com/pymetra/registration/internal/validation"
)

// maxFormSize bounds the whole multipart body. It is well above the CV limit
// so an oversized file still reaches validation and gets a precise message.
const maxFormSize = 32 << 20

type RegistrationHandler struct {
	registrationService *service.RegistrationService
}

func NewRegistrationHandler(registrationService *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
	}
}

// Register handles the public registration form
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusBadRequest, "file too large: maximum size is "+validation.FormatSize(h.registrationService.MaxUploadSize()))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	input := service.RegistrationInput{
		FullName:       r.FormValue("fullName"),
		Email:          r.FormValue("email"),
		GeographicArea: r.FormValue("geographicArea"),
		MainSector:     r.FormValue("mainSector"),
		Language:       r.FormValue("language"),
	}

	file, header, err := r.FormFile("cv")
	switch {
	case err == nil:
		defer file.Close()
		input.Filename = header.Filename
		input.ContentType = validation.DeclaredMediaType(header)
		input.Size = header.Size
		input.Content = file
	case !errors.Is(err, http.ErrMissingFile):
		writeError(w, http.StatusBadRequest, "invalid CV upload")
		return
	}

	result, err := h.registrationService.Register(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSubmission) {
			writeError(w, http.StatusBadRequest, service.Reason(err))
			return
		}
		slog.Error("registration failed", "error", err, "email", input.Email)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Count returns the number of stored registrations
func (h *RegistrationHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.registrationService.Count(r.Context())
	if err != nil {
		slog.Error("failed to count registrations", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_registrations": count})
}
