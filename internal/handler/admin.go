package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/pymetra/registration/internal/ctxkeys"
	"github.com/pymetra/registration/internal/repository"
	"github.com/pymetra/registration/internal/service"
	"github.com/pymetra/registration/internal/service/remote"
	"github.com/pymetra/registration/internal/storage"
	"github.com/pymetra/registration/internal/ui"
	"github.com/pymetra/registration/internal/ui/pages"
	"github.com/pymetra/registration/internal/validation"
)

const dashboardLatest = 10

// notices maps the ?notice= codes set by redirects to dashboard messages
var notices = map[string]string{
	"connected":      "Google account connected.",
	"disconnected":   "Google account disconnected.",
	"status-updated": "Status updated.",
}

type AdminHandler struct {
	authService         *service.AdminAuthService
	registrationService *service.RegistrationService
	exportService       *service.ExportService
	backfillService     *service.BackfillService
	replicator          service.Replicator
	googleConfigured    bool
}

func NewAdminHandler(
	authService *service.AdminAuthService,
	registrationService *service.RegistrationService,
	exportService *service.ExportService,
	backfillService *service.BackfillService,
	replicator service.Replicator,
	googleConfigured bool,
) *AdminHandler {
	return &AdminHandler{
		authService:         authService,
		registrationService: registrationService,
		exportService:       exportService,
		backfillService:     backfillService,
		replicator:          replicator,
		googleConfigured:    googleConfigured,
	}
}

func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Login("", ""))
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if err := h.authService.Login(username, password); err != nil {
		slog.Warn("admin login failed", "username", username, "error", err)
		ui.RenderStatus(w, r, http.StatusUnauthorized, pages.Login(username, "Invalid username or password."))
		return
	}

	token, expiry, err := h.authService.GenerateJWT(username)
	if err != nil {
		slog.Error("failed to generate admin token", "error", err)
		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Login(username, "Something went wrong, please try again."))
		return
	}

	h.authService.SetJWTCookie(w, token, expiry)
	slog.Info("admin logged in", "username", username)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.registrationService.Count(ctx)
	if err != nil {
		slog.Error("failed to count registrations", "error", err)
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	latest, err := h.registrationService.Latest(ctx, dashboardLatest)
	if err != nil {
		slog.Error("failed to list registrations", "error", err)
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, pages.Dashboard(pages.DashboardData{
		Total:            total,
		Latest:           latest,
		GoogleConfigured: h.googleConfigured,
		RemoteConnected:  h.replicator.Authenticated(ctx),
		Notice:           notices[r.URL.Query().Get("notice")],
	}))
}

func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	n, err := h.exportService.WriteCSV(r.Context(), &buf, service.MaxListLimit)
	if err != nil {
		slog.Error("failed to export csv", "error", err)
		http.Error(w, "Failed to export registrations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=registrations.csv")
	_, _ = w.Write(buf.Bytes())
	slog.Info("registrations exported", "format", "csv", "rows", n, "admin", ctxkeys.Admin(r.Context()))
}

func (h *AdminHandler) SheetsData(w http.ResponseWriter, r *http.Request) {
	export, err := h.exportService.SheetsData(r.Context(), service.MaxListLimit)
	if err != nil {
		slog.Error("failed to export sheets data", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, export)
}

// DownloadCV streams the résumé from local storage, falling back to Drive
func (h *AdminHandler) DownloadCV(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rc, reg, err := h.registrationService.CVFile(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) || errors.Is(err, storage.ErrNotFound) {
			ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
			return
		}
		slog.Error("failed to open cv", "error", err, "registration_id", id)
		ui.RenderStatus(w, r, http.StatusBadGateway, pages.Notice("Download failed", "The CV could not be retrieved. Please try again later.", true))
		return
	}
	defer rc.Close()

	filename := reg.Filename()
	if filename == "" {
		filename = reg.ID
	}
	w.Header().Set("Content-Type", validation.CVContentType(filename))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))

	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("cv download interrupted", "error", err, "registration_id", id)
	}
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.registrationService.UpdateStatus(r.Context(), id, r.FormValue("status"))
	switch {
	case errors.Is(err, repository.ErrRegistrationNotFound):
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return
	case errors.Is(err, service.ErrInvalidSubmission):
		ui.RenderStatus(w, r, http.StatusBadRequest, pages.Notice("Invalid status", service.Reason(err), true))
		return
	case err != nil:
		slog.Error("failed to update status", "error", err, "registration_id", id)
		http.Error(w, "Failed to update status", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin?notice=status-updated", http.StatusSeeOther)
}

func (h *AdminHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	report, err := h.backfillService.Run(r.Context())
	if errors.Is(err, remote.ErrNotAuthenticated) {
		ui.RenderStatus(w, r, http.StatusConflict, pages.Notice("Backfill unavailable", "Connect a Google account before uploading local CVs.", true))
		return
	}
	if err != nil && report == nil {
		slog.Error("backfill failed", "error", err)
		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Notice("Backfill failed", "The backfill could not run. Check the logs for details.", true))
		return
	}

	message := "Migrated " + strconv.Itoa(report.Migrated) +
		", already in Drive " + strconv.Itoa(report.AlreadyRemote) +
		", failed " + strconv.Itoa(report.Failed) +
		" of " + strconv.Itoa(report.Total) + " registrations."
	ui.Render(w, r, pages.Notice("Backfill finished", message, report.Failed > 0))
}

// ListRegistrations is the JSON admin listing
func (h *AdminHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	registrations, err := h.registrationService.Latest(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list registrations", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"registrations": registrations})
}

// APIBackfill runs the backfill and returns its counters
func (h *AdminHandler) APIBackfill(w http.ResponseWriter, r *http.Request) {
	report, err := h.backfillService.Run(r.Context())
	if errors.Is(err, remote.ErrNotAuthenticated) {
		writeError(w, http.StatusConflict, "remote replication is not authenticated")
		return
	}
	if err != nil && report == nil {
		slog.Error("backfill failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
