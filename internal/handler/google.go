package handler

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pymetra/registration/internal/ctxkeys"
	"github.com/pymetra/registration/internal/service/remote"
	"github.com/pymetra/registration/internal/ui"
	"github.com/pymetra/registration/internal/ui/pages"
)

const oauthStateCookie = "oauth_state"

type GoogleHandler struct {
	credentials *remote.OAuthCredentials
}

func NewGoogleHandler(credentials *remote.OAuthCredentials) *GoogleHandler {
	return &GoogleHandler{
		credentials: credentials,
	}
}

// Login redirects the operator to the Google consent screen
func (h *GoogleHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := generateOAuthState()

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/admin/google",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	http.Redirect(w, r, h.credentials.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback stores the token granted by Google
func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value != state || state == "" {
		slog.Warn("google oauth state validation failed", "error", err)
		ui.RenderStatus(w, r, http.StatusBadRequest, pages.Notice("Connection failed", "The Google sign-in could not be verified. Please try again.", true))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/admin/google",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		slog.Warn("google oauth denied", "error", errParam)
		ui.RenderStatus(w, r, http.StatusBadRequest, pages.Notice("Connection cancelled", "Google did not grant access.", true))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("google oauth callback missing code")
		ui.RenderStatus(w, r, http.StatusBadRequest, pages.Notice("Connection failed", "Google did not return an authorization code.", true))
		return
	}

	if err := h.credentials.Exchange(r.Context(), code); err != nil {
		slog.Error("google oauth exchange failed", "error", err)
		ui.RenderStatus(w, r, http.StatusBadGateway, pages.Notice("Connection failed", "The Google token could not be obtained. Please try again.", true))
		return
	}

	slog.Info("google account connected", "admin", ctxkeys.Admin(r.Context()))
	http.Redirect(w, r, "/admin?notice=connected", http.StatusSeeOther)
}

func (h *GoogleHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.credentials.Disconnect(r.Context()); err != nil {
		slog.Error("failed to disconnect google account", "error", err)
		http.Error(w, "Failed to disconnect", http.StatusInternalServerError)
		return
	}
	slog.Info("google account disconnected", "admin", ctxkeys.Admin(r.Context()))
	http.Redirect(w, r, "/admin?notice=disconnected", http.StatusSeeOther)
}

// generateOAuthState creates a random state token for the OAuth round trip
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}

type NotFoundHandler struct{}

func (NotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
}
