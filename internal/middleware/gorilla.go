package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
)

// CORS allows the registration form, served from another origin, to call the public API
func CORS(origins []string) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
		handlers.MaxAge(600),
	)
}

// Recovery turns panics into 500 responses and logs them
func Recovery() func(http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(true),
	)
}

// recoveryLogger adapts slog to handlers.RecoveryHandlerLogger
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...any) {
	slog.Error("panic recovered", "error", fmt.Sprint(v...))
}
