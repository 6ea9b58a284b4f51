package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/PabloGalante/fermi-notifier/internal/app/fermi"
	"github.com/PabloGalante/fermi-notifier/internal/domain"
	"github.com/PabloGalante/fermi-notifier/internal/observability"
)

type Server struct {
	svc *fermi.Service
}

func NewServer(svc *fermi.Service) http.Handler {
	s := &Server{svc: svc}
	mux := http.NewServeMux()

	// / → run the generate / notify / schedule pipeline (POST)
	mux.HandleFunc("POST /{$}", s.handleTrigger)

	// /healthz → liveness, never touches upstreams
	mux.HandleFunc("GET /healthz", handleHealthz)

	return chainMiddlewares(mux, withRecover, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	// Upstream calls run to completion even if the caller goes away.
	ctx := context.WithoutCancel(r.Context())
	log := observability.LoggerFromContext(ctx)
	log.Info("received request to generate and send Fermi problem")

	out, err := s.svc.Run(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeText(w, http.StatusOK, fmt.Sprintf("Fermi problem sent, solution scheduled for %s delay.", out.SolutionDelay))
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "OK")
}

// ─────────────────────────────────────────────
// Error mapping
// ─────────────────────────────────────────────

// errorResponse maps err to a status code and a short category. Upstream
// bodies never reach the caller.
func errorResponse(err error) (int, string) {
	var (
		cfgErr   *domain.ConfigError
		tErr     *domain.TransportError
		serErr   *domain.SerializationError
		upErr    *domain.UpstreamError
		notifErr *domain.NotificationError
		parseErr *domain.ParseError
	)

	switch {
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, "Configuration Error"
	case errors.As(err, &notifErr):
		return http.StatusBadGateway, "Notification Service Error"
	case errors.As(err, &upErr):
		return http.StatusBadGateway, "Gemini API Error"
	case errors.As(err, &tErr):
		return http.StatusBadGateway, "Upstream Service Error"
	case errors.As(err, &serErr):
		return http.StatusInternalServerError, "Data Processing Error"
	case errors.As(err, &parseErr):
		return http.StatusInternalServerError, "Content Parsing Error"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, category := errorResponse(err)
	observability.LoggerFromContext(r.Context()).Error("handler error occurred",
		"error", err,
		"status", status,
		"category", category,
	)
	writeJSON(w, status, category)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
