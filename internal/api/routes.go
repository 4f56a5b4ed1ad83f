package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/purezhi/mcu/internal/action"
	"github.com/purezhi/mcu/internal/auth"
	"github.com/purezhi/mcu/internal/locale"
	"github.com/purezhi/mcu/internal/logging"
	"github.com/purezhi/mcu/internal/params"
)

// Gateway paths. "/serv.php" keeps existing clients working.
const (
	PathRoot    = "/"
	PathLegacy  = "/serv.php"
	PathHealth  = "/health"
	PathMetrics = "/metrics"
)

// maxFormMemory bounds the multipart body kept in memory.
const maxFormMemory = 1 << 20

type descriptorKey struct{}

// RegisterRoutes registers all gateway routes.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	var serve http.Handler = http.HandlerFunc(s.handleAction)
	if s.authMiddleware != nil {
		serve = s.authMiddleware.RequireAuth(serve)
	}
	gateway := s.resolveAction(serve)

	// "{$}" matches "/" only, so unknown paths still get a 404
	mux.Handle(PathRoot+"{$}", gateway)
	mux.Handle(PathLegacy, gateway)

	mux.HandleFunc(PathHealth, s.handleHealth)

	if s.metrics != nil {
		mux.Handle(PathMetrics, s.metrics.Handler())
	}
}

// resolveAction answers unknown actions and wrong verbs before next runs, so
// those messages do not depend on credentials.
func (s *Server) resolveAction(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("action")

		desc, err := s.router.Resolve(code, r.Method)
		if err != nil {
			WriteFailure(w, s.translator.Message(code, err))
			return
		}

		ctx := context.WithValue(r.Context(), descriptorKey{}, desc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleAction authorizes the resolved action, binds its parameters and
// dispatches it.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	desc, ok := r.Context().Value(descriptorKey{}).(*action.Descriptor)
	if !ok {
		WriteFailure(w, s.translator.Text(locale.InternalError))
		return
	}

	if err := auth.Authorize(r.Context(), desc.Scope); err != nil {
		s.AuthFailure(w, r, err)
		return
	}

	values, err := s.bindValues(r, desc)
	if err != nil {
		WriteFailure(w, s.translator.Message(desc.Code, err))
		return
	}

	payload, err := s.dispatcher.Dispatch(r.Context(), desc, values)
	if err != nil {
		WriteFailure(w, s.translator.Message(desc.Code, err))
		return
	}

	WriteSuccess(w, payload)
}

// bindValues reads action parameters from the form body for POST actions and
// from the query string otherwise. The body may be url-encoded or multipart.
func (s *Server) bindValues(r *http.Request, desc *action.Descriptor) (params.Values, error) {
	if desc.Verb != http.MethodPost {
		return params.New(r.URL.Query()), nil
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		logging.WithContext(r.Context(), s.logger).Debug("form parse failed", zap.Error(err))
		return params.Values{}, &params.Error{Kind: params.Invalid, Param: "body", Key: locale.InvalidParameter, Args: []any{"body"}}
	}
	return params.New(r.PostForm), nil
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := 0.0
	if !s.startTime.IsZero() {
		uptime = time.Since(s.startTime).Seconds()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   s.version,
		"uptimeSec": uptime,
		"actions":   s.router.Codes(),
	})
}

func (s *Server) authMessage(err error) string {
	if errors.Is(err, auth.ErrForbidden) {
		return s.translator.Text(locale.Forbidden)
	}
	return s.translator.Text(locale.AuthRequired)
}
