// Package chi serves the admin gateway HTTP API: operator login, session
// verification and the command proxy to the geodb.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/meridian-cloud/meridian/internal/command"
	"github.com/meridian-cloud/meridian/internal/db"
	"github.com/meridian-cloud/meridian/internal/domain"
	"github.com/meridian-cloud/meridian/internal/export"
	"github.com/meridian-cloud/meridian/internal/metrics"
	"github.com/meridian-cloud/meridian/internal/reply"
)

const exportScanLimit = 1000

// Server handles the admin gateway endpoints.
type Server struct {
	store  db.Store
	auth   *Authenticator
	logger *zap.Logger
}

// NewServer creates the gateway server.
func NewServer(store db.Store, auth *Authenticator, logger *zap.Logger) *Server {
	return &Server{store: store, auth: auth, logger: logger}
}

// Router builds the gateway's HTTP routes.
func (s *Server) Router() http.Handler {
	r := gochi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/admin/api", func(r gochi.Router) {
		r.Post("/login", s.handleLogin)
		r.Group(func(r gochi.Router) {
			r.Use(s.auth.RequireToken)
			r.Get("/verify", s.handleVerify)
			r.Post("/command", s.handleCommand)
			r.Get("/collections/{key}/export.kml", s.handleExportKML)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "err": "geodb unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.auth.Configured() {
		writeError(w, http.StatusForbidden, "admin gateway not configured")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.auth.ValidateCredentials(req.Username, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := s.auth.IssueToken(req.Username)
	if err != nil {
		s.logger.Error("failed to issue token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"username":   req.Username,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleCommand forwards one command line to the geodb and relays its
// JSON reply. ok:false replies pass through with status 200 so the
// operator sees the geodb's message verbatim.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	line := strings.TrimSpace(req.Command)
	if line == "" {
		writeError(w, http.StatusBadRequest, "command is required")
		return
	}
	verb := strings.ToUpper(strings.Fields(line)[0])

	raw, err := s.store.Execute(r.Context(), line)
	switch {
	case err == nil:
		metrics.ObserveCommand(verb, "ok")
		relayJSON(w, raw)
	case errors.Is(err, domain.ErrProtocol):
		metrics.ObserveCommand(verb, "err")
		if len(raw) > 0 {
			relayJSON(w, raw)
			return
		}
		var pe *domain.ProtocolError
		msg := "command rejected"
		if errors.As(err, &pe) {
			msg = pe.Message
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "err": msg})
	case errors.Is(err, domain.ErrValidation):
		metrics.ObserveCommand(verb, "err")
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		metrics.ObserveCommand(verb, "transport")
		s.logger.Error("geodb unreachable", zap.String("verb", verb), zap.Error(err))
		writeError(w, http.StatusBadGateway, "geodb unreachable")
	}
}

// handleExportKML scans a collection and streams it as a KML document.
func (s *Server) handleExportKML(w http.ResponseWriter, r *http.Request) {
	key := gochi.URLParam(r, "key")
	cmd, err := command.Scan(key, command.SearchOptions{Limit: exportScanLimit})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := s.store.Execute(r.Context(), cmd.String())
	if err != nil {
		if errors.Is(err, domain.ErrProtocol) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": false, "err": err.Error()})
			return
		}
		writeError(w, http.StatusBadGateway, "geodb unreachable")
		return
	}

	objs, err := reply.Objects(raw)
	if err != nil {
		s.logger.Error("failed to parse scan reply", zap.String("collection", key), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to parse geodb reply")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="`+key+`.kml"`)
	if err := export.WriteKML(w, key, objs, s.logger); err != nil {
		s.logger.Error("kml export failed", zap.String("collection", key), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func relayJSON(w http.ResponseWriter, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "err": msg})
}
