package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	adminmanagement "campus/contexts/identity-access/admin-management-service"
	authorization "campus/contexts/identity-access/authorization-service"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "campus/internal/platform/httpserver/docs"
)

type Server struct {
	mux             *http.ServeMux
	logger          *slog.Logger
	addr            string
	authorization   authorization.Module
	adminManagement adminmanagement.Module
}

func New(
	authorizationModule authorization.Module,
	adminManagementModule adminmanagement.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:             http.NewServeMux(),
		logger:          logger,
		addr:            addr,
		authorization:   authorizationModule,
		adminManagement: adminManagementModule,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for httptest-based suites.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/authz/v1/decide", s.handleAuthzDecide)
	s.mux.HandleFunc("POST /api/authz/v1/resources/{kind}/check", s.handleAuthzResourceCheck)

	s.mux.HandleFunc("GET /api/orgs/{org_id}/admins", s.handleAdminList)
	s.mux.HandleFunc("POST /api/orgs/{org_id}/admins", s.handleAdminCreate)
	s.mux.HandleFunc("PATCH /api/orgs/{org_id}/admins/{user_id}/permissions", s.handleAdminUpdatePermissions)
	s.mux.HandleFunc("DELETE /api/orgs/{org_id}/admins/{user_id}", s.handleAdminRemove)
	s.mux.HandleFunc("GET /api/orgs/{org_id}/admins/audit", s.handleAdminAudit)
}

func (s *Server) decodeJSON(
	w http.ResponseWriter,
	r *http.Request,
	dst any,
	writeError func(http.ResponseWriter, int, string, string),
) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
