package httpserver

import (
	"errors"
	"net/http"
	"strings"

	authzerrors "campus/contexts/identity-access/authorization-service/domain/errors"
	authzhttp "campus/contexts/identity-access/authorization-service/transport/http"
)

func writeAuthzError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, authzhttp.ErrorResponse{Code: code, Message: message})
}

func writeAuthzDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authzerrors.ErrInvalidRequest),
		errors.Is(err, authzerrors.ErrInvalidPrincipal):
		writeAuthzError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, authzerrors.ErrUnknownResourceKind):
		writeAuthzError(w, http.StatusUnprocessableEntity, "unknown_resource_kind", err.Error())
	case errors.Is(err, authzerrors.ErrStoreUnavailable):
		writeAuthzError(w, http.StatusServiceUnavailable, "store_unavailable", "organization store unavailable")
	case errors.Is(err, authzerrors.ErrIntegrityViolation):
		writeAuthzError(w, http.StatusInternalServerError, "integrity_violation", "organization state integrity violation")
	default:
		writeAuthzError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireAuthzAuthorization(w http.ResponseWriter, r *http.Request) bool {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeAuthzError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
		return false
	}
	return true
}

func requireAuthzRequestID(w http.ResponseWriter, r *http.Request) bool {
	if strings.TrimSpace(r.Header.Get("X-Request-Id")) == "" {
		writeAuthzError(w, http.StatusBadRequest, "missing_request_id", "X-Request-Id header is required")
		return false
	}
	return true
}

func requireAuthzUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeAuthzError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func (s *Server) handleAuthzDecide(w http.ResponseWriter, r *http.Request) {
	if !requireAuthzAuthorization(w, r) || !requireAuthzRequestID(w, r) {
		return
	}
	userID, ok := requireAuthzUser(w, r)
	if !ok {
		return
	}

	var req authzhttp.DecideRequest
	if !s.decodeJSON(w, r, &req, writeAuthzError) {
		return
	}
	resp, err := s.authorization.Handler.DecideHandler(r.Context(), userID, req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzResourceCheck(w http.ResponseWriter, r *http.Request) {
	if !requireAuthzAuthorization(w, r) || !requireAuthzRequestID(w, r) {
		return
	}
	userID, ok := requireAuthzUser(w, r)
	if !ok {
		return
	}

	kind := r.PathValue("kind")
	resp, err := s.authorization.Handler.CheckResourceHandler(r.Context(), userID, kind)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
