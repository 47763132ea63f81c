package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	adminerrors "campus/contexts/identity-access/admin-management-service/domain/errors"
	adminhttp "campus/contexts/identity-access/admin-management-service/transport/http"
	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
	authzerrors "campus/contexts/identity-access/authorization-service/domain/errors"
)

func writeAdminError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, adminhttp.ErrorResponse{Code: code, Message: message})
}

func writeAdminDomainError(w http.ResponseWriter, err error) {
	var denial *authzerrors.DenialError
	if errors.As(err, &denial) {
		writeAdminDenial(w, denial)
		return
	}

	switch {
	case errors.Is(err, adminerrors.ErrInvalidRequest),
		errors.Is(err, adminerrors.ErrIdempotencyKeyRequired):
		writeAdminError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, adminerrors.ErrAdminNotFound):
		writeAdminError(w, http.StatusNotFound, "admin_not_found", err.Error())
	case errors.Is(err, adminerrors.ErrDuplicateEmail):
		writeAdminError(w, http.StatusConflict, "duplicate_email", err.Error())
	case errors.Is(err, adminerrors.ErrCannotModifySelf):
		writeAdminError(w, http.StatusForbidden, "cannot_modify_self", err.Error())
	case errors.Is(err, adminerrors.ErrCannotModifyPrimaryAdmin):
		writeAdminError(w, http.StatusForbidden, "cannot_modify_primary_admin", err.Error())
	case errors.Is(err, adminerrors.ErrCannotRemoveSelf):
		writeAdminError(w, http.StatusForbidden, "cannot_remove_self", err.Error())
	case errors.Is(err, adminerrors.ErrCannotRemovePrimaryAdmin):
		writeAdminError(w, http.StatusForbidden, "cannot_remove_primary_admin", err.Error())
	case errors.Is(err, adminerrors.ErrVersionConflict),
		errors.Is(err, adminerrors.ErrIdempotencyConflict):
		writeAdminError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, adminerrors.ErrStoreUnavailable):
		writeAdminError(w, http.StatusServiceUnavailable, "store_unavailable", "record store unavailable")
	case errors.Is(err, adminerrors.ErrIntegrityViolation):
		writeAdminError(w, http.StatusInternalServerError, "integrity_violation", "organization state integrity violation")
	default:
		writeAdminError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// writeAdminDenial maps engine denial reasons onto HTTP statuses; the reason
// code travels verbatim so callers can branch on it.
func writeAdminDenial(w http.ResponseWriter, denial *authzerrors.DenialError) {
	status := http.StatusForbidden
	switch denial.Reason {
	case authzentities.ReasonUnauthenticated:
		status = http.StatusUnauthorized
	case authzentities.ReasonOrganizationNotFound:
		status = http.StatusNotFound
	}
	writeAdminError(w, status, string(denial.Reason), denial.Error())
}

func requireAdminAuthorization(w http.ResponseWriter, r *http.Request) bool {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeAdminError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
		return false
	}
	return true
}

func requireAdminRequestID(w http.ResponseWriter, r *http.Request) bool {
	if strings.TrimSpace(r.Header.Get("X-Request-Id")) == "" {
		writeAdminError(w, http.StatusBadRequest, "missing_request_id", "X-Request-Id header is required")
		return false
	}
	return true
}

func requireAdminUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeAdminError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func requireAdminIdempotencyKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		writeAdminError(w, http.StatusBadRequest, "idempotency_key_required", "Idempotency-Key header is required")
		return "", false
	}
	return key, true
}

func (s *Server) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	if !requireAdminAuthorization(w, r) || !requireAdminRequestID(w, r) {
		return
	}
	actorUserID, ok := requireAdminUser(w, r)
	if !ok {
		return
	}
	idempotencyKey, ok := requireAdminIdempotencyKey(w, r)
	if !ok {
		return
	}
	orgID := r.PathValue("org_id")

	var req adminhttp.CreateAdminRequest
	if !s.decodeJSON(w, r, &req, writeAdminError) {
		return
	}
	resp, err := s.adminManagement.Handler.CreateAdminHandler(r.Context(), idempotencyKey, actorUserID, orgID, req)
	if err != nil {
		writeAdminDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAdminUpdatePermissions(w http.ResponseWriter, r *http.Request) {
	if !requireAdminAuthorization(w, r) || !requireAdminRequestID(w, r) {
		return
	}
	actorUserID, ok := requireAdminUser(w, r)
	if !ok {
		return
	}
	idempotencyKey, ok := requireAdminIdempotencyKey(w, r)
	if !ok {
		return
	}
	orgID := r.PathValue("org_id")
	targetUserID := r.PathValue("user_id")

	var req adminhttp.UpdatePermissionsRequest
	if !s.decodeJSON(w, r, &req, writeAdminError) {
		return
	}
	resp, err := s.adminManagement.Handler.UpdatePermissionsHandler(r.Context(), idempotencyKey, actorUserID, orgID, targetUserID, req)
	if err != nil {
		writeAdminDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminRemove(w http.ResponseWriter, r *http.Request) {
	if !requireAdminAuthorization(w, r) || !requireAdminRequestID(w, r) {
		return
	}
	actorUserID, ok := requireAdminUser(w, r)
	if !ok {
		return
	}
	idempotencyKey, ok := requireAdminIdempotencyKey(w, r)
	if !ok {
		return
	}
	orgID := r.PathValue("org_id")
	targetUserID := r.PathValue("user_id")

	resp, err := s.adminManagement.Handler.RemoveAdminHandler(r.Context(), idempotencyKey, actorUserID, orgID, targetUserID)
	if err != nil {
		writeAdminDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	if !requireAdminAuthorization(w, r) || !requireAdminRequestID(w, r) {
		return
	}
	actorUserID, ok := requireAdminUser(w, r)
	if !ok {
		return
	}
	orgID := r.PathValue("org_id")

	resp, err := s.adminManagement.Handler.ListAdminsHandler(r.Context(), actorUserID, orgID)
	if err != nil {
		writeAdminDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if !requireAdminAuthorization(w, r) || !requireAdminRequestID(w, r) {
		return
	}
	actorUserID, ok := requireAdminUser(w, r)
	if !ok {
		return
	}
	orgID := r.PathValue("org_id")

	limit := 0
	if limitRaw := r.URL.Query().Get("limit"); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeAdminError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}

	resp, err := s.adminManagement.Handler.ListAuditLogsHandler(r.Context(), actorUserID, orgID, limit)
	if err != nil {
		writeAdminDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
