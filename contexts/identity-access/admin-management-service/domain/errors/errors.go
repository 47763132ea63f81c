package errors

import "errors"

var (
	ErrInvalidRequest           = errors.New("invalid request")
	ErrDuplicateEmail           = errors.New("email already identifies a principal")
	ErrAdminNotFound            = errors.New("admin membership not found")
	ErrCannotModifySelf         = errors.New("admins cannot modify their own membership")
	ErrCannotModifyPrimaryAdmin = errors.New("primary admin membership cannot be modified")
	ErrCannotRemoveSelf         = errors.New("admins cannot remove themselves")
	ErrCannotRemovePrimaryAdmin = errors.New("primary admin membership cannot be removed")
	ErrVersionConflict          = errors.New("organization admin set changed concurrently")
	ErrIdempotencyKeyRequired   = errors.New("idempotency key required")
	ErrIdempotencyConflict      = errors.New("idempotency key conflict")
	ErrStoreUnavailable         = errors.New("record store unavailable")
	ErrIntegrityViolation       = errors.New("organization state integrity violation")
)
