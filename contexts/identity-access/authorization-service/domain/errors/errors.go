package errors

import (
	"errors"
	"fmt"
	"strings"

	"campus/contexts/identity-access/authorization-service/domain/entities"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidPrincipal    = errors.New("invalid principal")
	ErrUnknownResourceKind = errors.New("unknown resource kind")
	ErrStoreUnavailable    = errors.New("organization store unavailable")
	ErrIntegrityViolation  = errors.New("organization state integrity violation")

	// ErrAccessDenied is the errors.Is anchor for every structured denial.
	ErrAccessDenied = errors.New("access denied")
)

// DenialError carries a decision's reason code and, for capability denials,
// the exact missing set. It matches ErrAccessDenied under errors.Is so the
// transport layer can branch on the class and still read the details.
type DenialError struct {
	Reason  entities.ReasonCode
	Missing []entities.Capability
}

// NewDenialError converts a denied decision into its error form.
// It must not be called with an allowed decision.
func NewDenialError(decision entities.Decision) *DenialError {
	return &DenialError{
		Reason:  decision.Reason,
		Missing: decision.Missing,
	}
}

func (e *DenialError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("access denied: %s", e.Reason)
	}
	names := make([]string, 0, len(e.Missing))
	for _, capability := range e.Missing {
		names = append(names, string(capability))
	}
	return fmt.Sprintf("access denied: %s (%s)", e.Reason, strings.Join(names, ", "))
}

func (e *DenialError) Is(target error) bool {
	return target == ErrAccessDenied
}
