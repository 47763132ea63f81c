package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "campus/contexts/identity-access/admin-management-service/application"
	domainerrors "campus/contexts/identity-access/admin-management-service/domain/errors"
	"campus/contexts/identity-access/admin-management-service/ports"
)

// Service hosts the admin-set mutation commands. Every mutation re-checks the
// actor against the decision engine, requires an idempotency key, and retries
// a bounded number of times when the organization version moved underneath it.
type Service struct {
	Repository      ports.Repository
	Idempotency     ports.IdempotencyStore
	Credentials     ports.CredentialIssuer
	Notifier        ports.Notifier
	Clock           ports.Clock
	IDs             ports.IDGenerator
	Logger          *slog.Logger
	StoreTimeout    time.Duration
	IdempotencyTTL  time.Duration
	MaxWriteRetries int
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func (s Service) writeAttempts() int {
	if s.MaxWriteRetries <= 0 {
		return 3
	}
	return s.MaxWriteRetries
}

func (s Service) logger() *slog.Logger {
	return application.ResolveLogger(s.Logger)
}

func (s Service) newID(ctx context.Context) (string, error) {
	id, err := s.IDs.NewID(ctx)
	if err != nil {
		return "", err
	}
	return id, nil
}

// boundedCtx caps one store round trip at StoreTimeout.
func (s Service) boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.StoreTimeout)
}

// storeFault maps store-call failures onto the unavailable-store fault class.
// A fault is never converted into an authorization outcome.
func storeFault(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domainerrors.ErrStoreUnavailable
	}
	return errors.Join(domainerrors.ErrStoreUnavailable, err)
}

func (s Service) requireIdempotency(key string) error {
	if strings.TrimSpace(key) == "" {
		return domainerrors.ErrIdempotencyKeyRequired
	}
	return nil
}

func (s Service) runIdempotent(
	ctx context.Context,
	key string,
	requestHash string,
	decode func([]byte) error,
	exec func() ([]byte, error),
) error {
	now := s.now()
	record, found, err := s.Idempotency.Get(ctx, key, now)
	if err != nil {
		return err
	}
	if found {
		if record.RequestHash != requestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return decode(record.Payload)
	}

	payload, err := exec()
	if err != nil {
		return err
	}
	if err := s.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Payload:     payload,
		ExpiresAt:   now.Add(s.idempotencyTTL()),
	}); err != nil {
		return err
	}

	s.logger().Debug("admin management idempotent operation committed",
		"event", "admin_mgmt_idempotent_operation_committed",
		"module", "identity-access/admin-management-service",
		"layer", "application",
		"idempotency_key", key,
	)
	return decode(payload)
}

func hashStrings(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}
