package memory

import (
	"context"
	"sync"
	"time"

	"campus/contexts/identity-access/authorization-service/domain/entities"
)

// Store is an in-memory adapter implementing the organization-store and
// clock ports. It is intended for tests and local development wiring.
type Store struct {
	mu            sync.RWMutex
	organizations map[string]entities.Organization
	principals    map[string]entities.Principal
	now           *time.Time
}

// NewStore builds an empty deterministic in-memory adapter.
func NewStore() *Store {
	return &Store{
		organizations: make(map[string]entities.Organization),
		principals:    make(map[string]entities.Principal),
	}
}

// SeedPrincipal inserts or replaces a principal record.
func (s *Store) SeedPrincipal(principal entities.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[principal.UserID] = principal
}

// FindPrincipal resolves a caller identity.
func (s *Store) FindPrincipal(_ context.Context, userID string) (entities.Principal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	principal, ok := s.principals[userID]
	if !ok {
		return entities.Principal{}, false, nil
	}
	return principal, true, nil
}

// SeedOrganization inserts or replaces an organization record.
func (s *Store) SeedOrganization(org entities.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations[org.OrgID] = cloneOrganization(org)
}

// FindOrganization returns a copy of the stored record.
func (s *Store) FindOrganization(_ context.Context, orgID string) (entities.Organization, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.organizations[orgID]
	if !ok {
		return entities.Organization{}, false, nil
	}
	return cloneOrganization(org), true, nil
}

// SetNow pins the clock for deterministic tests.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pinned := now.UTC()
	s.now = &pinned
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now != nil {
		return *s.now
	}
	return time.Now().UTC()
}

func cloneOrganization(org entities.Organization) entities.Organization {
	copied := org
	copied.Admins = make([]entities.AdminMembership, 0, len(org.Admins))
	for _, membership := range org.Admins {
		cloned := membership
		cloned.Permissions = membership.Permissions.Clone()
		copied.Admins = append(copied.Admins, cloned)
	}
	return copied
}
