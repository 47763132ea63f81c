package queries

import (
	"context"
	"errors"
	"testing"

	authzentities "campus/contexts/identity-access/authorization-service/domain/entities"
	authzerrors "campus/contexts/identity-access/authorization-service/domain/errors"
)

func TestListAuditLogsPrimaryOnly(t *testing.T) {
	store := newFixtureStore()
	service := Service{Repository: store, Clock: store}

	if _, err := service.ListAuditLogs(context.Background(), "prim-1", "org-1", 10); err != nil {
		t.Fatalf("primary viewer: %v", err)
	}

	var denial *authzerrors.DenialError
	_, err := service.ListAuditLogs(context.Background(), "sec-1", "org-1", 10)
	if !errors.As(err, &denial) || denial.Reason != authzentities.ReasonPrimaryAdminRequired {
		t.Fatalf("secondary viewer: err = %v", err)
	}
}

func TestListAuditLogsMissingOrganization(t *testing.T) {
	service := Service{Repository: newFixtureStore()}

	var denial *authzerrors.DenialError
	_, err := service.ListAuditLogs(context.Background(), "prim-1", "org-gone", 10)
	if !errors.As(err, &denial) || denial.Reason != authzentities.ReasonOrganizationNotFound {
		t.Fatalf("err = %v", err)
	}
}
