package ids

import (
	"context"

	"github.com/google/uuid"

	"campus/contexts/identity-access/admin-management-service/ports"
)

// Generator issues UUIDv4 identifiers for principals, audit rows, and outbox
// records.
type Generator struct{}

func (Generator) NewID(_ context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var _ ports.IDGenerator = Generator{}
