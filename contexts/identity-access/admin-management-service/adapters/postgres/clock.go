package postgresadapter

import (
	"time"

	"campus/contexts/identity-access/admin-management-service/ports"
)

// SystemClock is the production wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.Clock = SystemClock{}
