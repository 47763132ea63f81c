package credentials

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"campus/contexts/identity-access/admin-management-service/ports"
)

const secretBytes = 24

// Issuer generates one-time admin secrets and their stored bcrypt hashes.
type Issuer struct {
	Cost int
}

// Generate returns a URL-safe random secret. The raw value is delivered once
// through the notifier and never persisted.
func (i Issuer) Generate(_ context.Context) (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate admin secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (i Issuer) Hash(secret string) (string, error) {
	cost := i.Cost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash admin secret: %w", err)
	}
	return string(hash), nil
}

var _ ports.CredentialIssuer = Issuer{}
