package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the bearer credential payload. The wire format is fixed: `exp` as
// integer seconds since epoch plus the four identity fields below. Anything
// else in the payload is ignored on verification.
type Claims struct {
	jwt.RegisteredClaims

	SubjectID   string `json:"subject_id"`
	DisplayName string `json:"display_name"`
	TenantID    int64  `json:"tenant_id"`
	DeviceID    string `json:"device_id"`
}

// Expiry returns the credential's absolute expiration in seconds since epoch,
// or 0 when the claim is missing.
func (c Claims) Expiry() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix()
}
