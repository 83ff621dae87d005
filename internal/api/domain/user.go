package domain

import "time"

// User is an account scoped to a tenant (shop). The ID doubles as the token
// subject.
type User struct {
	ID           string
	TenantID     int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
}
