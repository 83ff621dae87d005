// Package session holds the server-side half of the credential scheme: the
// per-(subject, device) secrets that token signatures are derived from, plus
// short-lived stream tickets. Everything lives in a shared Redis instance and
// expires there; deleting a secret is how a credential is revoked.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TicketTTL is how long a stream ticket stays redeemable.
const TicketTTL = 60 * time.Second

var (
	// ErrNotFound means the key expired or was never set. For session
	// secrets this is indistinguishable from revocation, by design.
	ErrNotFound = errors.New("session: not found")

	// ErrUnavailable wraps any transport-level failure talking to the
	// cache. It must never be conflated with an auth rejection.
	ErrUnavailable = errors.New("session: store unavailable")
)

// Ticket is a single-purpose short-lived credential for a secondary channel
// (e.g. the notifications stream handshake). It is looked up by its own token
// value, not by subject.
type Ticket struct {
	Token     string `json:"token"`
	SubjectID string `json:"subject_id"`
	TenantID  int64  `json:"tenant_id"`
}

// Store wraps the shared Redis instance. All methods are network calls;
// callers are expected to bound them with a context timeout.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func sessionKey(subject, device string) string {
	return "session:" + subject + ":" + device
}

func ticketKey(token string) string {
	return "ticket:" + token
}

// Put upserts the session secret for (subject, device) with an absolute
// expiry. One subject may hold any number of concurrent secrets, one per
// device.
func (s *Store) Put(ctx context.Context, subject, device, secret string, expiresAt time.Time) error {
	err := s.rdb.SetArgs(ctx, sessionKey(subject, device), secret, redis.SetArgs{
		ExpireAt: expiresAt,
	}).Err()
	if err != nil {
		return unavailable("put session", err)
	}
	return nil
}

// Get returns the currently live secret for (subject, device).
func (s *Store) Get(ctx context.Context, subject, device string) (string, error) {
	secret, err := s.rdb.Get(ctx, sessionKey(subject, device)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", unavailable("get session", err)
	}
	return secret, nil
}

// Delete removes the session secret, immediately invalidating every
// credential derived from it. Used for logout and server-side revocation.
func (s *Store) Delete(ctx context.Context, subject, device string) error {
	if err := s.rdb.Del(ctx, sessionKey(subject, device)).Err(); err != nil {
		return unavailable("delete session", err)
	}
	return nil
}

// PutTicket stores a stream ticket under its own token value for TicketTTL.
func (s *Store) PutTicket(ctx context.Context, t Ticket) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("session: encode ticket: %w", err)
	}

	if err := s.rdb.Set(ctx, ticketKey(t.Token), raw, TicketTTL).Err(); err != nil {
		return unavailable("put ticket", err)
	}
	return nil
}

// GetTicket looks a ticket up by its token value.
func (s *Store) GetTicket(ctx context.Context, token string) (Ticket, error) {
	raw, err := s.rdb.Get(ctx, ticketKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Ticket{}, ErrNotFound
	}
	if err != nil {
		return Ticket{}, unavailable("get ticket", err)
	}

	var t Ticket
	if err := json.Unmarshal(raw, &t); err != nil {
		return Ticket{}, fmt.Errorf("session: decode ticket: %w", err)
	}
	return t, nil
}

// DeleteTicket consumes a ticket so it cannot be redeemed twice.
func (s *Store) DeleteTicket(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, ticketKey(token)).Err(); err != nil {
		return unavailable("delete ticket", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %s", ErrUnavailable, op, err)
}
