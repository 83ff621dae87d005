package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb), mr
}

func TestPutGetDeleteSecret(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	expires := time.Now().Add(5 * time.Hour)
	require.NoError(t, store.Put(ctx, "subj", "dev", "s3cret", expires))

	secret, err := store.Get(ctx, "subj", "dev")
	require.NoError(t, err)
	require.Equal(t, "s3cret", secret)

	require.NoError(t, store.Delete(ctx, "subj", "dev"))

	_, err = store.Get(ctx, "subj", "dev")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSecretsAreKeyedPerDevice(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	expires := time.Now().Add(time.Hour)
	require.NoError(t, store.Put(ctx, "subj", "phone", "secret-a", expires))
	require.NoError(t, store.Put(ctx, "subj", "laptop", "secret-b", expires))

	a, err := store.Get(ctx, "subj", "phone")
	require.NoError(t, err)
	b, err := store.Get(ctx, "subj", "laptop")
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	// Deleting one device's secret leaves the other session alone.
	require.NoError(t, store.Delete(ctx, "subj", "phone"))
	_, err = store.Get(ctx, "subj", "phone")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "subj", "laptop")
	require.NoError(t, err)
}

func TestSecretExpiresAtDeadline(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Put(ctx, "subj", "dev", "s3cret", time.Now().Add(time.Minute)))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "subj", "dev")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTicketRoundTripAndTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	ticket := Ticket{Token: "abc123", SubjectID: "subj", TenantID: 7}
	require.NoError(t, store.PutTicket(ctx, ticket))

	got, err := store.GetTicket(ctx, "abc123")
	require.NoError(t, err)
	require.Equal(t, ticket, got)

	_, err = store.GetTicket(ctx, "unknown")
	require.ErrorIs(t, err, ErrNotFound)

	mr.FastForward(TicketTTL + time.Second)
	_, err = store.GetTicket(ctx, "abc123")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTicketConsumesIt(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.PutTicket(ctx, Ticket{Token: "one-shot", SubjectID: "subj", TenantID: 1}))
	require.NoError(t, store.DeleteTicket(ctx, "one-shot"))

	_, err := store.GetTicket(ctx, "one-shot")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUnavailableIsDistinguished(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	mr.Close()

	_, err := store.Get(ctx, "subj", "dev")
	require.ErrorIs(t, err, ErrUnavailable)
	require.NotErrorIs(t, err, ErrNotFound)

	err = store.Put(ctx, "subj", "dev", "s3cret", time.Now().Add(time.Hour))
	require.ErrorIs(t, err, ErrUnavailable)
}
