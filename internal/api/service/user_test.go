package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/slicelab/pizzeria/internal/api/auth"
	"github.com/slicelab/pizzeria/internal/api/session"
	"github.com/slicelab/pizzeria/internal/api/store/drivers/sqlite"
)

func newTestDB(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newUserService(t *testing.T) (*UserService, *auth.TokenService) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := &auth.TokenService{Sessions: session.NewStore(rdb)}
	return &UserService{Store: newTestDB(t), Tokens: tokens}, tokens
}

func TestUserCreateAndLogin(t *testing.T) {
	svc, tokens := newUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{
		TenantID: 1,
		Username: "mario",
		Email:    "mario@example.com",
		Password: "very-secret-pw",
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)

	token, claims, err := svc.Login(ctx, 1, "mario", "very-secret-pw")
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.SubjectID)
	require.Equal(t, "mario", claims.DisplayName)
	require.Equal(t, int64(1), claims.TenantID)

	// The minted credential verifies end to end.
	verified, err := tokens.Verify(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, verified.SubjectID)

	// Login records the visit.
	info, err := svc.Info(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, info.LastLogin)
}

func TestUserLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{
		TenantID: 1,
		Username: "mario",
		Password: "very-secret-pw",
	})
	require.NoError(t, err)

	// Wrong password, unknown user and wrong tenant all look the same.
	_, _, err = svc.Login(ctx, 1, "mario", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, 1, "nobody", "very-secret-pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, 2, "mario", "very-secret-pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{TenantID: 1, Username: "mario", Password: "very-secret-pw"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserInput{TenantID: 1, Username: "mario", Password: "other-secret-pw"})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserLogoutRevokesSession(t *testing.T) {
	svc, tokens := newUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{TenantID: 1, Username: "mario", Password: "very-secret-pw"})
	require.NoError(t, err)

	token, claims, err := svc.Login(ctx, 1, "mario", "very-secret-pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.SubjectID, claims.DeviceID))

	_, err = tokens.Verify(ctx, token)
	require.ErrorIs(t, err, auth.ErrSessionRevoked)
}
