package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/slicelab/pizzeria/internal/api/auth"
	"github.com/slicelab/pizzeria/internal/api/session"
	"github.com/slicelab/pizzeria/pkg/httpx"
)

func newGate(t *testing.T) (*auth.TokenService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return &auth.TokenService{Sessions: session.NewStore(rdb)}, mr
}

// echoIdentity reports what the gate attached to the request context.
func echoIdentity(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"subject_id": httpx.SubjectFromCtx(r.Context()),
		"tenant_id":  httpx.TenantFromCtx(r.Context()),
		"device_id":  httpx.DeviceFromCtx(r.Context()),
	})
}

func gateRequest(t *testing.T, tokens *auth.TokenService, authz string) *httptest.ResponseRecorder {
	t.Helper()

	handler := AuthMiddleware(tokens)(http.HandlerFunc(echoIdentity))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthGateAllowsValidCredential(t *testing.T) {
	tokens, _ := newGate(t)

	token, claims, err := tokens.Issue(context.Background(), "u1", "Mario", 7)
	require.NoError(t, err)

	rec := gateRequest(t, tokens, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		SubjectID string `json:"subject_id"`
		TenantID  int64  `json:"tenant_id"`
		DeviceID  string `json:"device_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "u1", body.SubjectID)
	require.Equal(t, int64(7), body.TenantID)
	require.Equal(t, claims.DeviceID, body.DeviceID)
}

func TestAuthGateRejectionsAreIndistinguishable(t *testing.T) {
	tokens, _ := newGate(t)

	token, claims, err := tokens.Issue(context.Background(), "u1", "Mario", 7)
	require.NoError(t, err)
	require.NoError(t, tokens.Revoke(context.Background(), "u1", claims.DeviceID))

	cases := map[string]string{
		"missing header":  "",
		"wrong scheme":    "Basic dXNlcjpwdw==",
		"garbage token":   "Bearer not-a-token",
		"revoked session": "Bearer " + token,
	}

	var bodies []string
	for name, authz := range cases {
		rec := gateRequest(t, tokens, authz)
		require.Equal(t, http.StatusForbidden, rec.Code, name)
		bodies = append(bodies, rec.Body.String())
	}

	// Every rejection carries the exact same body.
	for _, body := range bodies[1:] {
		require.Equal(t, bodies[0], body)
	}
}

func TestAuthGateInfraFailureIsServerError(t *testing.T) {
	tokens, mr := newGate(t)

	token, _, err := tokens.Issue(context.Background(), "u1", "Mario", 7)
	require.NoError(t, err)

	mr.Close()

	rec := gateRequest(t, tokens, "Bearer "+token)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
