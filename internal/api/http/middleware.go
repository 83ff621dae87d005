package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/slicelab/pizzeria/internal/api/auth"
	"github.com/slicelab/pizzeria/pkg/httpx"
	"github.com/slicelab/pizzeria/pkg/slogx"
)

// VerifyTimeout bounds the session store round-trip during verification. An
// unreachable cache must fail the request, not hang it.
const VerifyTimeout = 2 * time.Second

// AuthMiddleware is the auth gate: it extracts the bearer credential, runs
// full verification and attaches the caller's identity to the request
// context. All four rejection reasons collapse into one generic response so
// clients learn nothing about which check failed; the reason is only logged.
func AuthMiddleware(tokens *auth.TokenService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				rejectAuth(w)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			vctx, cancel := context.WithTimeout(ctx, VerifyTimeout)
			defer cancel()

			claims, err := tokens.Verify(vctx, raw)
			if err != nil {
				if auth.IsRejection(err) {
					log.Warn("credential rejected", "err", err)
					rejectAuth(w)
					return
				}

				// Infrastructure trouble is not an auth failure.
				log.Error("credential verification unavailable", "err", err)
				httpx.WriteError(w, http.StatusInternalServerError, "server error")
				return
			}

			ctx = context.WithValue(ctx, httpx.CtxKeySubjectID, claims.SubjectID)
			ctx = context.WithValue(ctx, httpx.CtxKeyTenantID, claims.TenantID)
			ctx = context.WithValue(ctx, httpx.CtxKeyDeviceID, claims.DeviceID)
			ctx = context.WithValue(ctx, httpx.CtxKeyClaims, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectAuth(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusForbidden, "authentication required")
}
