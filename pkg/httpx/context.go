package httpx

import "context"

type ctxKey string

const (
	CtxKeySubjectID ctxKey = "subject_id"
	CtxKeyTenantID  ctxKey = "tenant_id"
	CtxKeyDeviceID  ctxKey = "device_id"
	CtxKeyClaims    ctxKey = "claims" // full token claims, if a handler wants them
)

// SubjectFromCtx returns the authenticated subject ID, or "" when the request
// did not pass through the auth gate.
func SubjectFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubjectID).(string); ok {
		return v
	}
	return ""
}

// TenantFromCtx returns the authenticated tenant ID, or 0.
func TenantFromCtx(ctx context.Context) int64 {
	if v, ok := ctx.Value(CtxKeyTenantID).(int64); ok {
		return v
	}
	return 0
}

// DeviceFromCtx returns the device ID the credential was bound to, or "".
func DeviceFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyDeviceID).(string); ok {
		return v
	}
	return ""
}
