package middleware

import "context"

// callerIDKey stores the authenticated caller (JWT subject) in the request context.
const callerIDKey = contextKey("callerID")

// adminKey marks requests that presented a valid admin key.
const adminKey = contextKey("admin")

// GetCallerIDFromCtx retrieves the authenticated caller ID from the request context.
func GetCallerIDFromCtx(ctx context.Context) (string, bool) {
	callerID, ok := ctx.Value(callerIDKey).(string)
	return callerID, ok && callerID != ""
}

// IsAdmin reports whether AdminKeyAuth accepted the request.
func IsAdmin(ctx context.Context) bool {
	ok, _ := ctx.Value(adminKey).(bool)
	return ok
}
