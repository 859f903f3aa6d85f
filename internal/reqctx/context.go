package reqctx

import "context"

type ctxKey string

const (
	keyRID    ctxKey = "rid"
	keyUserID ctxKey = "user_id"
	keyRole   ctxKey = "role"
)

// WithRID stores the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns the correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// WithActor stores the authenticated user id and role.
func WithActor(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, keyUserID, userID)
	return context.WithValue(ctx, keyRole, role)
}

// Actor returns the authenticated user id and role, empty when anonymous.
func Actor(ctx context.Context) (userID, role string) {
	userID, _ = ctx.Value(keyUserID).(string)
	role, _ = ctx.Value(keyRole).(string)
	return userID, role
}
