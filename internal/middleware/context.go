package middleware

import "context"

type ctxKey string

const (
	ctxCorrelationID ctxKey = "correlation_id"
	ctxUserID        ctxKey = "user_id"
	ctxBearerToken   ctxKey = "bearer_token"
)

func stringFrom(ctx context.Context, k ctxKey) string {
	if v := ctx.Value(k); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func GetCorrelationID(ctx context.Context) string { return stringFrom(ctx, ctxCorrelationID) }

func GetUserID(ctx context.Context) string { return stringFrom(ctx, ctxUserID) }

// GetBearerToken returns the caller's token, empty for unauthenticated callers.
func GetBearerToken(ctx context.Context) string { return stringFrom(ctx, ctxBearerToken) }

func IsAuthenticated(ctx context.Context) bool { return GetBearerToken(ctx) != "" }

// WithCaller attaches a caller identity, for code running outside an HTTP request.
func WithCaller(ctx context.Context, userID, token string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	if token != "" {
		ctx = context.WithValue(ctx, ctxBearerToken, token)
	}
	return ctx
}
