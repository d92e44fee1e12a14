package core

import "context"

type contextKey string

const ctxKeyClient contextKey = "client"

// ClientInfo identifies the caller of an import for log lines.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// ContextWithClient attaches caller details to ctx.
func ContextWithClient(ctx context.Context, c ClientInfo) context.Context {
	return context.WithValue(ctx, ctxKeyClient, c)
}

// ClientFromContext returns the caller details stored in ctx, if any.
func ClientFromContext(ctx context.Context) (ClientInfo, bool) {
	c, ok := ctx.Value(ctxKeyClient).(ClientInfo)
	return c, ok
}
