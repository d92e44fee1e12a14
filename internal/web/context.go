package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/bookimport/internal/core"
)

// WithRequestMetadata adds the caller's IP and User-Agent to ctx for import
// logging. RemoteAddr has already been resolved by TrustedRealIP.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, core.ClientInfo{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	})
}
