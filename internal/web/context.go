package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/quizbank/internal/core"
)

// WithRequestMetadata adds the client address and User-Agent to the context
// so import logs can name who sent a file.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, clientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}

// clientIP returns the request's client address without a port.
// RemoteAddr has already been rewritten by TrustedRealIP when the request
// came through a trusted proxy.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
