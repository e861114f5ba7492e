package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/docimport/internal/core"
	mw "github.com/JonMunkholm/docimport/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for the
// import history row. RemoteAddr has already been resolved by TrustedRealIP.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithRequestMeta(ctx, mw.ClientIP(r), r.UserAgent())
}
