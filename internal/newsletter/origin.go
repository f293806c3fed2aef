package newsletter

import "context"

// Origins recorded in the ledger.
const (
	OriginCLI       = "cli"
	OriginHTTP      = "http"
	OriginMCP       = "mcp"
	OriginScheduler = "scheduler"
)

type originKey struct{}

// WithOrigin tags ctx with the surface that triggered a patch.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFrom returns the origin stored in ctx, defaulting to OriginCLI.
func OriginFrom(ctx context.Context) string {
	if o, ok := ctx.Value(originKey{}).(string); ok && o != "" {
		return o
	}
	return OriginCLI
}
