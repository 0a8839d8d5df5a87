// Package requestctx carries the request id assigned by the HTTP layer so
// log lines and error envelopes at any depth can reference it.
package requestctx

import "context"

type key struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key{}, id)
}

// GetRequestID returns the id set by the middleware, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(key{}).(string)
	return id
}
