// Package ratelimit caps how often a single client may submit the contact form.
//
// The default Window keeps counters in process memory, so every server instance
// enforces its own limit. RedisWindow shares the counter across instances.
package ratelimit

import (
	"context"
	"net/http"
	"strings"
)

// UnknownClient is the key used when a request carries no forwarded address.
// Every such caller shares one bucket.
const UnknownClient = "unknown"

// ForwardedForHeader carries the originating client address set by the proxy.
const ForwardedForHeader = "X-Forwarded-For"

// Limiter decides whether the caller identified by key may proceed.
// Implementations must be safe for concurrent use and never fail the request.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// ClientKey derives the limiter key from the first X-Forwarded-For hop. Proxies
// append their own hops, so keying on the whole header would give one visitor
// a different bucket per network path.
func ClientKey(r *http.Request) string {
	if r == nil {
		return UnknownClient
	}
	xff := r.Header.Get(ForwardedForHeader)
	if xff == "" {
		return UnknownClient
	}
	first, _, _ := strings.Cut(xff, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return UnknownClient
}
