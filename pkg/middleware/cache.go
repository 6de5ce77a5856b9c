package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl returns middleware that sets a Cache-Control header on GET
// responses. The storefront uses it on catalog reads, which tolerate short
// staleness because events refresh the snapshot anyway. A maxAge of zero or
// less disables caching entirely.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", maxAge)
	if maxAge <= 0 {
		value = "no-store"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
