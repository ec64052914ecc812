package middleware

import "net/http"

// NewMaxBodySizeHandler returns a middleware that limits request bodies to
// limit bytes. A request whose Content-Length already exceeds the limit is
// rejected with 413 before the next handler runs; otherwise the body is
// wrapped in http.MaxBytesReader so reads past the limit fail.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
