package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// Header is the canonical request ID header.
const Header = "X-Request-ID"

const maxIDLength = 128

var validIDRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Middleware attaches a request ID to every request. A client-supplied
// X-Request-ID is reused when it passes validation, otherwise a fresh
// UUID replaces it. The ID lands in the request context and is echoed
// back in the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if !isValidRequestID(requestID) {
			requestID = uuid.New().String()
		}
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), requestID)))
	})
}

func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > maxIDLength {
		return false
	}
	return validIDRegex.MatchString(id)
}
