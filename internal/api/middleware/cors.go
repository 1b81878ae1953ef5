package middleware

import (
	"net/http"
	"regexp"

	"github.com/go-chi/cors"
)

var localhostOrigin = regexp.MustCompile(`^http://localhost(:\d+)?$`)

// CORS allows any http://localhost port plus the configured origins, with
// credentials, and exposes the token refresh header so browser clients can
// read it.
func CORS(allowed []string) func(http.Handler) http.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		allowedSet[origin] = struct{}{}
	}

	return cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			if _, ok := allowedSet[origin]; ok {
				return true
			}
			return localhostOrigin.MatchString(origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{TokenRefreshHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
