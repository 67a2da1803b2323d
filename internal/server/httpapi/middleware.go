package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dkurosov/authguard/internal/common"
	"github.com/dkurosov/authguard/internal/server/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// authenticate requires a valid, non-denylisted bearer access token and
// stores its claims in the request context.
func (s *Server) authenticate(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			return
		}

		claims, err := s.accounts.CheckAccess(r.Context(), token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID, _ := common.MakeRandHexString(8)
		next.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "request handled",
			"request_id", requestID, "method", r.Method, "path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// subjectID returns the credential id of the authenticated caller. Handlers
// behind authenticate can rely on it being present.
func subjectID(ctx context.Context) string {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	if !ok {
		return ""
	}
	return claims.Subject
}
