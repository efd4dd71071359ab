package api

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// TokenVerifier decides whether a bearer token identifies a staff session.
// Injected rather than read from ambient state so tests and future auth
// backends can swap it out.
type TokenVerifier interface {
	Verify(token string) bool
}

// StaticTokenVerifier accepts a fixed set of tokens handed out via
// configuration. Sufficient for a deployment fronted by the staff portal.
type StaticTokenVerifier struct {
	tokens map[string]bool
}

func NewStaticTokenVerifier(tokens []string) *StaticTokenVerifier {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if t != "" {
			set[t] = true
		}
	}
	return &StaticTokenVerifier{tokens: set}
}

func (v *StaticTokenVerifier) Verify(token string) bool {
	return v.tokens[token]
}

// AuthMiddleware rejects requests without a valid Authorization bearer
// token. Health checks and the WebSocket upgrade are excluded at routing.
func AuthMiddleware(verifier TokenVerifier, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" || !verifier.Verify(token) {
				logger.WithFields(logrus.Fields{
					"path":   r.URL.Path,
					"remote": r.RemoteAddr,
				}).Warn("Rejected unauthenticated request")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"message":"Missing or invalid bearer token"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
