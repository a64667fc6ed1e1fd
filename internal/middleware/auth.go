package middleware

import (
	"net/http"
	"strings"

	"github.com/Dan9191/money-marathon/internal/auth"
	"github.com/Dan9191/money-marathon/internal/httpx"
	"github.com/Dan9191/money-marathon/internal/tokenstore"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware rejects requests without a valid, unrevoked bearer token and
// stores the token claims in the request context.
func AuthMiddleware(jwt auth.JWT, tokens tokenstore.Store, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerToken(r.Header.Get("Authorization"))
			if tok == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := jwt.Verify(tok)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			revoked, err := tokens.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				log.WithError(err).Error("Failed to check token revocation")
				httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if revoked {
				httpx.WriteError(w, http.StatusUnauthorized, "token has been revoked")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	parts := strings.SplitN(v, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
