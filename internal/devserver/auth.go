package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fieldline/internal/repo"
)

const tokenTTL = 24 * time.Hour

// handleLogin is the one form-encoded endpoint: it checks the dispatcher's
// credentials and issues a bearer token.
func (s *server) handleLogin(secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid form"})
			return
		}
		username := strings.TrimSpace(r.PostFormValue("username"))
		password := r.PostFormValue("password")
		if username == "" || password == "" {
			respondJSON(w, http.StatusBadRequest, map[string]string{"message": "username and password are required"})
			return
		}
		user, err := s.repo.GetUser(r.Context(), username)
		if err == repo.ErrNotFound {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
			return
		}
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
			return
		}
		now := s.now()
		claims := jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
			return
		}
		s.log.Info("login", zap.String("username", username))
		respondJSON(w, http.StatusOK, map[string]string{"access_token": token})
	}
}

// newAuthMiddleware enforces bearer auth on the API, exempting login and
// the token-bearing report endpoints engineers open without a session.
func newAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			if !strings.HasPrefix(p, basePath+"/") ||
				p == basePath+"/login" ||
				strings.HasPrefix(p, basePath+"/reports/") {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "authentication required"})
				return
			}
			parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			claims := &jwt.RegisteredClaims{}
			parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				return []byte(secret), nil
			})
			if err != nil || !parsed.Valid || claims.Subject == "" {
				respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(strings.TrimSpace(authz))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
