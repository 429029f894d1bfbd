package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"task_server_go/auth"
)

type contextKey string

// UserIDKey - ключ для хранения ID пользователя в контексте запроса.
const UserIDKey contextKey = "userID"

// UserIDFromContext достает ID аутентифицированного пользователя из контекста.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok && id != 0
}

// JWT проверяет наличие и валидность JWT в заголовке Authorization.
// Если токен валиден, ID пользователя добавляется в контекст запроса.
// Любой сбой проверки — 401 с телом {"Details": ...}.
func JWT(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				unauthorized(w, "Invalid Authorization header format (expected Bearer {token})")
				return
			}

			userID, err := svc.ValidateToken(parts[1])
			if err != nil {
				log.Printf("JWT middleware: invalid token for %s %s: %v", r.Method, r.URL.Path, err)
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"Details": message})
}
