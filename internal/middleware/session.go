package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Totarae/AdLinker/internal/auth"
)

type contextKey string

// UserContextKey ключ имени пользователя в контексте запроса.
const UserContextKey contextKey = "username"

// SessionMiddleware закрывает все маршруты, кроме страницы входа и /api/auth/*.
// Для API-путей возвращает JSON-ошибку, для страниц — редирект на /login.
func SessionMiddleware(a *auth.Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if strings.HasPrefix(path, "/login") || strings.HasPrefix(path, "/api/auth") || path == "/ping" {
				next.ServeHTTP(w, r)
				return
			}

			isAPI := strings.HasPrefix(path, "/api/")

			if !a.HasSessionCookie(r) {
				if isAPI {
					writeAuthError(w, http.StatusUnauthorized, "Authentication required", "NO_TOKEN")
					return
				}
				http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
				return
			}

			username, ok := a.VerifySession(r)
			if !ok {
				if isAPI {
					writeAuthError(w, http.StatusForbidden, "Invalid or expired session", "INVALID_TOKEN")
					return
				}
				http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}
