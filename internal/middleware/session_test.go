package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Totarae/AdLinker/internal/auth"
	"github.com/Totarae/AdLinker/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatedHandler(t *testing.T) (http.Handler, *auth.Auth) {
	t.Helper()
	a := auth.New("test-secret", "admin", "pass")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, _ := r.Context().Value(middleware.UserContextKey).(string)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(username))
	})
	return middleware.SessionMiddleware(a)(next), a
}

func TestSessionMiddleware_NoTokenAPI(t *testing.T) {
	h, _ := gatedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/pubs", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NO_TOKEN", body["code"])
}

func TestSessionMiddleware_InvalidTokenAPI(t *testing.T) {
	h, _ := gatedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/pubs", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName(), Value: "broken"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestSessionMiddleware_RedirectForPages(t *testing.T) {
	h, _ := gatedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login", rec.Result().Header.Get("Location"))
}

func TestSessionMiddleware_AuthRoutesPass(t *testing.T) {
	h, _ := gatedHandler(t)

	for _, path := range []string{"/login", "/api/auth/login", "/api/auth/logout"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestSessionMiddleware_ValidToken(t *testing.T) {
	h, a := gatedHandler(t)

	signed, err := a.SignSessionValue("admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/pubs", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName(), Value: signed})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Имя пользователя прокинуто в контекст
	assert.Equal(t, "admin", rec.Body.String())
}
