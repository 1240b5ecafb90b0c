package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	cookieName = "session"
	sessionTTL = 24 * time.Hour
)

// Claims полезная нагрузка сессионного токена.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Auth выпускает и проверяет сессионные куки со подписанными JWT.
type Auth struct {
	secret        []byte
	loginUsername string
	loginPassword string
}

// New создаёт компонент аутентификации.
func New(secret, loginUsername, loginPassword string) *Auth {
	return &Auth{
		secret:        []byte(secret),
		loginUsername: loginUsername,
		loginPassword: loginPassword,
	}
}

// ValidateCredentials сверяет учётные данные с настроенными оператором.
func (a *Auth) ValidateCredentials(username, password string) bool {
	return username == a.loginUsername && password == a.loginPassword
}

// buildToken подписывает JWT с именем пользователя и сроком жизни сессии.
func (a *Auth) buildToken(username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
		},
		Username: username,
	})
	return token.SignedString(a.secret)
}

// IssueSession выпускает сессионную куку для пользователя.
func (a *Auth) IssueSession(w http.ResponseWriter, username string) error {
	signed, err := a.buildToken(username)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	return nil
}

// ClearSession сбрасывает сессионную куку.
func (a *Auth) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// VerifySession проверяет сессионную куку запроса.
// Возвращает имя пользователя и признак валидности.
func (a *Auth) VerifySession(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", false
	}
	return claims.Username, true
}

// HasSessionCookie сообщает, присутствует ли в запросе сессионная кука
// (без проверки подписи).
func (a *Auth) HasSessionCookie(r *http.Request) bool {
	cookie, err := r.Cookie(cookieName)
	return err == nil && cookie.Value != ""
}

// SignSessionValue возвращает подписанный токен для имитации валидной куки в тестах.
func (a *Auth) SignSessionValue(username string) (string, error) {
	return a.buildToken(username)
}

// CookieName имя сессионной куки.
func CookieName() string { return cookieName }
