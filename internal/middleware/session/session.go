package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"extrud-backend/internal/storage"
)

// CookieName is the HTTP-only cookie carrying the signed session token.
const CookieName = "extrud_session"

type ctxKey struct{}

// AccountLoader resolves a server-side session id into the logged-in
// account.
type AccountLoader interface {
	GetSessionAccount(ctx context.Context, sessionID string) (*storage.Account, error)
}

// Token signs a session id into the cookie value. The token itself holds
// no account data; it only references the sessions row.
func Token(secret string, sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// SessionID verifies a cookie token and returns the session id it
// references.
func SessionID(secret string, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errors.New("invalid session token")
	}
	return claims.Subject, nil
}

// Auth rejects requests without a valid session cookie and stores the
// resolved account in the request context.
func Auth(secret string, loader AccountLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			sessionID, err := SessionID(secret, cookie.Value)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			account, err := loader.GetSessionAccount(r.Context(), sessionID)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, *account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Account returns the logged-in account stored by Auth. The ok result is
// false only for handlers mistakenly mounted outside the middleware.
func Account(ctx context.Context) (storage.Account, bool) {
	acc, ok := ctx.Value(ctxKey{}).(storage.Account)
	return acc, ok
}

// WithAccount injects an account directly, bypassing the cookie path.
// Used by handler tests.
func WithAccount(ctx context.Context, acc storage.Account) context.Context {
	return context.WithValue(ctx, ctxKey{}, acc)
}
