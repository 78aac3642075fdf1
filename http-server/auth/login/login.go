package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"extrud-backend/internal/middleware/session"
	"extrud-backend/internal/storage"
)

type SessionStorage interface {
	GetAccountByUsername(ctx context.Context, username string) (*storage.Account, error)
	CreateSession(ctx context.Context, sess storage.Session) error
	DeleteSession(ctx context.Context, sessionID string) error
}

type Request struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Response struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Login checks the credentials, creates a server-side session row and sets
// the HTTP-only cookie carrying its signed token.
func Login(log *slog.Logger, store SessionStorage, secret string, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login.Login"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, Response{Message: "Invalid data"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		account, err := store.GetAccountByUsername(ctx, req.Username)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				log.Error("failed to load account", slog.String("op", op), slog.String("error", err.Error()))
			}
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, Response{Message: "Wrong username or password"})
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, Response{Message: "Wrong username or password"})
			return
		}

		sess := storage.Session{
			ID:        uuid.NewString(),
			AccountID: account.ID,
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(ttl),
		}
		if err := store.CreateSession(ctx, sess); err != nil {
			log.Error("failed to create session", slog.String("op", op), slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Message: "Could not log in"})
			return
		}

		token, err := session.Token(secret, sess.ID, sess.ExpiresAt)
		if err != nil {
			log.Error("failed to sign session token", slog.String("op", op), slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Message: "Could not log in"})
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    token,
			Path:     "/",
			Expires:  sess.ExpiresAt,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		log.Info("login", slog.String("username", account.Username), slog.Int64("account", account.ID))

		render.JSON(w, r, Response{OK: true})
	}
}

// Logout revokes the server-side session and clears the cookie.
func Logout(log *slog.Logger, store SessionStorage, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login.Logout"

		cookie, err := r.Cookie(session.CookieName)
		if err == nil {
			if sessionID, err := session.SessionID(secret, cookie.Value); err == nil {
				ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
				defer cancel()
				if err := store.DeleteSession(ctx, sessionID); err != nil {
					log.Error("failed to delete session", slog.String("op", op), slog.String("error", err.Error()))
				}
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})

		render.JSON(w, r, Response{OK: true})
	}
}
