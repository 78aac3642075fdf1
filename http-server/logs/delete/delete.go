package delete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"extrud-backend/internal/middleware/session"
	"extrud-backend/internal/storage"
)

type LogDeleter interface {
	SoftDeleteLog(ctx context.Context, id int64, caller storage.Account) error
}

type Response struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// SoftDeleteLog flags a record deleted. The row stays in the table for
// audit and a possible restore; the cleanup job purges it later.
func SoftDeleteLog(log *slog.Logger, deleter LogDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.delete.SoftDeleteLog"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		caller, ok := session.Account(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := deleter.SoftDeleteLog(ctx, id, caller); err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, Response{Message: "Log entry not found"})
			case errors.Is(err, storage.ErrForbidden):
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, Response{Message: "Only the creator or a super admin may delete this entry"})
			default:
				log.Error("failed to delete log", slog.Int64("id", id), slog.String("error", err.Error()))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, Response{Message: "Could not delete the log entry"})
			}
			return
		}

		log.Info("log soft-deleted", slog.Int64("id", id), slog.Int64("account", caller.ID))

		render.JSON(w, r, Response{OK: true})
	}
}
