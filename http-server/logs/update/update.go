package update

import (
	"context"
	"encoding/json"
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

type LogUpdater interface {
	UpdateLog(ctx context.Context, id int64, caller storage.Account, v storage.LogValues) error
}

type Response struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// UpdateLog applies a partial update (one field from the inline cell
// editor or the whole form). Only the creator or a super admin may write.
func UpdateLog(log *slog.Logger, updater LogUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.update.UpdateLog"

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

		var values storage.LogValues
		if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
			log.Error("invalid JSON", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, Response{Message: "Invalid data"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := updater.UpdateLog(ctx, id, caller, values); err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, Response{Message: "Log entry not found"})
			case errors.Is(err, storage.ErrForbidden):
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, Response{Message: "Only the creator or a super admin may edit this entry"})
			default:
				log.Error("failed to update log", slog.Int64("id", id), slog.String("error", err.Error()))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, Response{Message: "Could not update the log entry"})
			}
			return
		}

		log.Info("log updated", slog.Int64("id", id), slog.Int64("account", caller.ID))

		render.JSON(w, r, Response{OK: true})
	}
}
