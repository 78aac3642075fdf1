package get

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

	"extrud-backend/internal/storage"
)

type LogGetter interface {
	GetLog(ctx context.Context, id int64) (*storage.ExtrusionLog, error)
}

type ResponseLog struct {
	Log     *storage.ExtrusionLog `json:"log,omitempty"`
	Message string                `json:"message,omitempty"`
}

// GetLog serves one record, used by the single-field edit form.
func GetLog(log *slog.Logger, getter LogGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.get.GetLog"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, err := getter.GetLog(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, ResponseLog{Message: "Log entry not found"})
				return
			}
			log.Error("failed to get log", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, ResponseLog{Message: "Could not load the log entry"})
			return
		}

		render.JSON(w, r, ResponseLog{Log: rec})
	}
}
