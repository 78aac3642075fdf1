package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"extrud-backend/internal/middleware/session"
	"extrud-backend/internal/storage"
)

type LogCreator interface {
	CreateLog(ctx context.Context, caller storage.Account, v storage.LogValues) (int64, error)
}

type Response struct {
	OK      bool   `json:"ok"`
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

func CreateLog(log *slog.Logger, creator LogCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.create.CreateLog"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		caller, ok := session.Account(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
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

		id, err := creator.CreateLog(ctx, caller, values)
		if err != nil {
			log.Error("failed to create log", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Message: "Could not save the log entry"})
			return
		}

		log.Info("log created", slog.Int64("id", id), slog.Int64("account", caller.ID))

		render.JSON(w, r, Response{OK: true, ID: id})
	}
}
