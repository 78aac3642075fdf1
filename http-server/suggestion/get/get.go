package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"extrud-backend/internal/middleware/session"
	"extrud-backend/internal/storage"
)

type SuggestionSource interface {
	SuggestionData(ctx context.Context, caller storage.Account) (*storage.SuggestionData, error)
}

type Response struct {
	*storage.SuggestionData
	Message string `json:"message,omitempty"`
}

// SuggestionData serves the distinct-value lists that populate the form's
// autocomplete fields, plus plant/machine lists for admins.
func SuggestionData(log *slog.Logger, source SuggestionSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.suggestion.get.SuggestionData"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		caller, ok := session.Account(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		data, err := source.SuggestionData(ctx, caller)
		if err != nil {
			log.Error("failed to load suggestion data", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Response{Message: "Could not load suggestion data"})
			return
		}

		render.JSON(w, r, Response{SuggestionData: data})
	}
}
