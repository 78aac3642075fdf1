package get

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"extrud-backend/internal/middleware/session"
	"extrud-backend/internal/storage"
)

type LogLister interface {
	ListLogs(ctx context.Context, caller storage.Account, filter storage.LogFilter, sort []storage.SortKey, skip int) ([]*storage.ExtrusionLog, error)
}

type ResponseLogs struct {
	Logs    []*storage.ExtrusionLog `json:"logs"`
	Message string                  `json:"message,omitempty"`
}

// ListLogs serves one page of the dashboard table. The page size is fixed;
// the client infers the end of the data from a short page.
func ListLogs(log *slog.Logger, lister LogLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logs.get.ListLogs"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		caller, ok := session.Account(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		filter := storage.LogFilter{
			Date:         q.Get("date"),
			DateFrom:     q.Get("dateFrom"),
			DateTo:       q.Get("dateTo"),
			Plant:        q.Get("plant"),
			Machine:      q.Get("machine"),
			DieCode:      q.Get("dieCode"),
			LotNumber:    q.Get("lotNo"),
			Result:       q.Get("result"),
			RemarkSearch: q.Get("remarkSearch"),
			Deleted:      q.Get("deleted"),
		}

		var sort []storage.SortKey
		if raw := q.Get("sort"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &sort); err != nil {
				log.Error("invalid sort parameter", slog.String("sort", raw))
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, ResponseLogs{Message: "Invalid sort parameter"})
				return
			}
		}

		skip := 0
		if raw := q.Get("skip"); raw != "" {
			var err error
			skip, err = strconv.Atoi(raw)
			if err != nil || skip < 0 {
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, ResponseLogs{Message: "Invalid skip parameter"})
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		logs, err := lister.ListLogs(ctx, caller, filter, sort, skip)
		if err != nil {
			log.Error("failed to list logs", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, ResponseLogs{Message: "Could not load log entries"})
			return
		}

		if logs == nil {
			logs = []*storage.ExtrusionLog{}
		}

		render.JSON(w, r, ResponseLogs{Logs: logs})
	}
}
