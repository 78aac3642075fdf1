package excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"extrud-backend/internal/middleware/session"
	"extrud-backend/internal/storage"
)

type ExcelGenerator interface {
	GenerateExcel(ctx context.Context, caller storage.Account, filter storage.LogFilter) ([]byte, error)
}

// GenerateReportExcel serves the filtered production report as a workbook
// download. Defaults to the current month when no range is given.
func GenerateReportExcel(log *slog.Logger, gen ExcelGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.excel.GenerateReportExcel"

		caller, ok := session.Account(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		from := q.Get("from")
		to := q.Get("to")

		now := time.Now()
		if from == "" {
			from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
		} else if _, err := time.Parse("2006-01-02", from); err != nil {
			http.Error(w, "invalid from date", http.StatusBadRequest)
			return
		}
		if to == "" {
			to = now.Format("2006-01-02")
		} else if _, err := time.Parse("2006-01-02", to); err != nil {
			http.Error(w, "invalid to date", http.StatusBadRequest)
			return
		}

		filter := storage.LogFilter{
			DateFrom: from,
			DateTo:   to,
			Plant:    q.Get("plant"),
			Machine:  q.Get("machine"),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		data, err := gen.GenerateExcel(ctx, caller, filter)
		if err != nil {
			log.Error("failed to generate report", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Could not generate the report", http.StatusInternalServerError)
			return
		}

		filename := fmt.Sprintf("extrusion-report_%s_%s.xlsx", from, to)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.Write(data)
	}
}
