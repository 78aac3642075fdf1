package mysql

import (
	"context"
	"fmt"
	"strings"

	"extrud-backend/internal/storage"
)

// sortColumns whitelists the field ids a caller may sort on. Anything not
// listed is silently dropped from the sort spec.
var sortColumns = map[string]string{
	"date":               "l.log_date",
	"startTime":          "l.start_time",
	"endTime":            "l.end_time",
	"dieCode":            "l.die_code",
	"lotNumberCode":      "l.lot_number_code",
	"billetType":         "l.billet_type",
	"ramSpeed":           "l.ram_speed",
	"result":             "l.result",
	"productionQuantity": "l.production_quantity",
	"ngQuantity":         "l.ng_quantity",
	"lastEdited":         "l.last_edited",
	"plant":              "a.plant",
	"machine":            "a.machine",
	"customer":           "l.customer",
	"item":               "l.item",
}

// buildListQuery composes the single paginated read for the dashboard
// table. Kept free of *sql.DB so the composition is unit-testable.
func buildListQuery(caller storage.Account, filter storage.LogFilter, sort []storage.SortKey, skip int) (string, []any) {
	where := []string{"1 = 1"}
	var args []any

	switch filter.Deleted {
	case storage.DeletedOnly:
		where = append(where, "l.deleted = TRUE")
	case storage.DeletedBoth:
		// no clause
	default:
		where = append(where, "l.deleted = FALSE")
	}

	// Operators only ever see their own runs, whatever else they filter by.
	if !caller.IsAdmin() {
		where = append(where, "l.created_by = ?")
		args = append(args, caller.ID)
	}

	switch {
	case filter.Date != "":
		where = append(where, "l.log_date = ?")
		args = append(args, filter.Date)
	case filter.DateFrom != "" && filter.DateFrom == filter.DateTo:
		// Degenerate range collapses to an equality match.
		where = append(where, "l.log_date = ?")
		args = append(args, filter.DateFrom)
	default:
		if filter.DateFrom != "" {
			where = append(where, "l.log_date >= ?")
			args = append(args, filter.DateFrom)
		}
		if filter.DateTo != "" {
			where = append(where, "l.log_date <= ?")
			args = append(args, filter.DateTo)
		}
	}

	if filter.Plant != "" {
		where = append(where, "a.plant = ?")
		args = append(args, filter.Plant)
	}
	if filter.Machine != "" {
		where = append(where, "a.machine = ?")
		args = append(args, filter.Machine)
	}
	if filter.DieCode != "" {
		where = append(where, "l.die_code = ?")
		args = append(args, filter.DieCode)
	}
	if filter.LotNumber != "" {
		where = append(where, "l.lot_number_code = ?")
		args = append(args, filter.LotNumber)
	}
	if filter.Result != "" {
		where = append(where, "l.result = ?")
		args = append(args, filter.Result)
	}
	if filter.RemarkSearch != "" {
		// BINARY keeps the substring match case sensitive.
		where = append(where, "l.remark LIKE BINARY ?")
		args = append(args, "%"+filter.RemarkSearch+"%")
	}

	var order []string
	for _, key := range sort {
		col, ok := sortColumns[key.ID]
		if !ok {
			continue
		}
		dir := "ASC"
		if key.Desc {
			dir = "DESC"
		}
		order = append(order, col+" "+dir)
	}
	if len(order) == 0 {
		order = []string{"l.log_date DESC", "l.start_time DESC"}
	}

	stmt := "SELECT " + logColumns + `
		FROM extrusion_logs l
		JOIN accounts a ON a.id = l.created_by
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + strings.Join(order, ", ") + `
		LIMIT ? OFFSET ?`
	args = append(args, storage.PageSize, skip)

	return stmt, args
}

func (s *Storage) ListLogs(ctx context.Context, caller storage.Account, filter storage.LogFilter, sort []storage.SortKey, skip int) ([]*storage.ExtrusionLog, error) {
	const op = "storage.mysql.ListLogs"

	stmt, args := buildListQuery(caller, filter, sort, skip)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var logs []*storage.ExtrusionLog
	for rows.Next() {
		rec, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		logs = append(logs, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return logs, nil
}
