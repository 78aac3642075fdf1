package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"extrud-backend/internal/storage"
)

// referenceColumns maps each distinguished field id to its log column,
// derived once from the shared field enumeration.
var referenceColumns = func() map[string]string {
	cols := make(map[string]string, len(storage.ReferenceTables))
	for _, f := range (storage.LogValues{}).Fields() {
		if _, ok := storage.ReferenceTables[f.ID]; ok {
			cols[f.ID] = f.Column
		}
	}
	return cols
}()

// syncReferences inserts a lookup row for every distinguished free-text
// value present in the payload. INSERT IGNORE makes the check-then-insert
// race tolerant: concurrent submissions of the same new value neither fail
// nor duplicate.
func syncReferences(ctx context.Context, tx *sql.Tx, v storage.LogValues) error {
	for _, f := range v.Fields() {
		table, ok := storage.ReferenceTables[f.ID]
		if !ok || f.Value == nil {
			continue
		}
		name, ok := f.Value.(string)
		if !ok || name == "" {
			continue
		}

		stmt := fmt.Sprintf("INSERT IGNORE INTO %s (name) VALUES (?)", table)
		if _, err := tx.ExecContext(ctx, stmt, name); err != nil {
			return fmt.Errorf("sync reference %s=%q: %w", f.ID, name, err)
		}
	}

	return nil
}

// SuggestionData collects the autocomplete lists for the dashboard form.
// Admin callers additionally receive the distinct plant and machine lists.
func (s *Storage) SuggestionData(ctx context.Context, caller storage.Account) (*storage.SuggestionData, error) {
	const op = "storage.mysql.SuggestionData"

	var data storage.SuggestionData

	g, gCtx := errgroup.WithContext(ctx)
	lists := []struct {
		table string
		dst   *[]string
	}{
		{"customers", &data.Customers},
		{"dies", &data.Dies},
		{"items", &data.Items},
		{"lot_numbers", &data.LotNumbers},
		{"billet_types", &data.BilletTypes},
		{"codes", &data.Codes},
		{"cooling_methods", &data.CoolingMethods},
	}
	for _, l := range lists {
		l := l
		g.Go(func() error {
			values, err := s.listValues(gCtx, fmt.Sprintf("SELECT name FROM %s ORDER BY name", l.table))
			if err != nil {
				return fmt.Errorf("%s: %w", l.table, err)
			}
			*l.dst = values
			return nil
		})
	}
	if caller.IsAdmin() {
		g.Go(func() error {
			values, err := s.listValues(gCtx, "SELECT DISTINCT plant FROM accounts WHERE plant <> '' ORDER BY plant")
			if err != nil {
				return fmt.Errorf("plants: %w", err)
			}
			data.Plants = values
			return nil
		})
		g.Go(func() error {
			values, err := s.listValues(gCtx, "SELECT DISTINCT machine FROM accounts WHERE machine <> '' ORDER BY machine")
			if err != nil {
				return fmt.Errorf("machines: %w", err)
			}
			data.Machines = values
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &data, nil
}

func (s *Storage) listValues(ctx context.Context, stmt string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

// DeleteOrphanReferences removes lookup rows no live log references. A
// value still counts as referenced while a soft-deleted log carrying it was
// edited after the cutoff, so a restore within the retention window gets
// its autocomplete entry back.
func (s *Storage) DeleteOrphanReferences(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "storage.mysql.DeleteOrphanReferences"

	var total int64
	for id, table := range storage.ReferenceTables {
		column := referenceColumns[id]
		stmt := fmt.Sprintf(`
			DELETE r FROM %s r
			WHERE NOT EXISTS (
				SELECT 1 FROM extrusion_logs l
				WHERE l.%s = r.name AND (l.deleted = FALSE OR l.last_edited >= ?)
			)`, table, column)

		exec, err := s.db.ExecContext(ctx, stmt, cutoff)
		if err != nil {
			return total, fmt.Errorf("%s: %s: %w", op, table, err)
		}
		affected, err := exec.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("%s: %s: %w", op, table, err)
		}
		total += affected
	}

	return total, nil
}
