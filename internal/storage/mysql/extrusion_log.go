package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"extrud-backend/internal/storage"
)

// Column list shared by every log read. The value columns follow the order
// of storage.LogValues.Fields.
const logColumns = `l.id, l.created_by, a.plant, a.machine, l.deleted, l.last_edited,
	l.log_date, l.die_code, l.sub_number, l.billet_type, l.billet_length, l.billet_quantity,
	l.ingot_ratio, l.lot_number_code, l.ram_speed, l.die_temp, l.billet_temp, l.container_temp,
	l.output_temp, l.pressure, l.puller_mode, l.puller_speed, l.puller_force, l.extrusion_cycle,
	l.extrusion_length, l.order_length, l.segments, l.cooling_method, l.cooling_mode,
	l.start_butt, l.before_sewing, l.after_sewing, l.end_butt, l.start_time, l.end_time,
	l.production_quantity, l.result, l.remark, l.ng_quantity, l.butt_length,
	l.customer, l.item, l.code`

func (s *Storage) CreateLog(ctx context.Context, caller storage.Account, v storage.LogValues) (int64, error) {
	const op = "storage.mysql.CreateLog"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if err := syncReferences(ctx, tx, v); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	cols := []string{"created_by", "deleted", "last_edited"}
	args := []any{caller.ID, false, time.Now()}
	for _, f := range v.Fields() {
		if f.Value == nil {
			continue
		}
		cols = append(cols, f.Column)
		args = append(args, f.Value)
	}

	stmt := fmt.Sprintf("INSERT INTO extrusion_logs (%s) VALUES (%s)",
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)

	exec, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: insert log: %w", op, err)
	}

	id, err := exec.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetLog(ctx context.Context, id int64) (*storage.ExtrusionLog, error) {
	const op = "storage.mysql.GetLog"

	stmt := "SELECT " + logColumns + `
		FROM extrusion_logs l
		JOIN accounts a ON a.id = l.created_by
		WHERE l.id = ?`

	rec, err := scanLog(s.db.QueryRowContext(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: id=%d: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

// UpdateLog applies the non-nil fields of v to one record. Only the
// original creator or a super admin may write; last_edited is bumped on
// every successful write.
func (s *Storage) UpdateLog(ctx context.Context, id int64, caller storage.Account, v storage.LogValues) error {
	const op = "storage.mysql.UpdateLog"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if err := checkOwner(ctx, tx, id, caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := syncReferences(ctx, tx, v); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	set := []string{"last_edited = ?"}
	args := []any{time.Now()}
	for _, f := range v.Fields() {
		if f.Value == nil {
			continue
		}
		set = append(set, f.Column+" = ?")
		args = append(args, f.Value)
	}
	args = append(args, id)

	stmt := fmt.Sprintf("UPDATE extrusion_logs SET %s WHERE id = ?", strings.Join(set, ", "))
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("%s: update log id=%d: %w", op, id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

func (s *Storage) SoftDeleteLog(ctx context.Context, id int64, caller storage.Account) error {
	const op = "storage.mysql.SoftDeleteLog"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if err := checkOwner(ctx, tx, id, caller); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	stmt := "UPDATE extrusion_logs SET deleted = TRUE, last_edited = ? WHERE id = ?"
	if _, err := tx.ExecContext(ctx, stmt, time.Now(), id); err != nil {
		return fmt.Errorf("%s: soft delete id=%d: %w", op, id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// RestoreLog clears the deleted flag. Super admin only.
func (s *Storage) RestoreLog(ctx context.Context, id int64, caller storage.Account) error {
	const op = "storage.mysql.RestoreLog"

	if !caller.IsSuperAdmin() {
		return fmt.Errorf("%s: %w", op, storage.ErrForbidden)
	}

	stmt := "UPDATE extrusion_logs SET deleted = FALSE, last_edited = ? WHERE id = ?"
	exec, err := s.db.ExecContext(ctx, stmt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%s: restore id=%d: %w", op, id, err)
	}

	affected, err := exec.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: id=%d: %w", op, id, storage.ErrNotFound)
	}

	return nil
}

// HardDeleteLogsOlderThan permanently removes soft-deleted rows whose last
// edit is older than the cutoff. Called by the cleanup job only.
func (s *Storage) HardDeleteLogsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "storage.mysql.HardDeleteLogsOlderThan"

	stmt := "DELETE FROM extrusion_logs WHERE deleted = TRUE AND last_edited < ?"
	exec, err := s.db.ExecContext(ctx, stmt, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	affected, err := exec.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return affected, nil
}

// checkOwner locks the target row and verifies the creator-or-super-admin
// rule inside the caller's transaction.
func checkOwner(ctx context.Context, tx *sql.Tx, id int64, caller storage.Account) error {
	var createdBy int64
	err := tx.QueryRowContext(ctx, "SELECT created_by FROM extrusion_logs WHERE id = ? FOR UPDATE", id).Scan(&createdBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("id=%d: %w", id, storage.ErrNotFound)
		}
		return fmt.Errorf("check owner: %w", err)
	}

	if createdBy != caller.ID && !caller.IsSuperAdmin() {
		return storage.ErrForbidden
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(sc rowScanner) (*storage.ExtrusionLog, error) {
	var (
		l       storage.ExtrusionLog
		logDate sql.NullTime

		dieCode, billetType, lotNumberCode, pullerMode, coolingMethod, coolingMode,
		startTime, endTime, result, remark, customer, item, code sql.NullString

		subNumber, billetQuantity, extrusionCycle, segments,
		productionQuantity, ngQuantity sql.NullInt64

		billetLength, ingotRatio, ramSpeed, dieTemp, billetTemp, containerTemp,
		outputTemp, pressure, pullerSpeed, pullerForce, extrusionLength, orderLength,
		startButt, beforeSewing, afterSewing, endButt, buttLength sql.NullFloat64
	)

	err := sc.Scan(
		&l.ID, &l.CreatedBy, &l.Plant, &l.Machine, &l.Deleted, &l.LastEdited,
		&logDate, &dieCode, &subNumber, &billetType, &billetLength, &billetQuantity,
		&ingotRatio, &lotNumberCode, &ramSpeed, &dieTemp, &billetTemp, &containerTemp,
		&outputTemp, &pressure, &pullerMode, &pullerSpeed, &pullerForce, &extrusionCycle,
		&extrusionLength, &orderLength, &segments, &coolingMethod, &coolingMode,
		&startButt, &beforeSewing, &afterSewing, &endButt, &startTime, &endTime,
		&productionQuantity, &result, &remark, &ngQuantity, &buttLength,
		&customer, &item, &code,
	)
	if err != nil {
		return nil, err
	}

	if logDate.Valid {
		d := logDate.Time.Format("2006-01-02")
		l.Date = &d
	}

	l.DieCode = nullStr(dieCode)
	l.BilletType = nullStr(billetType)
	l.LotNumberCode = nullStr(lotNumberCode)
	l.PullerMode = nullStr(pullerMode)
	l.CoolingMethod = nullStr(coolingMethod)
	l.CoolingMode = nullStr(coolingMode)
	l.StartTime = nullStr(startTime)
	l.EndTime = nullStr(endTime)
	l.Result = nullStr(result)
	l.Remark = nullStr(remark)
	l.Customer = nullStr(customer)
	l.Item = nullStr(item)
	l.Code = nullStr(code)

	l.SubNumber = nullInt(subNumber)
	l.BilletQuantity = nullInt(billetQuantity)
	l.ExtrusionCycle = nullInt(extrusionCycle)
	l.Segments = nullInt(segments)
	l.ProductionQuantity = nullInt(productionQuantity)
	l.NGQuantity = nullInt(ngQuantity)

	l.BilletLength = nullFloat(billetLength)
	l.IngotRatio = nullFloat(ingotRatio)
	l.RamSpeed = nullFloat(ramSpeed)
	l.DieTemp = nullFloat(dieTemp)
	l.BilletTemp = nullFloat(billetTemp)
	l.ContainerTemp = nullFloat(containerTemp)
	l.OutputTemp = nullFloat(outputTemp)
	l.Pressure = nullFloat(pressure)
	l.PullerSpeed = nullFloat(pullerSpeed)
	l.PullerForce = nullFloat(pullerForce)
	l.ExtrusionLength = nullFloat(extrusionLength)
	l.OrderLength = nullFloat(orderLength)
	l.StartButt = nullFloat(startButt)
	l.BeforeSewing = nullFloat(beforeSewing)
	l.AfterSewing = nullFloat(afterSewing)
	l.EndButt = nullFloat(endButt)
	l.ButtLength = nullFloat(buttLength)

	if l.StartTime != nil {
		l.Shift = storage.ShiftOf(*l.StartTime)
	}

	return &l, nil
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}
