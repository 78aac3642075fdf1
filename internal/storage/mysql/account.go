package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"extrud-backend/internal/storage"
)

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*storage.Account, error) {
	const op = "storage.mysql.GetAccountByUsername"

	stmt := "SELECT id, username, password_hash, role, plant, machine FROM accounts WHERE username = ?"

	var acc storage.Account
	err := s.db.QueryRowContext(ctx, stmt, username).Scan(
		&acc.ID, &acc.Username, &acc.PasswordHash, &acc.Role, &acc.Plant, &acc.Machine,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: username=%q: %w", op, username, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &acc, nil
}

func (s *Storage) CreateSession(ctx context.Context, sess storage.Session) error {
	const op = "storage.mysql.CreateSession"

	stmt := "INSERT INTO sessions (id, account_id, created_at, expires_at) VALUES (?, ?, ?, ?)"
	if _, err := s.db.ExecContext(ctx, stmt, sess.ID, sess.AccountID, sess.CreatedAt, sess.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// GetSessionAccount resolves a session id into its account. Expired
// sessions count as absent.
func (s *Storage) GetSessionAccount(ctx context.Context, sessionID string) (*storage.Account, error) {
	const op = "storage.mysql.GetSessionAccount"

	stmt := `
		SELECT a.id, a.username, a.password_hash, a.role, a.plant, a.machine
		FROM sessions s
		JOIN accounts a ON a.id = s.account_id
		WHERE s.id = ? AND s.expires_at > ?`

	var acc storage.Account
	err := s.db.QueryRowContext(ctx, stmt, sessionID, time.Now()).Scan(
		&acc.ID, &acc.Username, &acc.PasswordHash, &acc.Role, &acc.Plant, &acc.Machine,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &acc, nil
}

func (s *Storage) DeleteSession(ctx context.Context, sessionID string) error {
	const op = "storage.mysql.DeleteSession"

	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	const op = "storage.mysql.DeleteExpiredSessions"

	exec, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", time.Now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	affected, err := exec.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return affected, nil
}
