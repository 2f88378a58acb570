package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/training-platform/internal/errs"
)

// CreatePasswordReset выпускает токен сброса пароля и возвращает его.
func (s *Storage) CreatePasswordReset(ctx context.Context, accountUUID string, expiresAt time.Time) (string, error) {
	const op = "storage.CreatePasswordReset"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var token string
	query := `INSERT INTO password_resets (account_uuid, expires_at)
			  VALUES ($1, $2)
			  RETURNING token`
	if err := s.DB.QueryRowContext(ctx, query, accountUUID, expiresAt).Scan(&token); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ConsumePasswordReset атомарно гасит токен сброса и меняет пароль
// учётной записи в одной транзакции. Повторное использование токена
// возвращает conflict, неизвестный или истёкший токен — not found.
func (s *Storage) ConsumePasswordReset(ctx context.Context, token, passwordHash string) error {
	const op = "storage.ConsumePasswordReset"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var accountUUID string
	query := `UPDATE password_resets
			  SET used_at = now()
			  WHERE token = $1 AND used_at IS NULL AND expires_at > now()
			  RETURNING account_uuid`
	err = tx.QueryRowContext(ctx, query, token).Scan(&accountUUID)
	if errors.Is(err, sql.ErrNoRows) {
		var usedAt sql.NullTime
		checkErr := tx.QueryRowContext(ctx,
			`SELECT used_at FROM password_resets WHERE token = $1`, token).Scan(&usedAt)
		if checkErr != nil {
			return mapNoRows(op, checkErr)
		}
		if usedAt.Valid {
			return fmt.Errorf("%s: %w", op, errs.ErrConflict)
		}
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query = `UPDATE accounts SET password_hash = $1 WHERE uuid = $2`
	if _, err = tx.ExecContext(ctx, query, passwordHash, accountUUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
