package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// CreateInvitation сохраняет новое приглашение и возвращает его токен.
// Проверка лимита мест и вставка выполняются в одной транзакции под
// блокировкой строки подписки: одновременные выпуски приглашений одной
// компании сериализуются, лишние получают conflict. Инвариант «одно живое
// приглашение на пару (email, компания)» обеспечивает частичный уникальный
// индекс: нарушение также возвращается как conflict.
func (s *Storage) CreateInvitation(ctx context.Context, inv models.Invitation) (string, error) {
	const op = "storage.CreateInvitation"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var seatLimit int
	query := `SELECT seat_limit FROM subscriptions WHERE company_uuid = $1 FOR UPDATE`
	if err = tx.QueryRowContext(ctx, query, inv.CompanyUUID).Scan(&seatLimit); err != nil {
		return "", mapNoRows(op, err)
	}

	var seats int
	query = `SELECT
			     (SELECT COUNT(*) FROM accounts WHERE company_uuid = $1) +
			     (SELECT COUNT(*) FROM invitations
			      WHERE company_uuid = $1 AND accepted_at IS NULL AND expires_at > now())`
	if err = tx.QueryRowContext(ctx, query, inv.CompanyUUID).Scan(&seats); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if seats >= seatLimit {
		return "", fmt.Errorf("%s: seat limit %d reached: %w", op, seatLimit, errs.ErrConflict)
	}

	var token string
	query = `INSERT INTO invitations (email, role, company_uuid, issued_by, expires_at)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING token`
	if err = tx.QueryRowContext(ctx, query,
		inv.Email, inv.Role, inv.CompanyUUID, inv.IssuedBy, inv.ExpiresAt).Scan(&token); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, errs.ErrConflict)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// GetInvitation возвращает приглашение по токену.
func (s *Storage) GetInvitation(ctx context.Context, token string) (*models.Invitation, error) {
	const op = "storage.GetInvitation"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT token, email, role, company_uuid, issued_by, expires_at, accepted_at, account_uuid
			  FROM invitations
			  WHERE token = $1`
	inv := &models.Invitation{}
	var acceptedAt sql.NullTime
	var accountUUID sql.NullString
	row := s.DB.QueryRowContext(ctx, query, token)
	if err := row.Scan(&inv.Token, &inv.Email, &inv.Role, &inv.CompanyUUID,
		&inv.IssuedBy, &inv.ExpiresAt, &acceptedAt, &accountUUID); err != nil {
		return nil, mapNoRows(op, err)
	}
	if acceptedAt.Valid {
		inv.AcceptedAt = &acceptedAt.Time
	}
	if accountUUID.Valid {
		inv.AccountUUID = &accountUUID.String
	}
	return inv, nil
}

// ListInvitations возвращает приглашения компании.
func (s *Storage) ListInvitations(ctx context.Context, companyUUID string) ([]*models.Invitation, error) {
	const op = "storage.ListInvitations"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT token, email, role, company_uuid, issued_by, expires_at, accepted_at, account_uuid
			  FROM invitations
			  WHERE company_uuid = $1
			  ORDER BY expires_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, companyUUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Invitation
	for rows.Next() {
		var inv models.Invitation
		var acceptedAt sql.NullTime
		var accountUUID sql.NullString
		if err := rows.Scan(&inv.Token, &inv.Email, &inv.Role, &inv.CompanyUUID,
			&inv.IssuedBy, &inv.ExpiresAt, &acceptedAt, &accountUUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if acceptedAt.Valid {
			inv.AcceptedAt = &acceptedAt.Time
		}
		if accountUUID.Valid {
			inv.AccountUUID = &accountUUID.String
		}
		result = append(result, &inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AcceptInvitation атомарно принимает приглашение: условное обновление
// переводит токен в состояние accepted, только если он ещё не принят
// и не истёк, создание учётной записи выполняется в той же транзакции.
// Из двух одновременных принятий одного токена ровно одно завершается
// успехом, второе получает conflict.
func (s *Storage) AcceptInvitation(ctx context.Context, token, passwordHash string) (string, error) {
	const op = "storage.AcceptInvitation"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var email, role, companyUUID string
	query := `UPDATE invitations
			  SET accepted_at = now()
			  WHERE token = $1 AND accepted_at IS NULL AND expires_at > now()
			  RETURNING email, role, company_uuid`
	err = tx.QueryRowContext(ctx, query, token).Scan(&email, &role, &companyUUID)
	if errors.Is(err, sql.ErrNoRows) {
		// Токен либо не существует, либо уже принят, либо истёк.
		// Различаем не найден/устарел, не раскрывая лишнего.
		var expiresAt time.Time
		var acceptedAt sql.NullTime
		checkErr := tx.QueryRowContext(ctx,
			`SELECT expires_at, accepted_at FROM invitations WHERE token = $1`,
			token).Scan(&expiresAt, &acceptedAt)
		if checkErr != nil {
			return "", mapNoRows(op, checkErr)
		}
		if acceptedAt.Valid {
			return "", fmt.Errorf("%s: %w", op, errs.ErrConflict)
		}
		return "", fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var accountUUID string
	query = `INSERT INTO accounts (email, password_hash, role, company_uuid)
			 VALUES ($1, $2, $3, $4)
			 RETURNING uuid`
	if err = tx.QueryRowContext(ctx, query, email, passwordHash, role, companyUUID).Scan(&accountUUID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, errs.ErrConflict)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query = `UPDATE invitations SET account_uuid = $1 WHERE token = $2`
	if _, err = tx.ExecContext(ctx, query, accountUUID, token); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return accountUUID, nil
}
