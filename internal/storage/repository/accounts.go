package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// CreateAccount сохраняет новую учётную запись и возвращает её UUID.
func (s *Storage) CreateAccount(ctx context.Context, account models.Account) (string, error) {
	const op = "storage.CreateAccount"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUUID string
	query := `INSERT INTO accounts (email, password_hash, role, company_uuid)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uuid;`
	if err := s.DB.QueryRowContext(ctx, query,
		account.Email, account.PasswordHash, account.Role, account.CompanyUUID).Scan(&newUUID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, errs.ErrConflict)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUUID, nil
}

// GetAccountByEmail возвращает учётную запись по почте.
func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.GetAccountByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uuid, email, password_hash, role, company_uuid, created_at
			  FROM accounts
			  WHERE email = $1`
	return s.scanAccount(s.DB.QueryRowContext(ctx, query, email), op)
}

// GetAccount возвращает учётную запись по UUID.
func (s *Storage) GetAccount(ctx context.Context, accountUUID string) (*models.Account, error) {
	const op = "storage.GetAccount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uuid, email, password_hash, role, company_uuid, created_at
			  FROM accounts
			  WHERE uuid = $1`
	return s.scanAccount(s.DB.QueryRowContext(ctx, query, accountUUID), op)
}

func (s *Storage) scanAccount(row *sql.Row, op string) (*models.Account, error) {
	a := &models.Account{}
	var companyUUID sql.NullString
	if err := row.Scan(&a.UUID, &a.Email, &a.PasswordHash, &a.Role,
		&companyUUID, &a.CreatedAt); err != nil {
		return nil, mapNoRows(op, err)
	}
	if companyUUID.Valid {
		a.CompanyUUID = &companyUUID.String
	}
	return a, nil
}

// CountCompanySeats возвращает количество занятых мест компании:
// учётные записи плюс живые (не принятые и не истёкшие) приглашения.
func (s *Storage) CountCompanySeats(ctx context.Context, companyUUID string) (int, error) {
	const op = "storage.CountCompanySeats"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      (SELECT COUNT(*) FROM accounts WHERE company_uuid = $1) +
			      (SELECT COUNT(*) FROM invitations
			       WHERE company_uuid = $1 AND accepted_at IS NULL AND expires_at > now())`
	var seats int
	if err := s.DB.QueryRowContext(ctx, query, companyUUID).Scan(&seats); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return seats, nil
}

// UpdateAccountPassword обновляет хэш пароля учётной записи.
func (s *Storage) UpdateAccountPassword(ctx context.Context, accountUUID, passwordHash string) error {
	const op = "storage.UpdateAccountPassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE accounts SET password_hash = $1 WHERE uuid = $2`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, accountUUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}
