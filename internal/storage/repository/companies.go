package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// CreateCompany создает компанию вместе с её подпиской в одной транзакции
// и возвращает UUID компании. Подписка создаётся в статусе unpaid:
// активацию выполняет вебхук платёжного провайдера.
func (s *Storage) CreateCompany(ctx context.Context, company models.Company, plan string, seatLimit int) (string, error) {
	const op = "storage.CreateCompany"
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

	var companyUUID string
	query := `INSERT INTO companies (name, contact_email)
			  VALUES ($1, $2)
			  RETURNING uuid`
	if err = tx.QueryRowContext(ctx, query, company.Name, company.ContactEmail).Scan(&companyUUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query = `INSERT INTO subscriptions (company_uuid, plan, status, seat_limit)
			 VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, query, companyUUID, plan, models.SubscriptionUnpaid, seatLimit); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return companyUUID, nil
}

// GetCompany возвращает компанию по UUID.
func (s *Storage) GetCompany(ctx context.Context, companyUUID string) (*models.Company, error) {
	const op = "storage.GetCompany"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uuid, name, contact_email, created_at
			  FROM companies
			  WHERE uuid = $1`
	c := &models.Company{}
	row := s.DB.QueryRowContext(ctx, query, companyUUID)
	if err := row.Scan(&c.UUID, &c.Name, &c.ContactEmail, &c.CreatedAt); err != nil {
		return nil, mapNoRows(op, err)
	}
	return c, nil
}

// GetSubscription возвращает подписку компании.
func (s *Storage) GetSubscription(ctx context.Context, companyUUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, company_uuid, plan, status, seat_limit,
			      COALESCE(period_start, 'epoch'::timestamptz),
			      COALESCE(period_end, 'epoch'::timestamptz)
			  FROM subscriptions
			  WHERE company_uuid = $1`
	sub := &models.Subscription{}
	row := s.DB.QueryRowContext(ctx, query, companyUUID)
	if err := row.Scan(&sub.ID, &sub.CompanyUUID, &sub.Plan, &sub.Status,
		&sub.SeatLimit, &sub.PeriodStart, &sub.PeriodEnd); err != nil {
		return nil, mapNoRows(op, err)
	}
	return sub, nil
}

// UpdateSubscriptionStatus обновляет статус и границы периода подписки
// по событию платёжного провайдера.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, event models.Subscription) error {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1, period_start = $2, period_end = $3
			  WHERE company_uuid = $4`
	res, err := s.DB.ExecContext(ctx, query,
		event.Status, event.PeriodStart, event.PeriodEnd, event.CompanyUUID)
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
