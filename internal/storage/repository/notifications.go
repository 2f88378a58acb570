package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// CreateNotification сохраняет новое уведомление и возвращает его ID.
func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) (int, error) {
	const op = "storage.CreateNotification"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notifications (account_uuid, ntype, title, message)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query, n.AccountUUID, n.NType, n.Title, n.Message).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetNotification возвращает уведомление по ID.
func (s *Storage) GetNotification(ctx context.Context, id int) (*models.Notification, error) {
	const op = "storage.GetNotification"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, account_uuid, ntype, title, message, is_read, created_at
			  FROM notifications
			  WHERE id = $1`
	n := &models.Notification{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&n.ID, &n.AccountUUID, &n.NType, &n.Title, &n.Message,
		&n.IsRead, &n.CreatedAt); err != nil {
		return nil, mapNoRows(op, err)
	}
	return n, nil
}

// ListNotifications возвращает уведомления учётной записи.
func (s *Storage) ListNotifications(ctx context.Context, accountUUID string) ([]*models.Notification, error) {
	const op = "storage.ListNotifications"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, account_uuid, ntype, title, message, is_read, created_at
			  FROM notifications
			  WHERE account_uuid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, accountUUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.AccountUUID, &n.NType, &n.Title, &n.Message,
			&n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkNotificationRead отмечает уведомление прочитанным.
func (s *Storage) MarkNotificationRead(ctx context.Context, id int) error {
	const op = "storage.MarkNotificationRead"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notifications SET is_read = true WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, id)
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

// DeleteNotification удаляет уведомление.
func (s *Storage) DeleteNotification(ctx context.Context, id int) error {
	const op = "storage.DeleteNotification"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM notifications WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, id)
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
