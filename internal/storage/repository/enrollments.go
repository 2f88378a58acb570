package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// CreateEnrollment записывает сотрудника на курс и возвращает ID записи.
// Повторное назначение того же курса возвращает conflict.
func (s *Storage) CreateEnrollment(ctx context.Context, e models.Enrollment) (int, error) {
	const op = "storage.CreateEnrollment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO enrollments (account_uuid, formation_id, assigned_by)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query, e.AccountUUID, e.FormationID, e.AssignedBy).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, errs.ErrConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetEnrollment возвращает запись на курс по ID.
func (s *Storage) GetEnrollment(ctx context.Context, id int) (*models.Enrollment, error) {
	const op = "storage.GetEnrollment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, account_uuid, formation_id, progress, completed_at, assigned_by
			  FROM enrollments
			  WHERE id = $1`
	e := &models.Enrollment{}
	var completedAt sql.NullTime
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&e.ID, &e.AccountUUID, &e.FormationID, &e.Progress,
		&completedAt, &e.AssignedBy); err != nil {
		return nil, mapNoRows(op, err)
	}
	if completedAt.Valid {
		e.CompletedAt = &completedAt.Time
	}
	return e, nil
}

// ListEnrollments возвращает записи на курсы одной учётной записи.
func (s *Storage) ListEnrollments(ctx context.Context, accountUUID string) ([]*models.Enrollment, error) {
	const op = "storage.ListEnrollments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, account_uuid, formation_id, progress, completed_at, assigned_by
			  FROM enrollments
			  WHERE account_uuid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, accountUUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		var completedAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.AccountUUID, &e.FormationID, &e.Progress,
			&completedAt, &e.AssignedBy); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if completedAt.Valid {
			e.CompletedAt = &completedAt.Time
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateProgress выполняет условное обновление прогресса: значение может
// только расти, отметка о завершении выставляется один раз при достижении
// 100 и больше не меняется. Попытка понизить прогресс не изменяет строку
// и возвращает conflict.
func (s *Storage) UpdateProgress(ctx context.Context, id, progress int) error {
	const op = "storage.UpdateProgress"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE enrollments
			  SET progress = $2,
			      completed_at = CASE
			          WHEN $2 = 100 AND completed_at IS NULL THEN now()
			          ELSE completed_at
			      END
			  WHERE id = $1 AND progress <= $2`
	res, err := s.DB.ExecContext(ctx, query, id, progress)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		// Строка либо отсутствует, либо прогресс попытались откатить назад.
		var exists bool
		if checkErr := s.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM enrollments WHERE id = $1)`, id).Scan(&exists); checkErr != nil {
			return fmt.Errorf("%s: %w", op, checkErr)
		}
		if !exists {
			return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, errs.ErrConflict)
	}
	return nil
}
