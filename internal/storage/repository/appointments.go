package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// CreateAppointment вставляет новую консультацию и возвращает её ID.
func (s *Storage) CreateAppointment(ctx context.Context, a models.Appointment) (int, error) {
	const op = "storage.CreateAppointment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO appointments (employee_uuid, consultant_uuid, company_uuid, starts_at, topic, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		a.EmployeeUUID, a.ConsultantUUID, a.CompanyUUID, a.StartsAt, a.Topic,
		models.AppointmentPending).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetAppointment возвращает консультацию по ID.
func (s *Storage) GetAppointment(ctx context.Context, id int) (*models.Appointment, error) {
	const op = "storage.GetAppointment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, employee_uuid, consultant_uuid, company_uuid, starts_at, topic, status, created_at
			  FROM appointments
			  WHERE id = $1`
	a := &models.Appointment{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&a.ID, &a.EmployeeUUID, &a.ConsultantUUID, &a.CompanyUUID,
		&a.StartsAt, &a.Topic, &a.Status, &a.CreatedAt); err != nil {
		return nil, mapNoRows(op, err)
	}
	return a, nil
}

// TransitionAppointment выполняет условный переход статуса консультации.
// Переход выполняется, только если текущий статус совпадает с from:
// одновременные решения по одной консультации дают ровно один успех,
// остальные получают conflict.
func (s *Storage) TransitionAppointment(ctx context.Context, id int, from, to string) error {
	const op = "storage.TransitionAppointment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE appointments
			  SET status = $3
			  WHERE id = $1 AND status = $2`
	res, err := s.DB.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		var exists bool
		if checkErr := s.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)`, id).Scan(&exists); checkErr != nil {
			return fmt.Errorf("%s: %w", op, checkErr)
		}
		if !exists {
			return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, errs.ErrConflict)
	}
	return nil
}

// ListAppointmentsByAccount возвращает консультации, где учётная запись
// выступает сотрудником или консультантом.
func (s *Storage) ListAppointmentsByAccount(ctx context.Context, accountUUID string) ([]*models.Appointment, error) {
	const op = "storage.ListAppointmentsByAccount"
	return s.listAppointments(ctx, op,
		`SELECT id, employee_uuid, consultant_uuid, company_uuid, starts_at, topic, status, created_at
		 FROM appointments
		 WHERE employee_uuid = $1 OR consultant_uuid = $1
		 ORDER BY starts_at`, accountUUID)
}

// ListAppointmentsByCompany возвращает консультации компании.
func (s *Storage) ListAppointmentsByCompany(ctx context.Context, companyUUID string) ([]*models.Appointment, error) {
	const op = "storage.ListAppointmentsByCompany"
	return s.listAppointments(ctx, op,
		`SELECT id, employee_uuid, consultant_uuid, company_uuid, starts_at, topic, status, created_at
		 FROM appointments
		 WHERE company_uuid = $1
		 ORDER BY starts_at`, companyUUID)
}

func (s *Storage) listAppointments(ctx context.Context, op, query string, args ...any) ([]*models.Appointment, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Appointment
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.EmployeeUUID, &a.ConsultantUUID, &a.CompanyUUID,
			&a.StartsAt, &a.Topic, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateFeedback сохраняет отзыв о завершённой консультации.
// Второй отзыв на ту же консультацию возвращает conflict.
func (s *Storage) CreateFeedback(ctx context.Context, f models.Feedback) (int, error) {
	const op = "storage.CreateFeedback"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO feedbacks (appointment_id, rating, satisfied, recommend)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query, f.AppointmentID, f.Rating, f.Satisfied, f.Recommend).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, errs.ErrConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}
