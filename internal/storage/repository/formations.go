package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// CreateFormation вставляет новый курс и возвращает его ID.
func (s *Storage) CreateFormation(ctx context.Context, f models.Formation) (int, error) {
	const op = "storage.CreateFormation"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO formations (title, description, author_uuid, is_active)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		f.Title, f.Description, f.AuthorUUID, f.IsActive).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetFormation возвращает курс по ID.
func (s *Storage) GetFormation(ctx context.Context, id int) (*models.Formation, error) {
	const op = "storage.GetFormation"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, author_uuid, is_active
			  FROM formations
			  WHERE id = $1`
	f := &models.Formation{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&f.ID, &f.Title, &f.Description, &f.AuthorUUID, &f.IsActive); err != nil {
		return nil, mapNoRows(op, err)
	}
	return f, nil
}

// UpdateFormation обновляет название и описание курса.
func (s *Storage) UpdateFormation(ctx context.Context, f models.Formation) error {
	const op = "storage.UpdateFormation"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE formations
			  SET title = $1, description = $2
			  WHERE id = $3`
	res, err := s.DB.ExecContext(ctx, query, f.Title, f.Description, f.ID)
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

// SetFormationActive переключает доступность курса для назначения.
func (s *Storage) SetFormationActive(ctx context.Context, id int, active bool) error {
	const op = "storage.SetFormationActive"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE formations SET is_active = $1 WHERE id = $2`
	res, err := s.DB.ExecContext(ctx, query, active, id)
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

// AddSection вставляет новую секцию курса и возвращает её ID.
func (s *Storage) AddSection(ctx context.Context, sec models.Section) (int, error) {
	const op = "storage.AddSection"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO sections (formation_id, title, position)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query, sec.FormationID, sec.Title, sec.Position).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, errs.ErrConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// AddLesson вставляет новый урок секции и возвращает его ID.
func (s *Storage) AddLesson(ctx context.Context, l models.Lesson) (int, error) {
	const op = "storage.AddLesson"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO lessons (section_id, title, lesson_type, position, is_published)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		l.SectionID, l.Title, l.LessonType, l.Position, l.IsPublished).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, errs.ErrConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSectionFormation возвращает ID курса, которому принадлежит секция.
func (s *Storage) GetSectionFormation(ctx context.Context, sectionID int) (int, error) {
	const op = "storage.GetSectionFormation"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT formation_id FROM sections WHERE id = $1`
	var formationID int
	if err := s.DB.QueryRowContext(ctx, query, sectionID).Scan(&formationID); err != nil {
		return 0, mapNoRows(op, err)
	}
	return formationID, nil
}

// ListFormationsByAuthor возвращает курсы автора.
func (s *Storage) ListFormationsByAuthor(ctx context.Context, authorUUID string) ([]*models.Formation, error) {
	const op = "storage.ListFormationsByAuthor"
	return s.listFormations(ctx, op,
		`SELECT id, title, description, author_uuid, is_active
		 FROM formations
		 WHERE author_uuid = $1
		 ORDER BY id`, authorUUID)
}

// ListActiveFormations возвращает курсы, доступные для назначения.
func (s *Storage) ListActiveFormations(ctx context.Context) ([]*models.Formation, error) {
	const op = "storage.ListActiveFormations"
	return s.listFormations(ctx, op,
		`SELECT id, title, description, author_uuid, is_active
		 FROM formations
		 WHERE is_active = true
		 ORDER BY id`)
}

// ListAllFormations возвращает все курсы платформы.
func (s *Storage) ListAllFormations(ctx context.Context) ([]*models.Formation, error) {
	const op = "storage.ListAllFormations"
	return s.listFormations(ctx, op,
		`SELECT id, title, description, author_uuid, is_active
		 FROM formations
		 ORDER BY id`)
}

func (s *Storage) listFormations(ctx context.Context, op, query string, args ...any) ([]*models.Formation, error) {
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

	var result []*models.Formation
	for rows.Next() {
		var f models.Formation
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.AuthorUUID, &f.IsActive); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
