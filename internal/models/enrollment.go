package models

import "time"

// Enrollment представляет запись сотрудника на курс.
// Прогресс монотонно неубывающий в диапазоне [0, 100], отметка о завершении
// выставляется ровно один раз при достижении 100.
type Enrollment struct {
	ID          int        // Идентификатор записи
	AccountUUID string     // Учётная запись сотрудника
	FormationID int        // Назначенный курс
	Progress    int        // Прогресс прохождения, проценты
	CompletedAt *time.Time // Момент завершения (nil — курс не завершён)
	AssignedBy  string     // Кто назначил курс
}

// DummyProgress используется для приёма обновления прогресса из JSON-запроса.
type DummyProgress struct {
	Progress int `json:"progress" validate:"required,gte=0,lte=100"`
}
