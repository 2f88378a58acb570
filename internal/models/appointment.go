package models

import "time"

// Статусы консультации. Переходы: pending -> (confirmed | rejected),
// confirmed -> completed. Остальные переходы запрещены.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentRejected  = "rejected"
	AppointmentCompleted = "completed"
)

// Appointment представляет консультацию сотрудника с внешним консультантом,
// привязанную к компании сотрудника.
type Appointment struct {
	ID             int       // Идентификатор консультации
	EmployeeUUID   string    // Сотрудник, записавшийся на консультацию
	ConsultantUUID string    // Консультант
	CompanyUUID    string    // Компания сотрудника
	StartsAt       time.Time // Время начала консультации
	Topic          string    // Тема консультации
	Status         string    // Текущий статус
	CreatedAt      time.Time // Дата создания записи
}

// Feedback представляет отзыв сотрудника о завершённой консультации.
// На одну консультацию допускается не более одного отзыва.
type Feedback struct {
	ID            int  // Идентификатор отзыва
	AppointmentID int  // Консультация, к которой относится отзыв
	Rating        int  // Оценка от 1 до 5
	Satisfied     bool // Удовлетворён ли сотрудник
	Recommend     bool // Готов ли рекомендовать консультанта
}

// DummyAppointment используется для приёма данных новой консультации из JSON-запроса.
type DummyAppointment struct {
	ConsultantUUID string `json:"consultant_uuid" validate:"required,uuid"`
	StartsAt       string `json:"starts_at" validate:"required,datetime=02-01-2006 15:04"`
	Topic          string `json:"topic" validate:"required"`
}

// DummyFeedback используется для приёма отзыва о консультации.
type DummyFeedback struct {
	Rating    int  `json:"rating" validate:"required,gte=1,lte=5"`
	Satisfied bool `json:"satisfied"`
	Recommend bool `json:"recommend"`
}
