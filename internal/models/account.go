// Package models содержит доменные структуры платформы:
// компании, учётные записи, приглашения, курсы, записи на обучение,
// консультации и уведомления. Структуры используются в бизнес-логике
// и при работе с хранилищем.
package models

import "time"

// Роли учётных записей. Employee и CompanyAdmin привязаны к компании,
// остальные роли существуют вне компаний.
const (
	RoleSuperAdmin   = "superadmin"
	RoleCompanyAdmin = "company_admin"
	RoleEmployee     = "employee"
	RoleConsultant   = "consultant"
	RoleAuthor       = "author"
)

// Account представляет учётную запись пользователя платформы.
type Account struct {
	UUID         string    // Уникальный идентификатор учётной записи
	Email        string    // Электронная почта (уникальная)
	PasswordHash string    // Хэш пароля
	Role         string    // Роль учётной записи
	CompanyUUID  *string   // Компания, к которой привязана запись (nil для ролей вне компаний)
	CreatedAt    time.Time // Дата создания
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
// Самостоятельная регистрация доступна только консультантам и авторам курсов,
// остальные учётные записи создаются через приглашения.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=consultant author"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PasswordReset представляет токен сброса пароля.
// Токен одноразовый, время жизни ограничено, использование фиксируется
// отметкой UsedAt ровно один раз.
type PasswordReset struct {
	Token       string     // Уникальный токен сброса
	AccountUUID string     // Учётная запись, для которой выпущен токен
	ExpiresAt   time.Time  // Срок действия токена
	UsedAt      *time.Time // Момент использования (nil — токен ещё не использован)
}

// DummyPasswordResetRequest используется для запроса сброса пароля.
type DummyPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// DummyPasswordResetConfirm используется для подтверждения сброса пароля.
type DummyPasswordResetConfirm struct {
	Token    string `json:"token" validate:"required,uuid"`
	Password string `json:"password" validate:"required,min=8"`
}
