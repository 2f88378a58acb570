package models

import "time"

// Типы уведомлений, создаваемых системными действиями.
const (
	NotificationInvitation = "invitation.issued"
	NotificationAssigned   = "formation.assigned"
	NotificationActivated  = "formation.activated"
	NotificationDecision   = "appointment.decision"
	NotificationResetToken = "password.reset"
)

// Notification представляет уведомление, адресованное одной учётной записи.
// Создаётся системными действиями, читается и скрывается только адресатом.
type Notification struct {
	ID          int       // Идентификатор уведомления
	AccountUUID string    // Адресат
	NType       string    // Тип уведомления
	Title       string    // Заголовок
	Message     string    // Текст уведомления
	IsRead      bool      // Прочитано ли уведомление
	CreatedAt   time.Time // Дата создания
}

// NotificationEvent — сообщение, публикуемое в очередь после фиксации
// первичного изменения. Воркер уведомлений создаёт по нему запись
// Notification и при необходимости отправляет письмо.
type NotificationEvent struct {
	AccountUUID string `json:"account_uuid"`
	Email       string `json:"email,omitempty"`
	NType       string `json:"ntype"`
	Title       string `json:"title"`
	Message     string `json:"message"`
}
