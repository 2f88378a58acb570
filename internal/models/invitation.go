package models

import "time"

// Invitation представляет приглашение в компанию: одноразовый токен
// с ограниченным сроком действия, дающий право создать учётную запись
// с заданной ролью в заданной компании.
//
// Состояние ISSUED -> ACCEPTED фиксируется отметкой AcceptedAt,
// состояние EXPIRED вычисляется по ExpiresAt и отдельно не хранится.
type Invitation struct {
	Token       string     // Уникальный токен приглашения
	Email       string     // Почта приглашаемого
	Role        string     // Роль будущей учётной записи
	CompanyUUID string     // Компания, в которую приглашают
	IssuedBy    string     // Учётная запись, выпустившая приглашение
	ExpiresAt   time.Time  // Срок действия приглашения
	AcceptedAt  *time.Time // Момент принятия (nil — ещё не принято)
	AccountUUID *string    // Созданная при принятии учётная запись
}

// Status возвращает производное состояние приглашения на момент now.
func (i *Invitation) Status(now time.Time) string {
	switch {
	case i.AcceptedAt != nil:
		return "accepted"
	case now.After(i.ExpiresAt):
		return "expired"
	default:
		return "issued"
	}
}

// DummyInvitation используется для приёма данных нового приглашения из JSON-запроса.
type DummyInvitation struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=employee company_admin"`
}

// DummyInvitationAccept используется для принятия приглашения:
// токен и учётные данные новой записи.
type DummyInvitationAccept struct {
	Token    string `json:"token" validate:"required,uuid"`
	Password string `json:"password" validate:"required,min=8"`
}
