package models

import "time"

// Статусы подписки компании. Переходы: unpaid -> active -> (canceled | past_due).
const (
	SubscriptionUnpaid   = "unpaid"
	SubscriptionActive   = "active"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// Company представляет компанию-клиента, единицу биллинга и членства сотрудников.
type Company struct {
	UUID         string    // Уникальный идентификатор компании
	Name         string    // Название компании
	ContactEmail string    // Контактная почта
	CreatedAt    time.Time // Дата создания
}

// Subscription представляет подписку компании на тарифный план.
// У компании может быть не более одной подписки, статус управляется
// событиями платёжного провайдера.
type Subscription struct {
	ID          int       // Идентификатор записи
	CompanyUUID string    // Компания-владелец подписки
	Plan        string    // Название тарифного плана
	Status      string    // Текущий статус подписки
	SeatLimit   int       // Лимит мест (учётных записей и живых приглашений)
	PeriodStart time.Time // Начало оплаченного периода
	PeriodEnd   time.Time // Конец оплаченного периода
}

// DummyCompany используется для приёма данных новой компании из JSON-запроса.
type DummyCompany struct {
	Name         string `json:"name" validate:"required"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
	Plan         string `json:"plan" validate:"required"`
	SeatLimit    int    `json:"seat_limit" validate:"required,gt=0"`
}

// DummySubscriptionEvent используется для приёма вебхука платёжного провайдера.
// Провайдер присылает только последний известный статус подписки.
type DummySubscriptionEvent struct {
	CompanyUUID string `json:"company_uuid" validate:"required,uuid"`
	Status      string `json:"status" validate:"required,oneof=unpaid active past_due canceled"`
	PeriodStart string `json:"period_start" validate:"required,datetime=02-01-2006"`
	PeriodEnd   string `json:"period_end" validate:"required,datetime=02-01-2006"`
}
