// Package authz реализует централизованный вычислитель политики доступа.
// Вместо разрозненных проверок в каждом обработчике решение о доступе
// принимает одна чистая функция Decide(actor, action, resource).
package authz

import "github.com/magabrotheeeer/training-platform/internal/models"

// Action — фиксированный глагол, привязанный к типу ресурса.
type Action string

// Каталог действий платформы.
const (
	ActionCompanyCreate       Action = "company.create"
	ActionCompanyRead         Action = "company.read"
	ActionInvitationCreate    Action = "invitation.create"
	ActionInvitationList      Action = "invitation.list"
	ActionInvitationAccept    Action = "invitation.accept"
	ActionFormationCreate     Action = "formation.create"
	ActionFormationUpdate     Action = "formation.update"
	ActionFormationToggle     Action = "formation.toggle_active"
	ActionFormationAssign     Action = "formation.assign"
	ActionEnrollmentList      Action = "enrollment.list"
	ActionProgressUpdate      Action = "enrollment.update_progress"
	ActionAppointmentCreate   Action = "appointment.create"
	ActionAppointmentApprove  Action = "appointment.approve"
	ActionAppointmentReject   Action = "appointment.reject"
	ActionAppointmentComplete Action = "appointment.complete"
	ActionAppointmentFeedback Action = "appointment.feedback"
	ActionNotificationRead    Action = "notification.read"
	ActionNotificationDismiss Action = "notification.dismiss"
)

// clause описывает один допустимый вариант выполнения действия.
// Пустое поле Role означает, что вариант открыт для любой роли.
type clause struct {
	Role         string // Вариант доступен только этой роли
	TenantScoped bool   // Требуется совпадение компании актора и ресурса
	OwnerOnly    bool   // Требуется владение ресурсом
}

// rule описывает ограничения одного действия. Clauses — альтернативные
// варианты допуска, применяется первый вариант, подходящий по роли актора.
type rule struct {
	Clauses       []clause
	OwnerReserved bool // Действие закреплено за владельцем, недоступно даже суперадмину
	Billing       bool // Требуется активная подписка компании ресурса
}

// rules — табличное описание политики. Порядок проверок задаётся
// в Decide, таблица содержит только ограничения.
var rules = map[Action]rule{
	ActionCompanyCreate: {Clauses: []clause{{Role: models.RoleSuperAdmin}}},
	ActionCompanyRead:   {Clauses: []clause{{Role: models.RoleCompanyAdmin, TenantScoped: true}}},
	ActionInvitationCreate: {
		Clauses: []clause{{Role: models.RoleCompanyAdmin, TenantScoped: true}},
		Billing: true,
	},
	ActionInvitationList: {Clauses: []clause{{Role: models.RoleCompanyAdmin, TenantScoped: true}}},
	// Принятие приглашения выполняется до появления учётной записи,
	// решение зависит только от состояния самого приглашения.
	ActionInvitationAccept: {Clauses: []clause{{}}},
	ActionFormationCreate:  {Clauses: []clause{{Role: models.RoleAuthor}}},
	ActionFormationUpdate: {
		Clauses:       []clause{{Role: models.RoleAuthor, OwnerOnly: true}},
		OwnerReserved: true,
	},
	ActionFormationToggle: {Clauses: []clause{{Role: models.RoleSuperAdmin}}},
	ActionFormationAssign: {
		Clauses: []clause{{Role: models.RoleCompanyAdmin, TenantScoped: true}},
		Billing: true,
	},
	ActionEnrollmentList: {Clauses: []clause{{Role: models.RoleEmployee, OwnerOnly: true}}},
	ActionProgressUpdate: {
		Clauses:       []clause{{Role: models.RoleEmployee, OwnerOnly: true}},
		OwnerReserved: true,
	},
	ActionAppointmentCreate: {Clauses: []clause{{Role: models.RoleEmployee, TenantScoped: true}}},
	ActionAppointmentApprove: {
		Clauses: []clause{
			{Role: models.RoleConsultant, OwnerOnly: true},
			{Role: models.RoleCompanyAdmin, TenantScoped: true},
		},
	},
	ActionAppointmentReject: {
		Clauses: []clause{
			{Role: models.RoleConsultant, OwnerOnly: true},
			{Role: models.RoleCompanyAdmin, TenantScoped: true},
		},
	},
	ActionAppointmentComplete: {
		Clauses:       []clause{{Role: models.RoleConsultant, OwnerOnly: true}},
		OwnerReserved: true,
	},
	ActionAppointmentFeedback: {
		Clauses:       []clause{{Role: models.RoleEmployee, OwnerOnly: true}},
		OwnerReserved: true,
	},
	ActionNotificationRead: {
		Clauses:       []clause{{OwnerOnly: true}},
		OwnerReserved: true,
	},
	ActionNotificationDismiss: {
		Clauses:       []clause{{OwnerOnly: true}},
		OwnerReserved: true,
	},
}
