package authz

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

func TestDecide(t *testing.T) {
	adminA := Actor{UUID: "admin-a", Role: models.RoleCompanyAdmin, CompanyUUID: "company-a"}
	employeeA := Actor{UUID: "emp-a", Role: models.RoleEmployee, CompanyUUID: "company-a"}
	consultant := Actor{UUID: "cons-1", Role: models.RoleConsultant}
	author := Actor{UUID: "auth-1", Role: models.RoleAuthor}
	superadmin := Actor{UUID: "root", Role: models.RoleSuperAdmin}

	tests := []struct {
		name       string
		actor      Actor
		action     Action
		res        Resource
		wantAllow  bool
		wantReason Reason
	}{
		{
			name:       "анонимный актор получает отказ unauthenticated",
			actor:      Actor{},
			action:     ActionInvitationCreate,
			res:        Resource{Kind: "company", CompanyUUID: "company-a", Entitled: true},
			wantAllow:  false,
			wantReason: ReasonUnauthenticated,
		},
		{
			name:      "админ приглашает в свою компанию с активной подпиской",
			actor:     adminA,
			action:    ActionInvitationCreate,
			res:       Resource{Kind: "company", CompanyUUID: "company-a", Entitled: true},
			wantAllow: true,
		},
		{
			name:       "приглашение без активной подписки отклоняется до проверки роли",
			actor:      adminA,
			action:     ActionInvitationCreate,
			res:        Resource{Kind: "company", CompanyUUID: "company-a", Entitled: false},
			wantAllow:  false,
			wantReason: ReasonNotEntitled,
		},
		{
			name:       "тенантное действие над чужой компанией — cross-tenant",
			actor:      adminA,
			action:     ActionAppointmentApprove,
			res:        Resource{Kind: "appointment", CompanyUUID: "company-b", OwnerUUID: "cons-2"},
			wantAllow:  false,
			wantReason: ReasonCrossTenant,
		},
		{
			name:       "сотрудник не отличает консультацию чужой компании от несуществующей",
			actor:      employeeA,
			action:     ActionAppointmentApprove,
			res:        Resource{Kind: "appointment", CompanyUUID: "company-b", OwnerUUID: "cons-2"},
			wantAllow:  false,
			wantReason: ReasonCrossTenant,
		},
		{
			name:       "состояние ресурса чужой компании не раскрывается",
			actor:      employeeA,
			action:     ActionAppointmentFeedback,
			res:        Resource{Kind: "appointment", CompanyUUID: "company-b", OwnerUUID: "emp-b", Stale: true},
			wantAllow:  false,
			wantReason: ReasonCrossTenant,
		},
		{
			name:      "админ подтверждает pending-консультацию своей компании",
			actor:     adminA,
			action:    ActionAppointmentApprove,
			res:       Resource{Kind: "appointment", CompanyUUID: "company-a", OwnerUUID: "cons-1"},
			wantAllow: true,
		},
		{
			name:      "консультант подтверждает свою консультацию",
			actor:     consultant,
			action:    ActionAppointmentApprove,
			res:       Resource{Kind: "appointment", CompanyUUID: "company-a", OwnerUUID: "cons-1"},
			wantAllow: true,
		},
		{
			name:       "консультант не может подтвердить чужую консультацию",
			actor:      Actor{UUID: "cons-2", Role: models.RoleConsultant},
			action:     ActionAppointmentApprove,
			res:        Resource{Kind: "appointment", CompanyUUID: "company-a", OwnerUUID: "cons-1"},
			wantAllow:  false,
			wantReason: ReasonNotOwner,
		},
		{
			name:       "повторное подтверждение уже подтверждённой консультации — stale state",
			actor:      adminA,
			action:     ActionAppointmentApprove,
			res:        Resource{Kind: "appointment", CompanyUUID: "company-a", OwnerUUID: "cons-1", Stale: true},
			wantAllow:  false,
			wantReason: ReasonStaleState,
		},
		{
			name:       "истёкшее приглашение отклоняется независимо от роли",
			actor:      superadmin,
			action:     ActionInvitationAccept,
			res:        Resource{Kind: "invitation", Missing: true},
			wantAllow:  false,
			wantReason: ReasonNotFound,
		},
		{
			name:       "сотрудник не может выпускать приглашения",
			actor:      employeeA,
			action:     ActionInvitationCreate,
			res:        Resource{Kind: "company", CompanyUUID: "company-a", Entitled: true},
			wantAllow:  false,
			wantReason: ReasonRoleMismatch,
		},
		{
			name:      "автор редактирует свой курс",
			actor:     author,
			action:    ActionFormationUpdate,
			res:       Resource{Kind: "formation", OwnerUUID: "auth-1"},
			wantAllow: true,
		},
		{
			name:       "суперадмин не редактирует чужой курс: действие закреплено за владельцем",
			actor:      superadmin,
			action:     ActionFormationUpdate,
			res:        Resource{Kind: "formation", OwnerUUID: "auth-1"},
			wantAllow:  false,
			wantReason: ReasonRoleMismatch,
		},
		{
			name:      "суперадмин переключает активность любого курса",
			actor:     superadmin,
			action:    ActionFormationToggle,
			res:       Resource{Kind: "formation", OwnerUUID: "auth-1"},
			wantAllow: true,
		},
		{
			name:       "уведомление читает только адресат",
			actor:      employeeA,
			action:     ActionNotificationRead,
			res:        Resource{Kind: "notification", OwnerUUID: "emp-b"},
			wantAllow:  false,
			wantReason: ReasonNotOwner,
		},
		{
			name:       "суперадмин не читает чужие уведомления",
			actor:      superadmin,
			action:     ActionNotificationRead,
			res:        Resource{Kind: "notification", OwnerUUID: "emp-b"},
			wantAllow:  false,
			wantReason: ReasonNotOwner,
		},
		{
			name:       "неизвестное действие отклоняется",
			actor:      superadmin,
			action:     Action("bogus.action"),
			res:        Resource{},
			wantAllow:  false,
			wantReason: ReasonUnknownAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.actor, tt.action, tt.res)
			assert.Equal(t, tt.wantAllow, got.Allowed)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

// Тенантные действия над ресурсом чужой компании всегда дают cross-tenant,
// какой бы ни была компания актора.
func TestDecide_CrossTenantProperty(t *testing.T) {
	companies := []string{"company-a", "company-b", "company-c"}
	for _, actorCompany := range companies {
		for _, resCompany := range companies {
			if actorCompany == resCompany {
				continue
			}
			actor := Actor{UUID: "admin", Role: models.RoleCompanyAdmin, CompanyUUID: actorCompany}
			res := Resource{Kind: "invitation", CompanyUUID: resCompany}
			got := Decide(actor, ActionInvitationList, res)
			assert.False(t, got.Allowed)
			assert.Equal(t, ReasonCrossTenant, got.Reason)
		}
	}
}

func TestDecision_Err(t *testing.T) {
	tests := []struct {
		name       string
		decision   Decision
		wantErr    error
		wantStatus int
	}{
		{"разрешение даёт nil", Decision{Allowed: true}, nil, 0},
		{"unauthenticated отображается в 401", deny(ReasonUnauthenticated), errs.ErrUnauthenticated, http.StatusUnauthorized},
		{"role mismatch отображается в 403", deny(ReasonRoleMismatch), errs.ErrForbidden, http.StatusForbidden},
		{"not owner отображается в 403", deny(ReasonNotOwner), errs.ErrForbidden, http.StatusForbidden},
		{"cross-tenant скрывается как 404", deny(ReasonCrossTenant), errs.ErrNotFound, http.StatusNotFound},
		{"not found отображается в 404", deny(ReasonNotFound), errs.ErrNotFound, http.StatusNotFound},
		{"stale state отображается в 409", deny(ReasonStaleState), errs.ErrConflict, http.StatusConflict},
		{"not entitled отображается в 403", deny(ReasonNotEntitled), errs.ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decision.Err()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantStatus, errs.HTTPStatus(err))
		})
	}
}
