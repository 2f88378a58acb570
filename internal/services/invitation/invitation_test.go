package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/models"
	services "github.com/magabrotheeeer/training-platform/internal/services/invitation"
)

// Мок для InvitationRepository
type InvitationRepoMock struct {
	mock.Mock
}

func (m *InvitationRepoMock) CreateInvitation(ctx context.Context, inv models.Invitation) (string, error) {
	args := m.Called(ctx, inv)
	return args.String(0), args.Error(1)
}

func (m *InvitationRepoMock) GetInvitation(ctx context.Context, token string) (*models.Invitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *InvitationRepoMock) ListInvitations(ctx context.Context, companyUUID string) ([]*models.Invitation, error) {
	args := m.Called(ctx, companyUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invitation), args.Error(1)
}

func (m *InvitationRepoMock) AcceptInvitation(ctx context.Context, token, passwordHash string) (string, error) {
	args := m.Called(ctx, token, passwordHash)
	return args.String(0), args.Error(1)
}

func (m *InvitationRepoMock) CountCompanySeats(ctx context.Context, companyUUID string) (int, error) {
	args := m.Called(ctx, companyUUID)
	return args.Int(0), args.Error(1)
}

func (m *InvitationRepoMock) GetSubscription(ctx context.Context, companyUUID string) (*models.Subscription, error) {
	args := m.Called(ctx, companyUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

// Мок для Entitlements
type EntitlementsMock struct {
	mock.Mock
}

func (m *EntitlementsMock) IsEntitled(ctx context.Context, companyUUID string) (bool, error) {
	args := m.Called(ctx, companyUUID)
	return args.Bool(0), args.Error(1)
}

// Мок для EventPublisher
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInvitationService_Create(t *testing.T) {
	admin := authz.Actor{UUID: "admin-uuid", Role: models.RoleCompanyAdmin, CompanyUUID: "acme-uuid"}

	tests := []struct {
		name       string
		actor      authz.Actor
		company    string
		setupMocks func(r *InvitationRepoMock, e *EntitlementsMock, p *PublisherMock)
		wantToken  string
		wantErr    error
	}{
		{
			name:    "successful create invitation",
			actor:   admin,
			company: "acme-uuid",
			setupMocks: func(r *InvitationRepoMock, e *EntitlementsMock, p *PublisherMock) {
				e.On("IsEntitled", mock.Anything, "acme-uuid").Return(true, nil).Once()
				r.On("GetSubscription", mock.Anything, "acme-uuid").
					Return(&models.Subscription{SeatLimit: 10, Status: models.SubscriptionActive}, nil).Once()
				r.On("CountCompanySeats", mock.Anything, "acme-uuid").Return(3, nil).Once()
				r.On("CreateInvitation", mock.Anything, mock.MatchedBy(func(inv models.Invitation) bool {
					return inv.Email == "newhire@acme.example.com" &&
						inv.Role == models.RoleEmployee &&
						inv.CompanyUUID == "acme-uuid" &&
						inv.IssuedBy == "admin-uuid" &&
						inv.ExpiresAt.After(time.Now())
				})).Return("token-123", nil).Once()
				p.On("Publish", "invitation", mock.Anything).Return(nil).Once()
			},
			wantToken: "token-123",
		},
		{
			name:    "unpaid subscription blocks invitation",
			actor:   admin,
			company: "acme-uuid",
			setupMocks: func(_ *InvitationRepoMock, e *EntitlementsMock, _ *PublisherMock) {
				e.On("IsEntitled", mock.Anything, "acme-uuid").Return(false, nil).Once()
			},
			wantErr: errs.ErrForbidden,
		},
		{
			name:    "seat limit reached returns conflict",
			actor:   admin,
			company: "acme-uuid",
			setupMocks: func(r *InvitationRepoMock, e *EntitlementsMock, _ *PublisherMock) {
				e.On("IsEntitled", mock.Anything, "acme-uuid").Return(true, nil).Once()
				r.On("GetSubscription", mock.Anything, "acme-uuid").
					Return(&models.Subscription{SeatLimit: 3, Status: models.SubscriptionActive}, nil).Once()
				r.On("CountCompanySeats", mock.Anything, "acme-uuid").Return(3, nil).Once()
			},
			wantErr: errs.ErrConflict,
		},
		{
			name:    "cross-tenant admin gets not found",
			actor:   admin,
			company: "other-uuid",
			setupMocks: func(_ *InvitationRepoMock, e *EntitlementsMock, _ *PublisherMock) {
				e.On("IsEntitled", mock.Anything, "other-uuid").Return(true, nil).Once()
			},
			wantErr: errs.ErrNotFound,
		},
		{
			name:    "employee cannot invite",
			actor:   authz.Actor{UUID: "emp-uuid", Role: models.RoleEmployee, CompanyUUID: "acme-uuid"},
			company: "acme-uuid",
			setupMocks: func(_ *InvitationRepoMock, e *EntitlementsMock, _ *PublisherMock) {
				e.On("IsEntitled", mock.Anything, "acme-uuid").Return(true, nil).Once()
			},
			wantErr: errs.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(InvitationRepoMock)
			entitlements := new(EntitlementsMock)
			publisher := new(PublisherMock)
			svc := services.NewInvitationService(repo, entitlements, publisher, 168*time.Hour, discardLogger())

			tt.setupMocks(repo, entitlements, publisher)

			token, err := svc.Create(context.Background(), tt.actor, tt.company, models.DummyInvitation{
				Email: "newhire@acme.example.com",
				Role:  models.RoleEmployee,
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
			}

			repo.AssertExpectations(t)
			entitlements.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestInvitationService_Accept(t *testing.T) {
	accepted := time.Now().Add(-time.Hour)

	tests := []struct {
		name       string
		setupMocks func(r *InvitationRepoMock)
		wantErr    error
	}{
		{
			name: "successful accept",
			setupMocks: func(r *InvitationRepoMock) {
				r.On("GetInvitation", mock.Anything, "token-123").Return(&models.Invitation{
					Token:       "token-123",
					CompanyUUID: "acme-uuid",
					ExpiresAt:   time.Now().Add(24 * time.Hour),
				}, nil).Once()
				r.On("AcceptInvitation", mock.Anything, "token-123", mock.AnythingOfType("string")).
					Return("account-uuid", nil).Once()
			},
		},
		{
			name: "already accepted invitation returns conflict",
			setupMocks: func(r *InvitationRepoMock) {
				r.On("GetInvitation", mock.Anything, "token-123").Return(&models.Invitation{
					Token:       "token-123",
					CompanyUUID: "acme-uuid",
					ExpiresAt:   time.Now().Add(24 * time.Hour),
					AcceptedAt:  &accepted,
				}, nil).Once()
			},
			wantErr: errs.ErrConflict,
		},
		{
			name: "expired invitation returns not found",
			setupMocks: func(r *InvitationRepoMock) {
				r.On("GetInvitation", mock.Anything, "token-123").Return(&models.Invitation{
					Token:       "token-123",
					CompanyUUID: "acme-uuid",
					ExpiresAt:   time.Now().Add(-time.Hour),
				}, nil).Once()
			},
			wantErr: errs.ErrNotFound,
		},
		{
			name: "unknown token returns not found",
			setupMocks: func(r *InvitationRepoMock) {
				r.On("GetInvitation", mock.Anything, "token-123").Return(nil, errs.ErrNotFound).Once()
			},
			wantErr: errs.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(InvitationRepoMock)
			entitlements := new(EntitlementsMock)
			publisher := new(PublisherMock)
			svc := services.NewInvitationService(repo, entitlements, publisher, 168*time.Hour, discardLogger())

			tt.setupMocks(repo)

			accountUUID, err := svc.Accept(context.Background(), models.DummyInvitationAccept{
				Token:    "token-123",
				Password: "password123",
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "account-uuid", accountUUID)
			}

			repo.AssertExpectations(t)
		})
	}
}
