package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/models"
	services "github.com/magabrotheeeer/training-platform/internal/services/appointment"
)

// Мок для AppointmentRepository
type AppointmentRepoMock struct {
	mock.Mock
}

func (m *AppointmentRepoMock) CreateAppointment(ctx context.Context, a models.Appointment) (int, error) {
	args := m.Called(ctx, a)
	return args.Int(0), args.Error(1)
}

func (m *AppointmentRepoMock) GetAppointment(ctx context.Context, id int) (*models.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *AppointmentRepoMock) TransitionAppointment(ctx context.Context, id int, from, to string) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *AppointmentRepoMock) ListAppointmentsByAccount(ctx context.Context, accountUUID string) ([]*models.Appointment, error) {
	args := m.Called(ctx, accountUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Appointment), args.Error(1)
}

func (m *AppointmentRepoMock) ListAppointmentsByCompany(ctx context.Context, companyUUID string) ([]*models.Appointment, error) {
	args := m.Called(ctx, companyUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Appointment), args.Error(1)
}

func (m *AppointmentRepoMock) CreateFeedback(ctx context.Context, f models.Feedback) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *AppointmentRepoMock) GetAccount(ctx context.Context, accountUUID string) (*models.Account, error) {
	args := m.Called(ctx, accountUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
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

func pendingAppointment() *models.Appointment {
	return &models.Appointment{
		ID:             1,
		EmployeeUUID:   "emp-uuid",
		ConsultantUUID: "consultant-uuid",
		CompanyUUID:    "acme-uuid",
		Topic:          "onboarding",
		Status:         models.AppointmentPending,
	}
}

func TestAppointmentService_Approve(t *testing.T) {
	consultant := authz.Actor{UUID: "consultant-uuid", Role: models.RoleConsultant}
	admin := authz.Actor{UUID: "admin-uuid", Role: models.RoleCompanyAdmin, CompanyUUID: "acme-uuid"}

	tests := []struct {
		name       string
		actor      authz.Actor
		setupMocks func(r *AppointmentRepoMock, p *PublisherMock)
		wantErr    error
	}{
		{
			name:  "assigned consultant approves",
			actor: consultant,
			setupMocks: func(r *AppointmentRepoMock, p *PublisherMock) {
				r.On("GetAppointment", mock.Anything, 1).Return(pendingAppointment(), nil).Once()
				r.On("TransitionAppointment", mock.Anything, 1,
					models.AppointmentPending, models.AppointmentConfirmed).Return(nil).Once()
				p.On("Publish", "decision", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:  "company admin approves for own tenant",
			actor: admin,
			setupMocks: func(r *AppointmentRepoMock, p *PublisherMock) {
				r.On("GetAppointment", mock.Anything, 1).Return(pendingAppointment(), nil).Once()
				r.On("TransitionAppointment", mock.Anything, 1,
					models.AppointmentPending, models.AppointmentConfirmed).Return(nil).Once()
				p.On("Publish", "decision", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:  "foreign consultant gets forbidden",
			actor: authz.Actor{UUID: "other-consultant", Role: models.RoleConsultant},
			setupMocks: func(r *AppointmentRepoMock, _ *PublisherMock) {
				r.On("GetAppointment", mock.Anything, 1).Return(pendingAppointment(), nil).Once()
			},
			wantErr: errs.ErrForbidden,
		},
		{
			name:  "admin of another tenant gets not found",
			actor: authz.Actor{UUID: "other-admin", Role: models.RoleCompanyAdmin, CompanyUUID: "globex-uuid"},
			setupMocks: func(r *AppointmentRepoMock, _ *PublisherMock) {
				r.On("GetAppointment", mock.Anything, 1).Return(pendingAppointment(), nil).Once()
			},
			wantErr: errs.ErrNotFound,
		},
		{
			name:  "already rejected appointment returns conflict",
			actor: consultant,
			setupMocks: func(r *AppointmentRepoMock, _ *PublisherMock) {
				a := pendingAppointment()
				a.Status = models.AppointmentRejected
				r.On("GetAppointment", mock.Anything, 1).Return(a, nil).Once()
			},
			wantErr: errs.ErrConflict,
		},
		{
			name:  "concurrent decision loses on conditional update",
			actor: consultant,
			setupMocks: func(r *AppointmentRepoMock, _ *PublisherMock) {
				// Политика видит pending, но другой участник успел первым:
				// условный переход в хранилище возвращает conflict.
				r.On("GetAppointment", mock.Anything, 1).Return(pendingAppointment(), nil).Once()
				r.On("TransitionAppointment", mock.Anything, 1,
					models.AppointmentPending, models.AppointmentConfirmed).Return(errs.ErrConflict).Once()
			},
			wantErr: errs.ErrConflict,
		},
		{
			name:  "missing appointment returns not found",
			actor: consultant,
			setupMocks: func(r *AppointmentRepoMock, _ *PublisherMock) {
				r.On("GetAppointment", mock.Anything, 1).Return(nil, errs.ErrNotFound).Once()
			},
			wantErr: errs.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(AppointmentRepoMock)
			publisher := new(PublisherMock)
			svc := services.NewAppointmentService(repo, publisher, discardLogger())

			tt.setupMocks(repo, publisher)

			err := svc.Approve(context.Background(), tt.actor, 1)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestAppointmentService_Complete(t *testing.T) {
	consultant := authz.Actor{UUID: "consultant-uuid", Role: models.RoleConsultant}

	tests := []struct {
		name       string
		actor      authz.Actor
		status     string
		wantErr    error
		transition bool
	}{
		{
			name:       "consultant completes confirmed appointment",
			actor:      consultant,
			status:     models.AppointmentConfirmed,
			transition: true,
		},
		{
			name:    "pending appointment cannot be completed",
			actor:   consultant,
			status:  models.AppointmentPending,
			wantErr: errs.ErrConflict,
		},
		{
			name:    "superadmin cannot complete for consultant",
			actor:   authz.Actor{UUID: "root-uuid", Role: models.RoleSuperAdmin},
			status:  models.AppointmentConfirmed,
			wantErr: errs.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(AppointmentRepoMock)
			publisher := new(PublisherMock)
			svc := services.NewAppointmentService(repo, publisher, discardLogger())

			a := pendingAppointment()
			a.Status = tt.status
			repo.On("GetAppointment", mock.Anything, 1).Return(a, nil).Once()
			if tt.transition {
				repo.On("TransitionAppointment", mock.Anything, 1,
					models.AppointmentConfirmed, models.AppointmentCompleted).Return(nil).Once()
			}

			err := svc.Complete(context.Background(), tt.actor, 1)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAppointmentService_Feedback(t *testing.T) {
	employee := authz.Actor{UUID: "emp-uuid", Role: models.RoleEmployee, CompanyUUID: "acme-uuid"}

	tests := []struct {
		name       string
		actor      authz.Actor
		status     string
		setupMocks func(r *AppointmentRepoMock)
		wantErr    error
	}{
		{
			name:   "participant leaves feedback on completed appointment",
			actor:  employee,
			status: models.AppointmentCompleted,
			setupMocks: func(r *AppointmentRepoMock) {
				r.On("CreateFeedback", mock.Anything, mock.MatchedBy(func(f models.Feedback) bool {
					return f.AppointmentID == 1 && f.Rating == 5
				})).Return(1, nil).Once()
			},
		},
		{
			name:       "feedback before completion returns conflict",
			actor:      employee,
			status:     models.AppointmentConfirmed,
			setupMocks: func(_ *AppointmentRepoMock) {},
			wantErr:    errs.ErrConflict,
		},
		{
			name:       "other employee cannot leave feedback",
			actor:      authz.Actor{UUID: "other-emp", Role: models.RoleEmployee, CompanyUUID: "acme-uuid"},
			status:     models.AppointmentCompleted,
			setupMocks: func(_ *AppointmentRepoMock) {},
			wantErr:    errs.ErrForbidden,
		},
		{
			name:   "second feedback returns conflict",
			actor:  employee,
			status: models.AppointmentCompleted,
			setupMocks: func(r *AppointmentRepoMock) {
				r.On("CreateFeedback", mock.Anything, mock.Anything).Return(0, errs.ErrConflict).Once()
			},
			wantErr: errs.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(AppointmentRepoMock)
			publisher := new(PublisherMock)
			svc := services.NewAppointmentService(repo, publisher, discardLogger())

			a := pendingAppointment()
			a.Status = tt.status
			repo.On("GetAppointment", mock.Anything, 1).Return(a, nil).Once()
			tt.setupMocks(repo)

			_, err := svc.Feedback(context.Background(), tt.actor, 1, models.DummyFeedback{
				Rating:    5,
				Satisfied: true,
				Recommend: true,
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAppointmentService_Create_InvalidConsultant(t *testing.T) {
	repo := new(AppointmentRepoMock)
	publisher := new(PublisherMock)
	svc := services.NewAppointmentService(repo, publisher, discardLogger())

	repo.On("GetAccount", mock.Anything, "emp-2-uuid").
		Return(&models.Account{UUID: "emp-2-uuid", Role: models.RoleEmployee}, nil).Once()

	_, err := svc.Create(context.Background(),
		authz.Actor{UUID: "emp-uuid", Role: models.RoleEmployee, CompanyUUID: "acme-uuid"},
		models.DummyAppointment{
			ConsultantUUID: "emp-2-uuid",
			StartsAt:       time.Now().Add(24 * time.Hour).Format("02-01-2006 15:04"),
			Topic:          "onboarding",
		})

	require.ErrorIs(t, err, errs.ErrInvalid)
	repo.AssertExpectations(t)
}
