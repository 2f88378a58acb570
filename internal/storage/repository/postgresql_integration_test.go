package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

func TestStorage_AcceptInvitation(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory) string
	}{
		{
			name:    "successful accept pending invitation",
			wantErr: nil,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				tc := newTestCompany(t, factory, models.SubscriptionActive)
				return factory.CreateInvitation(t, "newhire@acme.example.com", models.RoleEmployee,
					tc.CompanyUUID, tc.AdminUUID, time.Now().Add(24*time.Hour))
			},
		},
		{
			name:    "accept already accepted invitation returns conflict",
			wantErr: errs.ErrConflict,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				tc := newTestCompany(t, factory, models.SubscriptionActive)
				token := factory.CreateInvitation(t, "newhire@acme.example.com", models.RoleEmployee,
					tc.CompanyUUID, tc.AdminUUID, time.Now().Add(24*time.Hour))
				_, err := factory.storage.AcceptInvitation(context.Background(), token, "hashedpassword")
				require.NoError(t, err)
				return token
			},
		},
		{
			name:    "accept expired invitation returns not found",
			wantErr: errs.ErrNotFound,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				tc := newTestCompany(t, factory, models.SubscriptionActive)
				return factory.CreateInvitation(t, "late@acme.example.com", models.RoleEmployee,
					tc.CompanyUUID, tc.AdminUUID, time.Now().Add(-time.Hour))
			},
		},
		{
			name:    "accept unknown token returns not found",
			wantErr: errs.ErrNotFound,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				newTestCompany(t, factory, models.SubscriptionActive)
				return "00000000-0000-0000-0000-000000000000"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			token := tt.setup(t, factory)

			accountUUID, err := storage.AcceptInvitation(context.Background(), token, "newhashedpassword")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, accountUUID)

			verification := NewTestVerification(storage)
			verification.VerifyAccountExists(t, accountUUID)
			verification.VerifyInvitationAccepted(t, token, accountUUID)
		})
	}
}

func TestStorage_CreateInvitation_LiveUnique(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	tc := newTestCompany(t, factory, models.SubscriptionActive)

	inv := models.Invitation{
		Email:       "newhire@acme.example.com",
		Role:        models.RoleEmployee,
		CompanyUUID: tc.CompanyUUID,
		IssuedBy:    tc.AdminUUID,
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}

	token, err := storage.CreateInvitation(context.Background(), inv)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Второе живое приглашение на ту же пару (email, компания) запрещено.
	_, err = storage.CreateInvitation(context.Background(), inv)
	require.ErrorIs(t, err, errs.ErrConflict)

	// После принятия первого приглашения пару можно приглашать снова.
	_, err = storage.AcceptInvitation(context.Background(), token, "hashedpassword")
	require.NoError(t, err)

	inv.Email = "newhire2@acme.example.com"
	_, err = storage.CreateInvitation(context.Background(), inv)
	require.NoError(t, err)
}

func TestStorage_CreateInvitation_SeatLimit(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	companyUUID := factory.CreateCompany(t, "acme", models.SubscriptionActive, 3)
	adminUUID := factory.CreateAccount(t, "admin@acme.example.com", models.RoleCompanyAdmin, &companyUUID)
	factory.CreateAccount(t, "employee@acme.example.com", models.RoleEmployee, &companyUUID)

	inv := models.Invitation{
		Email:       "newhire@acme.example.com",
		Role:        models.RoleEmployee,
		CompanyUUID: companyUUID,
		IssuedBy:    adminUUID,
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}

	// Две учётные записи плюс живое приглашение занимают все три места.
	_, err := storage.CreateInvitation(context.Background(), inv)
	require.NoError(t, err)

	inv.Email = "overflow@acme.example.com"
	_, err = storage.CreateInvitation(context.Background(), inv)
	require.ErrorIs(t, err, errs.ErrConflict)

	// Истёкшее приглашение место освобождает.
	_, err = storage.DB.Exec(`UPDATE invitations SET expires_at = now() - interval '1 hour'
		WHERE email = $1`, "newhire@acme.example.com")
	require.NoError(t, err)

	_, err = storage.CreateInvitation(context.Background(), inv)
	require.NoError(t, err)
}

func TestStorage_CountCompanySeats(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	tc := newTestCompany(t, factory, models.SubscriptionActive)

	// Три учётные записи компании плюс одно живое приглашение.
	factory.CreateInvitation(t, "pending@acme.example.com", models.RoleEmployee,
		tc.CompanyUUID, tc.AdminUUID, time.Now().Add(24*time.Hour))
	// Истёкшее приглашение место не занимает.
	factory.CreateInvitation(t, "stale@acme.example.com", models.RoleEmployee,
		tc.CompanyUUID, tc.AdminUUID, time.Now().Add(-time.Hour))

	seats, err := storage.CountCompanySeats(context.Background(), tc.CompanyUUID)
	require.NoError(t, err)
	assert.Equal(t, 4, seats)
}

func TestStorage_UpdateProgress(t *testing.T) {
	type args struct {
		progress int
	}

	tests := []struct {
		name         string
		args         args
		wantErr      error
		initProgress int
	}{
		{
			name:         "successful increase progress",
			args:         args{progress: 60},
			wantErr:      nil,
			initProgress: 40,
		},
		{
			name:         "same progress is idempotent",
			args:         args{progress: 40},
			wantErr:      nil,
			initProgress: 40,
		},
		{
			name:         "decrease progress returns conflict",
			args:         args{progress: 10},
			wantErr:      errs.ErrConflict,
			initProgress: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tc := newTestCompany(t, factory, models.SubscriptionActive)
			author := factory.CreateAccount(t, "author@example.com", models.RoleAuthor, nil)
			formationID := factory.CreateFormation(t, "go basics", author, true)
			enrollmentID := factory.CreateEnrollment(t, tc.EmployeeUUID, formationID, tt.initProgress, tc.AdminUUID)

			err := storage.UpdateProgress(context.Background(), enrollmentID, tt.args.progress)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				verification := NewTestVerification(storage)
				verification.VerifyEnrollmentProgress(t, enrollmentID, tt.initProgress)
				return
			}
			require.NoError(t, err)

			verification := NewTestVerification(storage)
			verification.VerifyEnrollmentProgress(t, enrollmentID, tt.args.progress)
		})
	}
}

func TestStorage_UpdateProgress_CompletedAtSetOnce(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	tc := newTestCompany(t, factory, models.SubscriptionActive)
	author := factory.CreateAccount(t, "author@example.com", models.RoleAuthor, nil)
	formationID := factory.CreateFormation(t, "go basics", author, true)
	enrollmentID := factory.CreateEnrollment(t, tc.EmployeeUUID, formationID, 90, tc.AdminUUID)

	require.NoError(t, storage.UpdateProgress(context.Background(), enrollmentID, 100))

	got, err := storage.GetEnrollment(context.Background(), enrollmentID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	first := *got.CompletedAt

	// Повторная запись 100 не сдвигает отметку завершения.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, storage.UpdateProgress(context.Background(), enrollmentID, 100))

	got, err = storage.GetEnrollment(context.Background(), enrollmentID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, first.Equal(*got.CompletedAt))
}

func TestStorage_UpdateProgress_MissingEnrollment(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	err := storage.UpdateProgress(context.Background(), 999, 50)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStorage_TransitionAppointment(t *testing.T) {
	type args struct {
		from string
		to   string
	}

	tests := []struct {
		name       string
		args       args
		initStatus string
		wantErr    error
		wantStatus string
	}{
		{
			name:       "successful confirm pending appointment",
			args:       args{from: models.AppointmentPending, to: models.AppointmentConfirmed},
			initStatus: models.AppointmentPending,
			wantErr:    nil,
			wantStatus: models.AppointmentConfirmed,
		},
		{
			name:       "successful reject pending appointment",
			args:       args{from: models.AppointmentPending, to: models.AppointmentRejected},
			initStatus: models.AppointmentPending,
			wantErr:    nil,
			wantStatus: models.AppointmentRejected,
		},
		{
			name:       "confirm already rejected appointment returns conflict",
			args:       args{from: models.AppointmentPending, to: models.AppointmentConfirmed},
			initStatus: models.AppointmentRejected,
			wantErr:    errs.ErrConflict,
			wantStatus: models.AppointmentRejected,
		},
		{
			name:       "complete pending appointment returns conflict",
			args:       args{from: models.AppointmentConfirmed, to: models.AppointmentCompleted},
			initStatus: models.AppointmentPending,
			wantErr:    errs.ErrConflict,
			wantStatus: models.AppointmentPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tc := newTestCompany(t, factory, models.SubscriptionActive)
			appointmentID := factory.CreateAppointment(t, tc.EmployeeUUID, tc.ConsultantUUID,
				tc.CompanyUUID, tt.initStatus)

			err := storage.TransitionAppointment(context.Background(), appointmentID, tt.args.from, tt.args.to)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			verification := NewTestVerification(storage)
			verification.VerifyAppointmentStatus(t, appointmentID, tt.wantStatus)
		})
	}
}

func TestStorage_TransitionAppointment_Missing(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	err := storage.TransitionAppointment(context.Background(), 999,
		models.AppointmentPending, models.AppointmentConfirmed)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStorage_CreateFeedback_Unique(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	tc := newTestCompany(t, factory, models.SubscriptionActive)
	appointmentID := factory.CreateAppointment(t, tc.EmployeeUUID, tc.ConsultantUUID,
		tc.CompanyUUID, models.AppointmentCompleted)

	feedback := models.Feedback{
		AppointmentID: appointmentID,
		Rating:        5,
		Satisfied:     true,
		Recommend:     true,
	}

	_, err := storage.CreateFeedback(context.Background(), feedback)
	require.NoError(t, err)

	_, err = storage.CreateFeedback(context.Background(), feedback)
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestStorage_UpdateSubscriptionStatus(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	companyUUID := factory.CreateCompany(t, "acme", models.SubscriptionUnpaid, 50)

	event := models.Subscription{
		CompanyUUID: companyUUID,
		Status:      models.SubscriptionActive,
		PeriodStart: time.Now(),
		PeriodEnd:   time.Now().AddDate(0, 1, 0),
	}
	require.NoError(t, storage.UpdateSubscriptionStatus(context.Background(), event))

	verification := NewTestVerification(storage)
	verification.VerifySubscriptionStatus(t, companyUUID, models.SubscriptionActive)

	event.CompanyUUID = "00000000-0000-0000-0000-000000000000"
	err := storage.UpdateSubscriptionStatus(context.Background(), event)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStorage_ConsumePasswordReset(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
		setup   func(t *testing.T, storage *Storage, accountUUID string) string
	}{
		{
			name:    "successful consume live token",
			wantErr: nil,
			setup: func(t *testing.T, storage *Storage, accountUUID string) string {
				token, err := storage.CreatePasswordReset(context.Background(), accountUUID, time.Now().Add(time.Hour))
				require.NoError(t, err)
				return token
			},
		},
		{
			name:    "consume used token returns conflict",
			wantErr: errs.ErrConflict,
			setup: func(t *testing.T, storage *Storage, accountUUID string) string {
				token, err := storage.CreatePasswordReset(context.Background(), accountUUID, time.Now().Add(time.Hour))
				require.NoError(t, err)
				require.NoError(t, storage.ConsumePasswordReset(context.Background(), token, "firsthash"))
				return token
			},
		},
		{
			name:    "consume expired token returns not found",
			wantErr: errs.ErrNotFound,
			setup: func(t *testing.T, storage *Storage, accountUUID string) string {
				token, err := storage.CreatePasswordReset(context.Background(), accountUUID, time.Now().Add(-time.Hour))
				require.NoError(t, err)
				return token
			},
		},
		{
			name:    "consume unknown token returns not found",
			wantErr: errs.ErrNotFound,
			setup: func(_ *testing.T, _ *Storage, _ string) string {
				return "00000000-0000-0000-0000-000000000000"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			accountUUID := factory.CreateAccount(t, "consultant@example.com", models.RoleConsultant, nil)
			token := tt.setup(t, storage, accountUUID)

			err := storage.ConsumePasswordReset(context.Background(), token, "newhash")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			got, err := storage.GetAccount(context.Background(), accountUUID)
			require.NoError(t, err)
			assert.Equal(t, "newhash", got.PasswordHash)
		})
	}
}
