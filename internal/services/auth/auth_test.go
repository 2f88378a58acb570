package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/training-platform/internal/errs"
	customjwt "github.com/magabrotheeeer/training-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/training-platform/internal/lib/password"
	"github.com/magabrotheeeer/training-platform/internal/models"
	services "github.com/magabrotheeeer/training-platform/internal/services/auth"
)

// Мок для AccountRepository
type AccountRepoMock struct {
	mock.Mock
}

func (m *AccountRepoMock) CreateAccount(ctx context.Context, account models.Account) (string, error) {
	args := m.Called(ctx, account)
	return args.String(0), args.Error(1)
}

func (m *AccountRepoMock) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *AccountRepoMock) CreatePasswordReset(ctx context.Context, accountUUID string, expiresAt time.Time) (string, error) {
	args := m.Called(ctx, accountUUID, expiresAt)
	return args.String(0), args.Error(1)
}

func (m *AccountRepoMock) ConsumePasswordReset(ctx context.Context, token, passwordHash string) error {
	args := m.Called(ctx, token, passwordHash)
	return args.Error(0)
}

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(accountUUID, role, companyUUID string) (string, error) {
	args := m.Called(accountUUID, role, companyUUID)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

// Мок для EventPublisher
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func newService(repo *AccountRepoMock, jwtMock *JwtMakerMock, publisher *PublisherMock) *services.AuthService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.NewAuthService(repo, jwtMock, publisher, time.Hour, log)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name       string
		req        models.DummyRegister
		setupMocks func(r *AccountRepoMock)
		wantUUID   string
		wantErr    error
	}{
		{
			name: "successful consultant registration",
			req: models.DummyRegister{
				Email:    "consultant@example.com",
				Password: "password123",
				Role:     models.RoleConsultant,
			},
			setupMocks: func(r *AccountRepoMock) {
				r.On("CreateAccount", mock.Anything, mock.MatchedBy(func(a models.Account) bool {
					return a.Email == "consultant@example.com" &&
						a.PasswordHash != "" &&
						a.Role == models.RoleConsultant &&
						a.CompanyUUID == nil
				})).Return("some-uuid-string", nil).Once()
			},
			wantUUID: "some-uuid-string",
		},
		{
			name: "employee role is closed for self-registration",
			req: models.DummyRegister{
				Email:    "employee@example.com",
				Password: "password123",
				Role:     models.RoleEmployee,
			},
			setupMocks: func(_ *AccountRepoMock) {},
			wantErr:    errs.ErrInvalid,
		},
		{
			name: "duplicate email returns conflict",
			req: models.DummyRegister{
				Email:    "consultant@example.com",
				Password: "password123",
				Role:     models.RoleAuthor,
			},
			setupMocks: func(r *AccountRepoMock) {
				r.On("CreateAccount", mock.Anything, mock.Anything).Return("", errs.ErrConflict).Once()
			},
			wantErr: errs.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(AccountRepoMock)
			svc := newService(repo, new(JwtMakerMock), new(PublisherMock))

			tt.setupMocks(repo)

			got, err := svc.Register(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantUUID, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashedPassword, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	companyUUID := "acme-uuid"
	testAccount := &models.Account{
		UUID:         "account-uuid",
		Email:        "admin@acme.example.com",
		PasswordHash: hashedPassword,
		Role:         models.RoleCompanyAdmin,
		CompanyUUID:  &companyUUID,
	}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(r *AccountRepoMock, j *JwtMakerMock)
		wantToken  string
		wantRole   string
		wantErr    error
	}{
		{
			name:     "successful login",
			email:    "admin@acme.example.com",
			password: rawPassword,
			setupMocks: func(r *AccountRepoMock, j *JwtMakerMock) {
				r.On("GetAccountByEmail", mock.Anything, "admin@acme.example.com").Return(testAccount, nil).Once()
				j.On("GenerateToken", "account-uuid", models.RoleCompanyAdmin, "acme-uuid").
					Return("jwt-token-123", nil).Once()
			},
			wantToken: "jwt-token-123",
			wantRole:  models.RoleCompanyAdmin,
		},
		{
			name:     "unknown email maps to unauthenticated",
			email:    "nobody@example.com",
			password: rawPassword,
			setupMocks: func(r *AccountRepoMock, _ *JwtMakerMock) {
				r.On("GetAccountByEmail", mock.Anything, "nobody@example.com").Return(nil, errs.ErrNotFound).Once()
			},
			wantErr: errs.ErrUnauthenticated,
		},
		{
			name:     "wrong password",
			email:    "admin@acme.example.com",
			password: "wrongpassword",
			setupMocks: func(r *AccountRepoMock, _ *JwtMakerMock) {
				r.On("GetAccountByEmail", mock.Anything, "admin@acme.example.com").Return(testAccount, nil).Once()
			},
			wantErr: errs.ErrUnauthenticated,
		},
		{
			name:     "token generation error",
			email:    "admin@acme.example.com",
			password: rawPassword,
			setupMocks: func(r *AccountRepoMock, j *JwtMakerMock) {
				r.On("GetAccountByEmail", mock.Anything, "admin@acme.example.com").Return(testAccount, nil).Once()
				j.On("GenerateToken", "account-uuid", models.RoleCompanyAdmin, "acme-uuid").
					Return("", errors.New("token error")).Once()
			},
			wantErr: nil, // проверяется только наличие ошибки
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(AccountRepoMock)
			jwtMock := new(JwtMakerMock)
			svc := newService(repo, jwtMock, new(PublisherMock))

			tt.setupMocks(repo, jwtMock)

			token, role, err := svc.Login(context.Background(), tt.email, tt.password)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantToken == "":
				require.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.Equal(t, tt.wantRole, role)
			}

			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	validClaims := &customjwt.CustomClaims{
		Role:        models.RoleEmployee,
		CompanyUUID: "acme-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "account-uuid",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	t.Run("valid token yields actor", func(t *testing.T) {
		jwtMock := new(JwtMakerMock)
		svc := newService(new(AccountRepoMock), jwtMock, new(PublisherMock))
		jwtMock.On("ParseToken", "valid-token").Return(validClaims, nil).Once()

		actor, err := svc.ValidateToken(context.Background(), "valid-token")
		require.NoError(t, err)
		assert.Equal(t, "account-uuid", actor.UUID)
		assert.Equal(t, models.RoleEmployee, actor.Role)
		assert.Equal(t, "acme-uuid", actor.CompanyUUID)

		jwtMock.AssertExpectations(t)
	})

	t.Run("invalid token maps to unauthenticated", func(t *testing.T) {
		jwtMock := new(JwtMakerMock)
		svc := newService(new(AccountRepoMock), jwtMock, new(PublisherMock))
		jwtMock.On("ParseToken", "invalid-token").Return(nil, errors.New("invalid token")).Once()

		_, err := svc.ValidateToken(context.Background(), "invalid-token")
		require.ErrorIs(t, err, errs.ErrUnauthenticated)

		jwtMock.AssertExpectations(t)
	})
}

func TestAuthService_RequestPasswordReset(t *testing.T) {
	account := &models.Account{
		UUID:  "account-uuid",
		Email: "consultant@example.com",
		Role:  models.RoleConsultant,
	}

	t.Run("reset token issued and published", func(t *testing.T) {
		repo := new(AccountRepoMock)
		publisher := new(PublisherMock)
		svc := newService(repo, new(JwtMakerMock), publisher)

		repo.On("GetAccountByEmail", mock.Anything, "consultant@example.com").Return(account, nil).Once()
		repo.On("CreatePasswordReset", mock.Anything, "account-uuid", mock.AnythingOfType("time.Time")).
			Return("reset-token", nil).Once()
		publisher.On("Publish", "password", mock.MatchedBy(func(e models.NotificationEvent) bool {
			return e.Email == "consultant@example.com" && e.Message == "reset-token"
		})).Return(nil).Once()

		require.NoError(t, svc.RequestPasswordReset(context.Background(), "consultant@example.com"))

		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("unknown email does not reveal existence", func(t *testing.T) {
		repo := new(AccountRepoMock)
		svc := newService(repo, new(JwtMakerMock), new(PublisherMock))

		repo.On("GetAccountByEmail", mock.Anything, "nobody@example.com").Return(nil, errs.ErrNotFound).Once()

		require.NoError(t, svc.RequestPasswordReset(context.Background(), "nobody@example.com"))

		repo.AssertExpectations(t)
	})
}
