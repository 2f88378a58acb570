package middlewarectx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (authz.Actor, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(authz.Actor), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJWTMiddleware(t *testing.T) {
	actor := authz.Actor{UUID: "account-uuid", Role: models.RoleEmployee, CompanyUUID: "acme-uuid"}

	tests := []struct {
		name       string
		authHeader string
		setupMocks func(s *AuthServiceMock)
		wantStatus int
		wantActor  bool
	}{
		{
			name:       "valid token puts actor into context",
			authHeader: "Bearer valid-token",
			setupMocks: func(s *AuthServiceMock) {
				s.On("ValidateToken", mock.Anything, "valid-token").Return(actor, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantActor:  true,
		},
		{
			name:       "missing header",
			authHeader: "",
			setupMocks: func(_ *AuthServiceMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic dXNlcjpwYXNz",
			setupMocks: func(_ *AuthServiceMock) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer bad-token",
			setupMocks: func(s *AuthServiceMock) {
				s.On("ValidateToken", mock.Anything, "bad-token").
					Return(authz.Actor{}, errors.New("invalid token")).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			tt.setupMocks(authMock)

			var gotActor authz.Actor
			var gotOK bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotActor, gotOK = Actor(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := JWTMiddleware(authMock, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/formations", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantActor {
				require.True(t, gotOK)
				assert.Equal(t, actor, gotActor)
			}

			authMock.AssertExpectations(t)
		})
	}
}
