package create

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, actor authz.Actor, companyUUID string, req models.DummyInvitation) (string, error) {
	args := m.Called(ctx, actor, companyUUID, req)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	admin := authz.Actor{UUID: "admin-uuid", Role: models.RoleCompanyAdmin, CompanyUUID: "acme-uuid"}

	tests := []struct {
		name           string
		requestBody    any
		withActor      bool
		setupMocks     func(s *ServiceMock)
		wantStatusCode int
		wantStatus     string
	}{
		{
			name:        "valid invitation",
			requestBody: models.DummyInvitation{Email: "newhire@acme.example.com", Role: models.RoleEmployee},
			withActor:   true,
			setupMocks: func(s *ServiceMock) {
				s.On("Create", mock.Anything, admin, "acme-uuid",
					models.DummyInvitation{Email: "newhire@acme.example.com", Role: models.RoleEmployee}).
					Return("token-123", nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			withActor:      true,
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
		},
		{
			name:           "validation error - bad role",
			requestBody:    models.DummyInvitation{Email: "newhire@acme.example.com", Role: "superadmin"},
			withActor:      true,
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
		},
		{
			name:           "missing actor",
			requestBody:    models.DummyInvitation{Email: "newhire@acme.example.com", Role: models.RoleEmployee},
			withActor:      false,
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
		},
		{
			name:        "seat limit conflict from service",
			requestBody: models.DummyInvitation{Email: "newhire@acme.example.com", Role: models.RoleEmployee},
			withActor:   true,
			setupMocks: func(s *ServiceMock) {
				s.On("Create", mock.Anything, admin, "acme-uuid", mock.Anything).
					Return("", errs.ErrConflict).Once()
			},
			wantStatusCode: http.StatusConflict,
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			tt.setupMocks(serviceMock)
			handler := New(newNoopLogger(), serviceMock)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(v)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/companies/acme-uuid/invitations", bytes.NewReader(bodyBytes))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("uuid", "acme-uuid")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.withActor {
				ctx = context.WithValue(ctx, middlewarectx.ActorKey, admin)
			}
			req = req.WithContext(ctx)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatusCode, rr.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp["status"])

			serviceMock.AssertExpectations(t)
		})
	}
}
