package selectrole

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/movibes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/movibes/internal/lib/gate"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/services/account"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ChooseRole(ctx context.Context, user *models.User, role models.Role) error {
	args := m.Called(ctx, user, role)
	return args.Error(0)
}

type MockNotices struct {
	mock.Mock
}

func (m *MockNotices) PushNotice(ctx context.Context, userID string, n models.Notice) error {
	args := m.Called(ctx, userID, n)
	return args.Error(0)
}

func (m *MockNotices) PopNotices(ctx context.Context, userID string) ([]models.Notice, error) {
	args := m.Called(ctx, userID)
	n, _ := args.Get(0).([]models.Notice)
	return n, args.Error(1)
}

func TestSelectRoleHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name             string
		method           string
		user             *models.User
		body             string
		setupMock        func(*MockService, *MockNotices)
		expectedStatus   int
		expectedLocation string
		expectedBody     string
	}{
		{
			name:           "anonymous",
			method:         http.MethodGet,
			setupMock:      func(_ *MockService, _ *MockNotices) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "get lists roles with the queued notice",
			method: http.MethodGet,
			user:   &models.User{ID: "u1"},
			setupMock: func(_ *MockService, n *MockNotices) {
				n.On("PopNotices", mock.Anything, "u1").
					Return([]models.Notice{gate.Notice(gate.ChooseRole)}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"notices":[{"level":"info","text":"Escolha o tipo de perfil para continuar."}],"roles":["student","professional"]`,
		},
		{
			name:             "role already chosen goes to its profile form",
			method:           http.MethodGet,
			user:             &models.User{ID: "u1", Role: models.RoleStudent},
			setupMock:        func(_ *MockService, _ *MockNotices) {},
			expectedStatus:   http.StatusFound,
			expectedLocation: "/accounts/complete-profile/",
		},
		{
			name:   "choose professional",
			method: http.MethodPost,
			user:   &models.User{ID: "u1"},
			body:   `{"role":"professional"}`,
			setupMock: func(s *MockService, _ *MockNotices) {
				s.On("ChooseRole", mock.Anything, mock.Anything, models.RoleProfessional).Return(nil).Once()
			},
			expectedStatus:   http.StatusSeeOther,
			expectedLocation: "/accounts/complete-profile-profissional/",
		},
		{
			name:           "invalid role",
			method:         http.MethodPost,
			user:           &models.User{ID: "u1"},
			body:           `{"role":"teacher"}`,
			setupMock:      func(_ *MockService, _ *MockNotices) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Role must be one of: student professional`,
		},
		{
			name:   "concurrent choice already stored",
			method: http.MethodPost,
			user:   &models.User{ID: "u1"},
			body:   `{"role":"student"}`,
			setupMock: func(s *MockService, n *MockNotices) {
				s.On("ChooseRole", mock.Anything, mock.Anything, models.RoleStudent).Return(account.ErrRoleAlreadyChosen).Once()
				n.On("PushNotice", mock.Anything, "u1", mock.Anything).Return(nil).Once()
			},
			expectedStatus:   http.StatusSeeOther,
			expectedLocation: "/accounts/complete-profile/",
		},
		{
			name:   "store error",
			method: http.MethodPost,
			user:   &models.User{ID: "u1"},
			body:   `{"role":"student"}`,
			setupMock: func(s *MockService, _ *MockNotices) {
				s.On("ChooseRole", mock.Anything, mock.Anything, models.RoleStudent).Return(errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			notices := new(MockNotices)
			tt.setupMock(svc, notices)
			handler := New(logger, svc, notices)

			req := httptest.NewRequest(tt.method, "/accounts/select-profile-type/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.user != nil {
				req = req.WithContext(middlewarectx.WithUser(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedLocation, rr.Header().Get("Location"))
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
			notices.AssertExpectations(t)
		})
	}
}
