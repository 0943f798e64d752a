package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/movibes/internal/http/middlewarectx"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/services/subscription"
	"github.com/magabrotheeeer/movibes/internal/storage"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Checkout(ctx context.Context, user *models.User, planID int64) (*models.PlanQuote, error) {
	args := m.Called(ctx, user, planID)
	q, _ := args.Get(0).(*models.PlanQuote)
	return q, args.Error(1)
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

func TestCheckoutHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	user := &models.User{ID: "s1", Role: models.RoleStudent, ProfileComplete: true}

	tests := []struct {
		name             string
		planID           string
		setupMock        func(*MockService, *MockNotices)
		expectedStatus   int
		expectedLocation string
		expectedBody     string
	}{
		{
			name:   "quote",
			planID: "3",
			setupMock: func(s *MockService, n *MockNotices) {
				s.On("Checkout", mock.Anything, user, int64(3)).Return(&models.PlanQuote{
					Plan:           models.PlanType{ID: 3, Name: "Premium Anual"},
					EffectivePrice: 23880,
					Savings:        5988,
				}, nil).Once()
				n.On("PopNotices", mock.Anything, "s1").Return(nil, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"effective_price":23880`,
		},
		{
			name:           "non numeric id",
			planID:         "abc",
			setupMock:      func(_ *MockService, _ *MockNotices) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid plan id"}`,
		},
		{
			name:   "unknown plan",
			planID: "99",
			setupMock: func(s *MockService, _ *MockNotices) {
				s.On("Checkout", mock.Anything, user, int64(99)).Return(nil, storage.ErrPlanNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"plan not found"}`,
		},
		{
			name:   "plan for the other role",
			planID: "5",
			setupMock: func(s *MockService, n *MockNotices) {
				s.On("Checkout", mock.Anything, user, int64(5)).Return(nil, subscription.ErrPlanRoleMismatch).Once()
				n.On("PushNotice", mock.Anything, "s1", mock.MatchedBy(func(n models.Notice) bool {
					return n.Level == models.NoticeError
				})).Return(nil).Once()
			},
			expectedStatus:   http.StatusFound,
			expectedLocation: "/assinatura/escolher-plano/",
		},
		{
			name:   "store error",
			planID: "3",
			setupMock: func(s *MockService, _ *MockNotices) {
				s.On("Checkout", mock.Anything, user, int64(3)).Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `internal error`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			notices := new(MockNotices)
			tt.setupMock(svc, notices)

			req := httptest.NewRequest(http.MethodGet, "/assinatura/checkout/"+tt.planID+"/", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("plan_id", tt.planID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithUser(ctx, user))

			rr := httptest.NewRecorder()
			New(logger, svc, notices).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedLocation, rr.Header().Get("Location"))
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
			notices.AssertExpectations(t)
		})
	}
}
