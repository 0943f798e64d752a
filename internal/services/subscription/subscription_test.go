package subscription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/movibes/internal/metrics"
	"github.com/magabrotheeeer/movibes/internal/models"
	"github.com/magabrotheeeer/movibes/internal/paymentprovider"
	"github.com/magabrotheeeer/movibes/internal/storage"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *RepoMock) CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) CancelSubscription(ctx context.Context, userID string, id int64, now time.Time) error {
	args := m.Called(ctx, userID, id, now)
	return args.Error(0)
}

func (m *RepoMock) GetSubscriptionByTransaction(ctx context.Context, transactionID string) (*models.Subscription, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) ActivateSubscription(ctx context.Context, id int64, transactionID string) (bool, error) {
	args := m.Called(ctx, id, transactionID)
	return args.Bool(0), args.Error(1)
}

// RenewSubscription отдаёт в build подписку-источник из ожиданий, как это делает хранилище под блокировкой.
func (m *RepoMock) RenewSubscription(ctx context.Context, sourceID int64,
	build func(models.Subscription) *models.Subscription) (*models.Subscription, error) {
	args := m.Called(ctx, sourceID)
	if src, ok := args.Get(0).(models.Subscription); ok {
		next := build(src)
		if next != nil {
			next.ID = src.ID + 100
		}
		return next, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) SetTransaction(ctx context.Context, id int64, transactionID string) error {
	args := m.Called(ctx, id, transactionID)
	return args.Error(0)
}

func (m *RepoMock) SetAccountTier(ctx context.Context, userID string, tier models.AccountTier) error {
	args := m.Called(ctx, userID, tier)
	return args.Error(0)
}

type CatalogMock struct {
	mock.Mock
}

func (m *CatalogMock) GetPlan(ctx context.Context, id int64) (*models.PlanType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlanType), args.Error(1)
}

func (m *CatalogMock) Quotes(ctx context.Context, role models.Role) ([]models.PlanQuote, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PlanQuote), args.Error(1)
}

func (m *CatalogMock) Quote(ctx context.Context, plan models.PlanType) (models.PlanQuote, error) {
	args := m.Called(ctx, plan)
	return args.Get(0).(models.PlanQuote), args.Error(1)
}

type PaymentMock struct {
	mock.Mock
}

func (m *PaymentMock) CreatePayment(ctx context.Context,
	req paymentprovider.CreatePaymentRequest) (*paymentprovider.CreatePaymentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.CreatePaymentResponse), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, event models.LifecycleEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *RepoMock
	catalog   *CatalogMock
	payments  *PaymentMock
	publisher *PublisherMock
	svc       *SubscriptionService
}

func newFixture(m *metrics.Metrics) *fixture {
	f := &fixture{
		repo:      new(RepoMock),
		catalog:   new(CatalogMock),
		payments:  new(PaymentMock),
		publisher: new(PublisherMock),
	}
	f.svc = NewSubscriptionService(f.repo, f.catalog, f.payments, f.publisher, m, newNoopLogger())
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.repo.AssertExpectations(t)
	f.catalog.AssertExpectations(t)
	f.payments.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetValue() == label {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func professional() *models.User {
	return &models.User{ID: "u-pro", Email: "pro@example.com", FirstName: "Ana",
		Role: models.RoleProfessional, ProfileComplete: true}
}

func student() *models.User {
	return &models.User{ID: "u-stu", Email: "stu@example.com", FirstName: "Bia",
		Role: models.RoleStudent, ProfileComplete: true}
}

func proMonthly() models.PlanType {
	return models.PlanType{ID: 3, Slug: "profissional-pro-mensal", Name: "Pro Mensal",
		TargetRole: models.RoleProfessional, Period: models.PeriodMonthly, BasePrice: 7990, Active: true}
}

func studentAnnual() models.PlanType {
	return models.PlanType{ID: 2, Slug: "aluno-premium-anual", Name: "Premium Anual",
		TargetRole: models.RoleStudent, Period: models.PeriodAnnual, BasePrice: 29990, Active: true}
}

func activeSub(userID string, plan models.PlanType) models.Subscription {
	return models.Subscription{
		ID: 1, UserID: userID, PlanTypeID: plan.ID, Plan: &plan,
		Status:    models.StatusActive,
		StartsAt:  testNow.AddDate(0, 0, -10),
		ExpiresAt: testNow.AddDate(0, 0, 20),
		AutoRenew: true,
	}
}

func kindIs(kind models.EventKind) any {
	return mock.MatchedBy(func(e models.LifecycleEvent) bool { return e.Kind == kind })
}

func TestSubscriptionService_PlanOptions(t *testing.T) {
	quotes := []models.PlanQuote{{Plan: proMonthly(), EffectivePrice: 7990}}

	tests := []struct {
		name       string
		user       *models.User
		mandatory  bool
		setupMocks func(f *fixture)
		wantErr    error
		wantLen    int
	}{
		{
			name:       "role not chosen",
			user:       &models.User{ID: "u"},
			setupMocks: func(_ *fixture) {},
			wantErr:    ErrRoleNotChosen,
		},
		{
			name:       "mandatory page for student",
			user:       student(),
			mandatory:  true,
			setupMocks: func(_ *fixture) {},
			wantErr:    ErrProfessionalOnly,
		},
		{
			name:      "already subscribed",
			user:      professional(),
			mandatory: true,
			setupMocks: func(f *fixture) {
				f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-pro").
					Return([]models.Subscription{activeSub("u-pro", proMonthly())}, nil).Once()
			},
			wantErr: ErrAlreadySubscribed,
		},
		{
			name:      "empty catalog",
			user:      professional(),
			mandatory: true,
			setupMocks: func(f *fixture) {
				f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-pro").Return([]models.Subscription{}, nil).Once()
				f.catalog.On("Quotes", mock.Anything, models.RoleProfessional).Return([]models.PlanQuote{}, nil).Once()
			},
			wantErr: ErrNoPlans,
		},
		{
			name:      "professional gets plans",
			user:      professional(),
			mandatory: true,
			setupMocks: func(f *fixture) {
				f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-pro").Return([]models.Subscription{}, nil).Once()
				f.catalog.On("Quotes", mock.Anything, models.RoleProfessional).Return(quotes, nil).Once()
			},
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			tt.setupMocks(f)

			got, err := f.svc.PlanOptions(context.Background(), tt.user, tt.mandatory)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Len(t, got, tt.wantLen)
			}
			f.assertExpectations(t)
		})
	}
}

func TestSubscriptionService_Checkout(t *testing.T) {
	plan := proMonthly()

	tests := []struct {
		name       string
		user       *models.User
		setupMocks func(f *fixture)
		wantErr    error
	}{
		{
			name: "unknown plan",
			user: professional(),
			setupMocks: func(f *fixture) {
				f.catalog.On("GetPlan", mock.Anything, int64(42)).Return(nil, storage.ErrPlanNotFound).Once()
			},
			wantErr: storage.ErrPlanNotFound,
		},
		{
			name: "plan for another role",
			user: student(),
			setupMocks: func(f *fixture) {
				f.catalog.On("GetPlan", mock.Anything, int64(42)).Return(&plan, nil).Once()
			},
			wantErr: ErrPlanRoleMismatch,
		},
		{
			name: "quote",
			user: professional(),
			setupMocks: func(f *fixture) {
				f.catalog.On("GetPlan", mock.Anything, int64(42)).Return(&plan, nil).Once()
				f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-pro").Return([]models.Subscription{}, nil).Once()
				f.catalog.On("Quote", mock.Anything, plan).
					Return(models.PlanQuote{Plan: plan, EffectivePrice: 7990}, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			tt.setupMocks(f)

			q, err := f.svc.Checkout(context.Background(), tt.user, 42)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, q)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(7990), q.EffectivePrice)
			}
			f.assertExpectations(t)
		})
	}
}

func TestSubscriptionService_Purchase_Succeeded(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newFixture(metrics.New(reg))
	plan := studentAnnual()

	f.catalog.On("GetPlan", mock.Anything, int64(2)).Return(&plan, nil).Once()
	f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-stu").Return([]models.Subscription{}, nil).Once()
	f.payments.On("CreatePayment", mock.Anything, paymentprovider.CreatePaymentRequest{
		UserID: "u-stu", PlanSlug: plan.Slug, Amount: 29990, Description: plan.Name,
	}).Return(&paymentprovider.CreatePaymentResponse{
		ID: "mock_tx", Status: paymentprovider.StatusSucceeded, Method: paymentprovider.MethodMock,
	}, nil).Once()
	f.repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
		return s.Status == models.StatusActive &&
			s.StartsAt.Equal(testNow) &&
			s.ExpiresAt.Equal(testNow.AddDate(1, 0, 0)) &&
			s.ExternalTransactionID == "mock_tx" &&
			s.AmountPaid == 29990 &&
			s.AutoRenew
	})).Return(int64(7), nil).Once()
	f.repo.On("SetAccountTier", mock.Anything, "u-stu", models.TierPremium).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, kindIs(models.EventPurchased)).Return(nil).Once()

	sub, err := f.svc.Purchase(context.Background(), student(), 2, true)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sub.ID)
	assert.Equal(t, models.StatusActive, sub.Status)
	assert.InDelta(t, 1.0, counterValue(t, reg, "movibes_subscription_transitions_total", "purchase"), 0.001)
	f.assertExpectations(t)
}

func TestSubscriptionService_Purchase_Pending(t *testing.T) {
	f := newFixture(nil)
	plan := proMonthly()

	f.catalog.On("GetPlan", mock.Anything, int64(3)).Return(&plan, nil).Once()
	f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-pro").Return([]models.Subscription{}, nil).Once()
	f.payments.On("CreatePayment", mock.Anything, mock.Anything).Return(&paymentprovider.CreatePaymentResponse{
		ID: "mock_pending", Status: paymentprovider.StatusPending,
	}, nil).Once()
	f.repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
		return s.Status == models.StatusPending && s.ExternalTransactionID == "mock_pending"
	})).Return(int64(8), nil).Once()

	sub, err := f.svc.Purchase(context.Background(), professional(), 3, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sub.Status)
	f.assertExpectations(t)
}

func TestSubscriptionService_Purchase_Errors(t *testing.T) {
	plan := proMonthly()

	tests := []struct {
		name       string
		setupMocks func(f *fixture)
		wantErr    error
	}{
		{
			name: "already subscribed",
			setupMocks: func(f *fixture) {
				f.catalog.On("GetPlan", mock.Anything, int64(3)).Return(&plan, nil).Once()
				f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-pro").
					Return([]models.Subscription{activeSub("u-pro", plan)}, nil).Once()
			},
			wantErr: ErrAlreadySubscribed,
		},
		{
			name: "previous purchase awaiting payment",
			setupMocks: func(f *fixture) {
				pending := activeSub("u-pro", plan)
				pending.Status = models.StatusPending
				f.catalog.On("GetPlan", mock.Anything, int64(3)).Return(&plan, nil).Once()
				f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-pro").
					Return([]models.Subscription{pending}, nil).Once()
			},
			wantErr: ErrPurchasePending,
		},
		{
			name: "payment declined",
			setupMocks: func(f *fixture) {
				f.catalog.On("GetPlan", mock.Anything, int64(3)).Return(&plan, nil).Once()
				f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-pro").Return([]models.Subscription{}, nil).Once()
				f.payments.On("CreatePayment", mock.Anything, mock.Anything).Return(&paymentprovider.CreatePaymentResponse{
					ID: "mock_x", Status: paymentprovider.StatusCanceled,
				}, nil).Once()
			},
			wantErr: ErrPaymentDeclined,
		},
		{
			name: "storage error",
			setupMocks: func(f *fixture) {
				f.catalog.On("GetPlan", mock.Anything, int64(3)).Return(&plan, nil).Once()
				f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-pro").Return(nil, errors.New("db error")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			tt.setupMocks(f)

			sub, err := f.svc.Purchase(context.Background(), professional(), 3, true)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Nil(t, sub)
			f.assertExpectations(t)
		})
	}
}

func TestSubscriptionService_Cancel(t *testing.T) {
	t.Run("no active subscription", func(t *testing.T) {
		f := newFixture(nil)
		cancelled := activeSub("u-pro", proMonthly())
		cancelled.UserCancelled = true
		f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-pro").
			Return([]models.Subscription{cancelled}, nil).Once()

		_, err := f.svc.Cancel(context.Background(), professional())
		assert.ErrorIs(t, err, ErrNoActiveSubscription)
		f.assertExpectations(t)
	})

	t.Run("cancels active subscription", func(t *testing.T) {
		f := newFixture(nil)
		sub := activeSub("u-pro", proMonthly())
		f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-pro").Return([]models.Subscription{sub}, nil).Once()
		f.repo.On("CancelSubscription", mock.Anything, "u-pro", int64(1), testNow).Return(nil).Once()
		f.publisher.On("Publish", mock.Anything, kindIs(models.EventCancelled)).Return(errors.New("broker down")).Once()

		got, err := f.svc.Cancel(context.Background(), professional())
		require.NoError(t, err)
		assert.True(t, got.UserCancelled)
		assert.False(t, got.AutoRenew)
		require.NotNil(t, got.CancelledAt)
		assert.Equal(t, testNow, *got.CancelledAt)
		assert.Equal(t, models.StatusActive, got.Status)
		assert.Equal(t, sub.ExpiresAt, got.ExpiresAt)
		f.assertExpectations(t)
	})
}

func TestSubscriptionService_History(t *testing.T) {
	f := newFixture(nil)
	plan := proMonthly()
	current := activeSub("u-pro", plan)
	current.ID = 2
	old := activeSub("u-pro", plan)
	old.Status = models.StatusExpired
	old.StartsAt = testNow.AddDate(0, -2, 0)
	old.ExpiresAt = testNow.AddDate(0, -1, 0)
	f.repo.On("ListSubscriptionsByUser", mock.Anything, "u-pro").
		Return([]models.Subscription{current, old}, nil).Once()

	h, err := f.svc.History(context.Background(), professional())
	require.NoError(t, err)
	require.NotNil(t, h.Current)
	assert.Equal(t, int64(2), h.Current.ID)
	require.Len(t, h.Entries, 2)
	assert.True(t, h.Entries[0].Active)
	assert.Equal(t, 1, h.Entries[0].RemainingMonths)
	assert.False(t, h.Entries[1].Active)
	assert.Equal(t, 0, h.Entries[1].RemainingMonths)
	f.assertExpectations(t)
}

func TestSubscriptionService_ConfirmPayment(t *testing.T) {
	plan := studentAnnual()
	from := int64(1)
	pending := func() *models.Subscription {
		return &models.Subscription{ID: 5, UserID: "u-stu", Plan: &plan, Status: models.StatusPending,
			ExternalTransactionID: "tx-1", RenewedFromID: &from}
	}

	tests := []struct {
		name          string
		setupMocks    func(f *fixture)
		wantErr       error
		wantActivated bool
	}{
		{
			name: "unknown transaction",
			setupMocks: func(f *fixture) {
				f.repo.On("GetSubscriptionByTransaction", mock.Anything, "tx-1").
					Return(nil, storage.ErrSubscriptionNotFound).Once()
			},
			wantErr: storage.ErrSubscriptionNotFound,
		},
		{
			name: "already active",
			setupMocks: func(f *fixture) {
				f.repo.On("GetSubscriptionByTransaction", mock.Anything, "tx-1").Return(pending(), nil).Once()
				f.repo.On("ActivateSubscription", mock.Anything, int64(5), "tx-1").Return(false, nil).Once()
			},
		},
		{
			name: "activates renewal",
			setupMocks: func(f *fixture) {
				f.repo.On("GetSubscriptionByTransaction", mock.Anything, "tx-1").Return(pending(), nil).Once()
				f.repo.On("ActivateSubscription", mock.Anything, int64(5), "tx-1").Return(true, nil).Once()
				f.repo.On("GetUserByID", mock.Anything, "u-stu").Return(student(), nil).Once()
				f.repo.On("SetAccountTier", mock.Anything, "u-stu", models.TierPremium).Return(nil).Once()
				f.publisher.On("Publish", mock.Anything, kindIs(models.EventRenewed)).Return(nil).Once()
			},
			wantActivated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			tt.setupMocks(f)

			sub, activated, err := f.svc.ConfirmPayment(context.Background(), "tx-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantActivated, activated)
				if tt.wantActivated {
					assert.Equal(t, models.StatusActive, sub.Status)
				}
			}
			f.assertExpectations(t)
		})
	}
}

func TestSubscriptionService_Renew(t *testing.T) {
	plan := proMonthly()
	source := activeSub("u-pro", plan)

	tests := []struct {
		name       string
		setupMocks func(f *fixture)
		wantNil    bool
		wantErr    error
		wantStatus models.SubscriptionStatus
	}{
		{
			name: "not renewable",
			setupMocks: func(f *fixture) {
				cancelled := source
				cancelled.UserCancelled = true
				f.repo.On("RenewSubscription", mock.Anything, int64(1)).Return(cancelled, nil).Once()
			},
			wantNil: true,
		},
		{
			name: "already renewed",
			setupMocks: func(f *fixture) {
				f.repo.On("RenewSubscription", mock.Anything, int64(1)).Return(nil, nil).Once()
			},
			wantNil: true,
		},
		{
			name: "payment succeeded",
			setupMocks: func(f *fixture) {
				f.repo.On("RenewSubscription", mock.Anything, int64(1)).Return(source, nil).Once()
				f.payments.On("CreatePayment", mock.Anything, mock.Anything).Return(&paymentprovider.CreatePaymentResponse{
					ID: "mock_r", Status: paymentprovider.StatusSucceeded,
				}, nil).Once()
				f.repo.On("ActivateSubscription", mock.Anything, int64(101), "mock_r").Return(true, nil).Once()
				f.repo.On("GetUserByID", mock.Anything, "u-pro").Return(professional(), nil).Once()
				f.publisher.On("Publish", mock.Anything, kindIs(models.EventRenewed)).Return(nil).Once()
			},
			wantStatus: models.StatusActive,
		},
		{
			name: "payment pending",
			setupMocks: func(f *fixture) {
				f.repo.On("RenewSubscription", mock.Anything, int64(1)).Return(source, nil).Once()
				f.payments.On("CreatePayment", mock.Anything, mock.Anything).Return(&paymentprovider.CreatePaymentResponse{
					ID: "mock_p", Status: paymentprovider.StatusPending,
				}, nil).Once()
				f.repo.On("SetTransaction", mock.Anything, int64(101), "mock_p").Return(nil).Once()
			},
			wantStatus: models.StatusPending,
		},
		{
			name: "payment declined",
			setupMocks: func(f *fixture) {
				f.repo.On("RenewSubscription", mock.Anything, int64(1)).Return(source, nil).Once()
				f.payments.On("CreatePayment", mock.Anything, mock.Anything).Return(&paymentprovider.CreatePaymentResponse{
					ID: "mock_c", Status: paymentprovider.StatusCanceled,
				}, nil).Once()
			},
			wantErr:    ErrPaymentDeclined,
			wantStatus: models.StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)
			tt.setupMocks(f)

			next, err := f.svc.Renew(context.Background(), 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, next)
			} else {
				require.NotNil(t, next)
				assert.Equal(t, tt.wantStatus, next.Status)
				assert.Equal(t, source.ExpiresAt, next.StartsAt)
				require.NotNil(t, next.RenewedFromID)
				assert.Equal(t, int64(1), *next.RenewedFromID)
			}
			f.assertExpectations(t)
		})
	}
}
