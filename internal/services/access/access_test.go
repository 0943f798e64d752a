package access

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/movibes/internal/lib/gate"
	"github.com/magabrotheeeer/movibes/internal/models"
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

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestAccessService_NextAction(t *testing.T) {
	now := time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)
	active := models.Subscription{ID: 1, Status: models.StatusActive,
		StartsAt: now.AddDate(0, -1, 0), ExpiresAt: now.AddDate(0, 1, 0)}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		want       gate.Action
		wantErr    error
	}{
		{
			name: "new user chooses role without loading subscriptions",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil).Once()
			},
			want: gate.ChooseRole,
		},
		{
			name: "student with complete profile",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByID", mock.Anything, "u1").
					Return(&models.User{ID: "u1", Role: models.RoleStudent, ProfileComplete: true}, nil).Once()
			},
			want: gate.Allow,
		},
		{
			name: "professional without subscription",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByID", mock.Anything, "u1").
					Return(&models.User{ID: "u1", Role: models.RoleProfessional, ProfileComplete: true}, nil).Once()
				r.On("ListSubscriptionsByUser", mock.Anything, "u1").Return([]models.Subscription{}, nil).Once()
			},
			want: gate.ChooseMandatoryPlan,
		},
		{
			name: "professional with subscription",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByID", mock.Anything, "u1").
					Return(&models.User{ID: "u1", Role: models.RoleProfessional, ProfileComplete: true}, nil).Once()
				r.On("ListSubscriptionsByUser", mock.Anything, "u1").Return([]models.Subscription{active}, nil).Once()
			},
			want: gate.Allow,
		},
		{
			name: "user lookup fails",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByID", mock.Anything, "u1").Return(nil, storage.ErrUserNotFound).Once()
			},
			wantErr: storage.ErrUserNotFound,
		},
		{
			name: "subscriptions lookup fails",
			setupMocks: func(r *RepoMock) {
				r.On("GetUserByID", mock.Anything, "u1").
					Return(&models.User{ID: "u1", Role: models.RoleProfessional, ProfileComplete: true}, nil).Once()
				r.On("ListSubscriptionsByUser", mock.Anything, "u1").Return(nil, errors.New("db error")).Once()
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)
			svc := NewAccessService(repo, nil, newNoopLogger())
			svc.now = func() time.Time { return now }

			action, user, err := svc.NextAction(context.Background(), "u1")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, action)
				assert.Equal(t, "u1", user.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}
