package quota

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

func (m *RepoMock) GetPlan(ctx context.Context, id int) (*models.Plan, error) {
	args := m.Called(ctx, id)
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Error(1)
}

func (m *RepoMock) GetQuota(ctx context.Context, userUID string, month, year int) (*models.UsageQuota, error) {
	args := m.Called(ctx, userUID, month, year)
	quota, _ := args.Get(0).(*models.UsageQuota)
	return quota, args.Error(1)
}

func (m *RepoMock) EnsureQuota(ctx context.Context, q models.UsageQuota) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *RepoMock) ConsumeQuota(ctx context.Context, userUID string, month, year int) (bool, error) {
	args := m.Called(ctx, userUID, month, year)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) AddAPIUsageToQuota(ctx context.Context, userUID string, month, year int, calls int, tokens int64, cost float64) error {
	args := m.Called(ctx, userUID, month, year, calls, tokens, cost)
	return args.Error(0)
}

func (m *RepoMock) TrackAPIUsage(ctx context.Context, u models.APIUsage) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *RepoMock) UsageTotalsForUser(ctx context.Context, userUID string) (int, int64, float64, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Get(1).(int64), args.Get(2).(float64), args.Error(3)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func activeSub() *models.Subscription {
	return &models.Subscription{ID: 3, UserUID: "uid-1", PlanID: 2, Status: models.SubscriptionStatusActive}
}

func TestConsume(t *testing.T) {
	plan := &models.Plan{ID: 2, PlanType: models.PlanTypeBasic, MaxAnalysesPerMonth: 50, IsActive: true}

	t.Run("quota available", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, newNoopLogger())

		repo.On("GetActiveSubscription", mock.Anything, "uid-1").Return(activeSub(), nil).Once()
		repo.On("GetPlan", mock.Anything, 2).Return(plan, nil).Once()
		repo.On("EnsureQuota", mock.Anything, mock.MatchedBy(func(q models.UsageQuota) bool {
			return q.SubscriptionID == 3 && q.AnalysesLimit == 50
		})).Return(nil).Once()
		repo.On("ConsumeQuota", mock.Anything, "uid-1", mock.AnythingOfType("int"), mock.AnythingOfType("int")).
			Return(true, nil).Once()

		got, err := svc.Consume(context.Background(), "uid-1", "grower1")
		require.NoError(t, err)
		assert.Equal(t, plan, got)
		repo.AssertExpectations(t)
	})

	t.Run("quota exhausted", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, newNoopLogger())

		repo.On("GetActiveSubscription", mock.Anything, "uid-1").Return(activeSub(), nil).Once()
		repo.On("GetPlan", mock.Anything, 2).Return(plan, nil).Once()
		repo.On("EnsureQuota", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("ConsumeQuota", mock.Anything, "uid-1", mock.AnythingOfType("int"), mock.AnythingOfType("int")).
			Return(false, nil).Once()

		_, err := svc.Consume(context.Background(), "uid-1", "grower1")
		assert.ErrorIs(t, err, ErrQuotaExceeded)
	})

	t.Run("no subscription", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, newNoopLogger())

		repo.On("GetActiveSubscription", mock.Anything, "uid-1").
			Return(nil, errors.New("not found")).Once()

		_, err := svc.Consume(context.Background(), "uid-1", "grower1")
		assert.ErrorIs(t, err, ErrNoSubscription)
		repo.AssertNotCalled(t, "ConsumeQuota")
	})
}

func TestRateLimitFor(t *testing.T) {
	t.Run("plan limit", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, newNoopLogger())

		repo.On("GetActiveSubscription", mock.Anything, "uid-1").Return(activeSub(), nil).Once()
		repo.On("GetPlan", mock.Anything, 2).
			Return(&models.Plan{ID: 2, APIRateLimitPerMinute: 120}, nil).Once()

		assert.Equal(t, 120, svc.RateLimitFor(context.Background(), "uid-1"))
	})

	t.Run("free fallback without subscription", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, newNoopLogger())

		repo.On("GetActiveSubscription", mock.Anything, "uid-1").
			Return(nil, errors.New("not found")).Once()

		assert.Equal(t, 10, svc.RateLimitFor(context.Background(), "uid-1"))
	})
}

func TestUsageStats(t *testing.T) {
	t.Run("quota present", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, newNoopLogger())

		repo.On("GetQuota", mock.Anything, "uid-1", mock.AnythingOfType("int"), mock.AnythingOfType("int")).
			Return(&models.UsageQuota{AnalysesUsed: 40, AnalysesLimit: 100}, nil).Once()
		repo.On("UsageTotalsForUser", mock.Anything, "uid-1").
			Return(80, int64(120000), 1.25, nil).Once()

		stats, err := svc.UsageStats(context.Background(), "uid-1")
		require.NoError(t, err)
		assert.Equal(t, 40, stats.AnalysesUsed)
		assert.Equal(t, 80, stats.TotalAPICalls)
		assert.Equal(t, int64(120000), stats.TotalTokens)
		assert.InDelta(t, 1.25, stats.TotalCost, 0.0001)
	})

	t.Run("missing quota is not fatal", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, newNoopLogger())

		repo.On("GetQuota", mock.Anything, "uid-1", mock.AnythingOfType("int"), mock.AnythingOfType("int")).
			Return(nil, errors.New("not found")).Once()
		repo.On("UsageTotalsForUser", mock.Anything, "uid-1").
			Return(0, int64(0), 0.0, nil).Once()

		stats, err := svc.UsageStats(context.Background(), "uid-1")
		require.NoError(t, err)
		assert.Zero(t, stats.AnalysesUsed)
	})

	t.Run("totals failure", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, newNoopLogger())

		repo.On("GetQuota", mock.Anything, "uid-1", mock.AnythingOfType("int"), mock.AnythingOfType("int")).
			Return(nil, errors.New("not found")).Once()
		repo.On("UsageTotalsForUser", mock.Anything, "uid-1").
			Return(0, int64(0), 0.0, errors.New("db down")).Once()

		_, err := svc.UsageStats(context.Background(), "uid-1")
		assert.Error(t, err)
	})
}
