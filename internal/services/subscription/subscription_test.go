package subscription

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

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListActivePlans(ctx context.Context) ([]*models.Plan, error) {
	args := m.Called(ctx)
	plans, _ := args.Get(0).([]*models.Plan)
	return plans, args.Error(1)
}

func (m *RepoMock) GetPlan(ctx context.Context, id int) (*models.Plan, error) {
	args := m.Called(ctx, id)
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Error(1)
}

func (m *RepoMock) GetPlanByType(ctx context.Context, planType string) (*models.Plan, error) {
	args := m.Called(ctx, planType)
	plan, _ := args.Get(0).(*models.Plan)
	return plan, args.Error(1)
}

func (m *RepoMock) CreateSubscriptionWithQuota(ctx context.Context, sub models.Subscription, quota models.UsageQuota) (int, error) {
	args := m.Called(ctx, sub, quota)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	sub, _ := args.Get(0).(*models.Subscription)
	return sub, args.Error(1)
}

func (m *RepoMock) CancelSubscription(ctx context.Context, userUID string, cancelledAt time.Time) (int, error) {
	args := m.Called(ctx, userUID, cancelledAt)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListSubscriptions(ctx context.Context, userUID string, limit, offset int) ([]*models.Subscription, error) {
	args := m.Called(ctx, userUID, limit, offset)
	subs, _ := args.Get(0).([]*models.Subscription)
	return subs, args.Error(1)
}

func (m *RepoMock) CreatePaymentRecord(ctx context.Context, p models.PaymentRecord) (int, error) {
	args := m.Called(ctx, p)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListPaymentsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.PaymentRecord, error) {
	args := m.Called(ctx, userUID, limit, offset)
	payments, _ := args.Get(0).([]*models.PaymentRecord)
	return payments, args.Error(1)
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

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func premiumPlan() *models.Plan {
	return &models.Plan{
		ID:                  2,
		Name:                "Premium",
		PlanType:            models.PlanTypePremium,
		MonthlyPrice:        799,
		QuarterlyPrice:      2199,
		YearlyPrice:         7999,
		MaxAnalysesPerMonth: 500,
		IsActive:            true,
	}
}

func TestSubscribe_YearlyPeriodAndPrice(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	plan := premiumPlan()
	repo.On("GetPlan", mock.Anything, 2).Return(plan, nil).Once()
	repo.On("CreateSubscriptionWithQuota", mock.Anything,
		mock.MatchedBy(func(sub models.Subscription) bool {
			days := sub.EndDate.Sub(sub.StartDate).Hours() / 24
			return sub.Status == models.SubscriptionStatusActive &&
				sub.AmountPaid == plan.YearlyPrice &&
				days == 365 &&
				sub.NextBillingDate.Equal(sub.EndDate)
		}),
		mock.MatchedBy(func(q models.UsageQuota) bool {
			return q.AnalysesLimit == plan.MaxAnalysesPerMonth && q.UserUID == "uid-1"
		})).Return(10, nil).Once()
	repo.On("CreatePaymentRecord", mock.Anything, mock.MatchedBy(func(p models.PaymentRecord) bool {
		return p.Amount == plan.YearlyPrice && p.SubscriptionID == 10 &&
			p.Status == models.PaymentStatusCompleted
	})).Return(1, nil).Once()
	cache.On("Invalidate", "usage:uid-1").Return(nil).Once()

	sub, err := svc.Subscribe(context.Background(), "uid-1", "grower1", models.DummySubscribe{
		PlanID:        2,
		BillingCycle:  models.BillingCycleYearly,
		PaymentMethod: "card",
		TransactionID: "txn-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, sub.ID)
	assert.Equal(t, plan.YearlyPrice, sub.AmountPaid)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSubscribe_MonthlyPeriodAndPrice(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	plan := premiumPlan()
	repo.On("GetPlan", mock.Anything, 2).Return(plan, nil).Once()
	repo.On("CreateSubscriptionWithQuota", mock.Anything,
		mock.MatchedBy(func(sub models.Subscription) bool {
			days := sub.EndDate.Sub(sub.StartDate).Hours() / 24
			return sub.AmountPaid == 799.0 && days == 30
		}),
		mock.Anything).Return(11, nil).Once()
	repo.On("CreatePaymentRecord", mock.Anything, mock.MatchedBy(func(p models.PaymentRecord) bool {
		return p.Amount == 799.0
	})).Return(2, nil).Once()
	cache.On("Invalidate", "usage:uid-1").Return(nil).Once()

	sub, err := svc.Subscribe(context.Background(), "uid-1", "grower1", models.DummySubscribe{
		PlanID:        2,
		BillingCycle:  models.BillingCycleMonthly,
		PaymentMethod: "card",
		TransactionID: "txn-2",
	})
	require.NoError(t, err)
	assert.Equal(t, 799.0, sub.AmountPaid)

	repo.AssertExpectations(t)
}

func TestSubscribe_PaymentRecordFailureSurfaces(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	repo.On("GetPlan", mock.Anything, 2).Return(premiumPlan(), nil).Once()
	repo.On("CreateSubscriptionWithQuota", mock.Anything, mock.Anything, mock.Anything).
		Return(12, nil).Once()
	repo.On("CreatePaymentRecord", mock.Anything, mock.Anything).
		Return(0, errors.New("ledger insert failed")).Once()

	_, err := svc.Subscribe(context.Background(), "uid-1", "grower1", models.DummySubscribe{
		PlanID:        2,
		BillingCycle:  models.BillingCycleMonthly,
		PaymentMethod: "card",
		TransactionID: "txn-3",
	})
	require.Error(t, err, "a verified payment must not vanish from the ledger silently")
	assert.ErrorContains(t, err, "record payment")

	repo.AssertExpectations(t)
}

func TestSubscribe_InactivePlanRejected(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	retired := premiumPlan()
	retired.IsActive = false
	repo.On("GetPlan", mock.Anything, 2).Return(retired, nil).Once()

	_, err := svc.Subscribe(context.Background(), "uid-1", "grower1", models.DummySubscribe{
		PlanID:        2,
		BillingCycle:  models.BillingCycleMonthly,
		PaymentMethod: "card",
		TransactionID: "txn-1",
	})
	assert.ErrorIs(t, err, ErrPlanNotFound)
	repo.AssertNotCalled(t, "CreateSubscriptionWithQuota")
}

func TestSubscribeFree_NoPaymentRecord(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	free := &models.Plan{ID: 1, PlanType: models.PlanTypeFree, MaxAnalysesPerMonth: 5, IsActive: true}
	repo.On("GetPlanByType", mock.Anything, models.PlanTypeFree).Return(free, nil).Once()
	repo.On("CreateSubscriptionWithQuota", mock.Anything,
		mock.MatchedBy(func(sub models.Subscription) bool {
			return sub.AmountPaid == 0 && sub.BillingCycle == models.BillingCycleMonthly
		}),
		mock.MatchedBy(func(q models.UsageQuota) bool {
			return q.AnalysesLimit == 5
		})).Return(1, nil).Once()

	err := svc.SubscribeFree(context.Background(), "uid-1", "grower1")
	require.NoError(t, err)
	repo.AssertNotCalled(t, "CreatePaymentRecord")
}

func TestCancel(t *testing.T) {
	t.Run("active subscription cancelled", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		repo.On("CancelSubscription", mock.Anything, "uid-1", mock.AnythingOfType("time.Time")).
			Return(1, nil).Once()
		cache.On("Invalidate", "usage:uid-1").Return(nil).Once()

		assert.NoError(t, svc.Cancel(context.Background(), "uid-1"))
		repo.AssertExpectations(t)
	})

	t.Run("nothing to cancel", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		repo.On("CancelSubscription", mock.Anything, "uid-1", mock.AnythingOfType("time.Time")).
			Return(0, nil).Once()

		assert.ErrorIs(t, svc.Cancel(context.Background(), "uid-1"), ErrNoActiveSubscription)
	})
}

func TestListPlans_CacheHitSkipsRepository(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, newNoopLogger())

	cache.On("Get", "plans:active", mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(1).(*[]*models.Plan)
			*out = []*models.Plan{premiumPlan()}
		}).Return(true, nil).Once()

	plans, err := svc.ListPlans(context.Background())
	require.NoError(t, err)
	assert.Len(t, plans, 1)
	repo.AssertNotCalled(t, "ListActivePlans")
}

func TestUsage(t *testing.T) {
	t.Run("existing quota", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		repo.On("GetQuota", mock.Anything, "uid-1", mock.AnythingOfType("int"), mock.AnythingOfType("int")).
			Return(&models.UsageQuota{AnalysesUsed: 25, AnalysesLimit: 100}, nil).Once()

		summary, err := svc.Usage(context.Background(), "uid-1")
		require.NoError(t, err)
		assert.Equal(t, 75, summary.Remaining)
		assert.InDelta(t, 25.0, summary.UsagePercent, 0.001)
	})

	t.Run("unlimited plan", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		repo.On("GetQuota", mock.Anything, "uid-1", mock.AnythingOfType("int"), mock.AnythingOfType("int")).
			Return(&models.UsageQuota{AnalysesUsed: 500, AnalysesLimit: 0}, nil).Once()

		summary, err := svc.Usage(context.Background(), "uid-1")
		require.NoError(t, err)
		assert.Equal(t, -1, summary.Remaining)
	})

	t.Run("quota created lazily from subscription", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		repo.On("GetQuota", mock.Anything, "uid-1", mock.AnythingOfType("int"), mock.AnythingOfType("int")).
			Return(nil, errors.New("not found")).Once()
		repo.On("GetActiveSubscription", mock.Anything, "uid-1").
			Return(&models.Subscription{ID: 3, Username: "grower1", PlanID: 2}, nil).Once()
		repo.On("GetPlan", mock.Anything, 2).Return(premiumPlan(), nil).Once()
		repo.On("EnsureQuota", mock.Anything, mock.MatchedBy(func(q models.UsageQuota) bool {
			return q.SubscriptionID == 3 && q.AnalysesLimit == 100
		})).Return(nil).Once()

		summary, err := svc.Usage(context.Background(), "uid-1")
		require.NoError(t, err)
		assert.Equal(t, 100, summary.Remaining)
		repo.AssertExpectations(t)
	})

	t.Run("no subscription at all", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := New(repo, cache, newNoopLogger())

		repo.On("GetQuota", mock.Anything, "uid-1", mock.AnythingOfType("int"), mock.AnythingOfType("int")).
			Return(nil, errors.New("not found")).Once()
		repo.On("GetActiveSubscription", mock.Anything, "uid-1").
			Return(nil, errors.New("not found")).Once()

		_, err := svc.Usage(context.Background(), "uid-1")
		assert.ErrorIs(t, err, ErrNoActiveSubscription)
	})
}
