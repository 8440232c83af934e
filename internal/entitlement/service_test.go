package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buddahbase/buddahbot/internal/store"
)

// fakeStore is an in-memory Store for gate tests.
type fakeStore struct {
	subs    map[int64]*store.Subscriber
	failing bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{subs: make(map[int64]*store.Subscriber)}
}

var errStoreDown = errors.New("store unavailable")

func (f *fakeStore) GetSubscriber(_ context.Context, id int64) (*store.Subscriber, error) {
	if f.failing {
		return nil, errStoreDown
	}
	sub, ok := f.subs[id]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeStore) CreateSubscriber(_ context.Context, sub *store.Subscriber) error {
	if f.failing {
		return errStoreDown
	}
	cp := *sub
	f.subs[sub.ID] = &cp
	return nil
}

func (f *fakeStore) UpdatePayment(_ context.Context, id int64, link, method string) error {
	if f.failing {
		return errStoreDown
	}
	f.subs[id].PaymentLink = &link
	f.subs[id].PaymentMethod = &method
	return nil
}

func (f *fakeStore) Activate(_ context.Context, id int64, method string, until time.Time) error {
	if f.failing {
		return errStoreDown
	}
	sub, ok := f.subs[id]
	if !ok {
		sub = &store.Subscriber{ID: id}
		f.subs[id] = sub
	}
	end := store.FormatStoreTime(until)
	sub.Status = store.StatusActive
	sub.Payed = "true"
	sub.SubscriptionToDate = &end
	sub.PaymentMethod = &method
	sub.DailyRequests = 0
	return nil
}

func (f *fakeStore) SaveInviteLink(_ context.Context, id int64, link string) error {
	if f.failing {
		return errStoreDown
	}
	f.subs[id].PaymentLink = &link
	return nil
}

func (f *fakeStore) IncrementDailyCount(_ context.Context, id int64) error {
	if f.failing {
		return errStoreDown
	}
	sub, ok := f.subs[id]
	if !ok {
		return errors.New("subscriber not found")
	}
	sub.DailyRequests++
	return nil
}

func (f *fakeStore) ResetAllDailyCounts(context.Context) error {
	if f.failing {
		return errStoreDown
	}
	for _, sub := range f.subs {
		sub.DailyRequests = 0
	}
	return nil
}

func (f *fakeStore) Deactivate(_ context.Context, id int64) error {
	if f.failing {
		return errStoreDown
	}
	f.subs[id].Status = store.StatusInactive
	return nil
}

func (f *fakeStore) AllSubscribers(context.Context) ([]store.Subscriber, error) {
	if f.failing {
		return nil, errStoreDown
	}
	var out []store.Subscriber
	for _, sub := range f.subs {
		out = append(out, *sub)
	}
	return out, nil
}

func (f *fakeStore) ActiveSubscribers(context.Context) ([]store.Subscriber, error) {
	if f.failing {
		return nil, errStoreDown
	}
	var out []store.Subscriber
	for _, sub := range f.subs {
		if sub.Status == store.StatusActive {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchMaterials(context.Context, string, int) ([]store.Material, error) {
	return nil, nil
}

func (f *fakeStore) AddMaterial(context.Context, *store.Material) error {
	return nil
}

func newTestService(fs *fakeStore, now time.Time) *Service {
	svc := NewService(fs, nil, 30, 5)
	svc.now = func() time.Time { return now }
	return svc
}

func TestIsEntitledExpiredRegardlessOfStatus(t *testing.T) {
	fs := newFakeStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Stale row: status flag still active but expiry has passed.
	past := store.FormatStoreTime(now.Add(-time.Hour))
	fs.subs[42] = &store.Subscriber{ID: 42, Status: store.StatusActive, SubscriptionToDate: &past}

	svc := newTestService(fs, now)
	assert.False(t, svc.IsEntitled(context.Background(), 42))
}

func TestIsEntitledNegativeCases(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := store.FormatStoreTime(now.Add(24 * time.Hour))

	tests := []struct {
		name string
		sub  *store.Subscriber
	}{
		{name: "absent row", sub: nil},
		{name: "inactive status", sub: &store.Subscriber{ID: 42, Status: store.StatusInactive, SubscriptionToDate: &future}},
		{name: "nil expiry", sub: &store.Subscriber{ID: 42, Status: store.StatusActive}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeStore()
			if tt.sub != nil {
				fs.subs[42] = tt.sub
			}
			svc := newTestService(fs, now)
			assert.False(t, svc.IsEntitled(context.Background(), 42))
		})
	}
}

func TestIsEntitledFailsClosedOnStoreError(t *testing.T) {
	fs := newFakeStore()
	fs.failing = true

	svc := newTestService(fs, time.Now())
	assert.False(t, svc.IsEntitled(context.Background(), 42))
	assert.False(t, svc.CanConsume(context.Background(), 42))
}

func TestActivateGrantsEntitlementAndResetsCounter(t *testing.T) {
	fs := newFakeStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fs.subs[42] = &store.Subscriber{ID: 42, Status: store.StatusInactive, DailyRequests: 3}

	svc := newTestService(fs, now)
	require.NoError(t, svc.Activate(context.Background(), 42, "YooKassa"))

	assert.True(t, svc.IsEntitled(context.Background(), 42))
	assert.Equal(t, 0, fs.subs[42].DailyRequests)

	end, ok := fs.subs[42].SubscriptionEnd()
	require.True(t, ok)
	assert.Equal(t, now.Add(30*24*time.Hour), end)
}

func TestActivateIsIdempotent(t *testing.T) {
	fs := newFakeStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fs.subs[42] = &store.Subscriber{ID: 42, Status: store.StatusInactive}

	svc := newTestService(fs, now)
	require.NoError(t, svc.Activate(context.Background(), 42, "YooKassa"))
	require.NoError(t, svc.Activate(context.Background(), 42, "YooKassa"))

	// Second delivery of the same success event must not extend the expiry.
	end, ok := fs.subs[42].SubscriptionEnd()
	require.True(t, ok)
	assert.Equal(t, now.Add(30*24*time.Hour), end)
}

func TestQuotaExhaustionAtLimit(t *testing.T) {
	fs := newFakeStore()
	fs.subs[42] = &store.Subscriber{ID: 42, Status: store.StatusActive}

	svc := newTestService(fs, time.Now())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.True(t, svc.CanConsume(ctx, 42), "attempt %d should pass", i+1)
		require.NoError(t, svc.Consume(ctx, 42))
	}

	assert.False(t, svc.CanConsume(ctx, 42))
	assert.Equal(t, 5, fs.subs[42].DailyRequests)
	assert.Equal(t, 0, svc.Remaining(ctx, 42))
}

func TestResetAllRestoresQuota(t *testing.T) {
	fs := newFakeStore()
	fs.subs[42] = &store.Subscriber{ID: 42, Status: store.StatusActive, DailyRequests: 5}

	svc := newTestService(fs, time.Now())
	ctx := context.Background()

	assert.False(t, svc.CanConsume(ctx, 42))
	require.NoError(t, fs.ResetAllDailyCounts(ctx))
	assert.True(t, svc.CanConsume(ctx, 42))
	assert.Equal(t, 5, svc.Remaining(ctx, 42))
}

func TestExhaustedQuotaDoesNotConsumeFurther(t *testing.T) {
	fs := newFakeStore()
	fs.subs[42] = &store.Subscriber{ID: 42, Status: store.StatusActive, DailyRequests: 5}

	svc := newTestService(fs, time.Now())
	ctx := context.Background()

	// The caller checks CanConsume before Consume; an exhausted subscriber
	// never reaches the increment.
	if svc.CanConsume(ctx, 42) {
		t.Fatal("exhausted subscriber should not pass the quota gate")
	}
	assert.Equal(t, 5, fs.subs[42].DailyRequests)
}
