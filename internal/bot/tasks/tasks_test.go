package tasks

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buddahbase/buddahbot/internal/store"
)

type fakeStore struct {
	active       []store.Subscriber
	deactivated  []int64
	resets       int
	listErr      error
	deactivateErr map[int64]error
}

func (f *fakeStore) GetSubscriber(context.Context, int64) (*store.Subscriber, error) {
	return nil, nil
}
func (f *fakeStore) CreateSubscriber(context.Context, *store.Subscriber) error  { return nil }
func (f *fakeStore) UpdatePayment(context.Context, int64, string, string) error { return nil }
func (f *fakeStore) Activate(context.Context, int64, string, time.Time) error   { return nil }
func (f *fakeStore) SaveInviteLink(context.Context, int64, string) error        { return nil }
func (f *fakeStore) IncrementDailyCount(context.Context, int64) error           { return nil }

func (f *fakeStore) ResetAllDailyCounts(context.Context) error {
	f.resets++
	return nil
}

func (f *fakeStore) Deactivate(_ context.Context, id int64) error {
	if err := f.deactivateErr[id]; err != nil {
		return err
	}
	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *fakeStore) AllSubscribers(context.Context) ([]store.Subscriber, error) {
	return f.active, nil
}

func (f *fakeStore) ActiveSubscribers(context.Context) ([]store.Subscriber, error) {
	return f.active, f.listErr
}

func (f *fakeStore) SearchMaterials(context.Context, string, int) ([]store.Material, error) {
	return nil, nil
}
func (f *fakeStore) AddMaterial(context.Context, *store.Material) error { return nil }

func testDeps(fs *fakeStore) TaskDeps {
	return TaskDeps{Logger: slog.Default(), Store: fs}
}

func formatted(t time.Time) *string {
	s := store.FormatStoreTime(t)
	return &s
}

func TestQuotaResetTask(t *testing.T) {
	fs := &fakeStore{}
	task := newQuotaResetTask(testDeps(fs))

	require.NoError(t, task(context.Background()))
	assert.Equal(t, 1, fs.resets)
}

func TestExpirySweepDeactivatesOnlyExpired(t *testing.T) {
	now := time.Now()
	fs := &fakeStore{active: []store.Subscriber{
		{ID: 1, Status: store.StatusActive, SubscriptionToDate: formatted(now.Add(-time.Hour))},
		{ID: 2, Status: store.StatusActive, SubscriptionToDate: formatted(now.Add(24 * time.Hour))},
		{ID: 3, Status: store.StatusActive}, // no end date recorded
	}}
	task := newExpirySweepTask(testDeps(fs))

	require.NoError(t, task(context.Background()))
	assert.Equal(t, []int64{1}, fs.deactivated)
}

func TestExpirySweepContinuesPastRowFailures(t *testing.T) {
	now := time.Now()
	fs := &fakeStore{
		active: []store.Subscriber{
			{ID: 1, Status: store.StatusActive, SubscriptionToDate: formatted(now.Add(-time.Hour))},
			{ID: 2, Status: store.StatusActive, SubscriptionToDate: formatted(now.Add(-time.Hour))},
		},
		deactivateErr: map[int64]error{1: errors.New("row locked")},
	}
	task := newExpirySweepTask(testDeps(fs))

	err := task(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []int64{2}, fs.deactivated, "failure on one row must not stop the sweep")
}

func TestExpirySweepFailsWhenListingFails(t *testing.T) {
	fs := &fakeStore{listErr: errors.New("store down")}
	task := newExpirySweepTask(testDeps(fs))

	assert.Error(t, task(context.Background()))
}

func TestRegisterAllTasks(t *testing.T) {
	tasks := RegisterAllTasks(testDeps(&fakeStore{}))

	assert.Contains(t, tasks, "quota_reset")
	assert.Contains(t, tasks, "expiry_sweep")
}
