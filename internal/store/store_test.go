package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buddahbase/buddahbot/internal/config"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) Store {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewStore(config.SupabaseConfig{
		URL:              srv.URL,
		ServiceKey:       "service-key",
		SubscribersTable: "buddah_base_ai",
		MaterialsTable:   "materials",
		Timeout:          5 * time.Second,
	}, nil)
}

func TestGetSubscriberAbsentRowIsNil(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/buddah_base_ai", r.URL.Path)
		require.Equal(t, "eq.42", r.URL.Query().Get("id"))
		require.Equal(t, "service-key", r.Header.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	sub, err := st.GetSubscriber(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestIncrementDailyCountReadsThenPatches(t *testing.T) {
	var patched map[string]any
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"id": 42, "status": "active", "daily_requests": 3}]`))
		case http.MethodPatch:
			require.Equal(t, "eq.42", r.URL.Query().Get("id"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
			_, _ = w.Write([]byte(`[]`))
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	})

	require.NoError(t, st.IncrementDailyCount(context.Background(), 42))
	assert.Equal(t, float64(4), patched["daily_requests"])
}

func TestResetAllDailyCountsIsUnfiltered(t *testing.T) {
	var sawFilter bool
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		sawFilter = r.URL.Query().Get("id") != ""
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	require.NoError(t, st.ResetAllDailyCounts(context.Background()))
	assert.False(t, sawFilter, "bulk reset must not filter by id")
}

func TestActivateWritesAbsoluteFields(t *testing.T) {
	var patched map[string]any
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	until := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.Activate(context.Background(), 42, "yookassa", until))

	assert.Equal(t, StatusActive, patched["status"])
	assert.Equal(t, "true", patched["payed"])
	assert.Equal(t, "2025-07-01T00:00:00Z", patched["subscription_to_date"])
	assert.Equal(t, float64(0), patched["daily_requests"])
}

func TestSearchMaterialsBuildsIlikeFilter(t *testing.T) {
	st := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/materials", r.URL.Path)
		assert.Equal(t, "(title.ilike.*медитация*,tags.ilike.*медитация*)", r.URL.Query().Get("or"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"title": "Гид", "tags": "медитация", "url": "https://example.com"}]`))
	})

	materials, err := st.SearchMaterials(context.Background(), "медитация", 5)
	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.Equal(t, "Гид", materials[0].Title)
}

func TestSubscriberTimeParsingTolerance(t *testing.T) {
	naive := "2025-06-15T10:30:00.123456"
	zoned := "2025-06-15T10:30:00Z"

	for _, value := range []string{naive, zoned} {
		sub := &Subscriber{SubscriptionToDate: &value}
		end, ok := sub.SubscriptionEnd()
		require.True(t, ok, "value %q", value)
		assert.Equal(t, 2025, end.Year())
	}

	malformed := "not-a-date"
	sub := &Subscriber{SubscriptionToDate: &malformed}
	_, ok := sub.SubscriptionEnd()
	assert.False(t, ok)
}
