package webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	principalID int64
	err         error
	calls       int
}

func (r *fakeResolver) ProcessSuccessful(_ context.Context, _ string) (int64, error) {
	r.calls++
	return r.principalID, r.err
}

type fakeActivator struct {
	link      string
	err       error
	completed []int64
}

func (a *fakeActivator) Complete(_ context.Context, principalID int64, _ string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.completed = append(a.completed, principalID)
	return a.link, nil
}

type fakeNotifier struct {
	notified map[int64]string
}

func (n *fakeNotifier) NotifyActivated(_ context.Context, principalID int64, inviteLink string) {
	if n.notified == nil {
		n.notified = make(map[int64]string)
	}
	n.notified[principalID] = inviteLink
}

func postNotification(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSucceededEventActivatesAndNotifies(t *testing.T) {
	resolver := &fakeResolver{principalID: 42}
	activator := &fakeActivator{link: "https://t.me/+abc"}
	notifier := &fakeNotifier{}
	srv := NewServer(":0", "/webhook/payment", resolver, activator, notifier, nil)

	rec := postNotification(t, srv, `{"event":"payment.succeeded","object":{"id":"pay-1"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{42}, activator.completed)
	assert.Equal(t, "https://t.me/+abc", notifier.notified[42])
}

func TestDuplicateDeliveryActivatesAgainHarmlessly(t *testing.T) {
	resolver := &fakeResolver{principalID: 42}
	activator := &fakeActivator{link: "https://t.me/+abc"}
	srv := NewServer(":0", "/webhook/payment", resolver, activator, nil, nil)

	body := `{"event":"payment.succeeded","object":{"id":"pay-1"}}`
	first := postNotification(t, srv, body)
	second := postNotification(t, srv, body)

	// Activation writes absolute values, so a redelivered notification is
	// safe to process end to end.
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, []int64{42, 42}, activator.completed)
}

func TestOtherEventsAreIgnored(t *testing.T) {
	resolver := &fakeResolver{principalID: 42}
	activator := &fakeActivator{}
	srv := NewServer(":0", "/webhook/payment", resolver, activator, nil, nil)

	rec := postNotification(t, srv, `{"event":"payment.canceled","object":{"id":"pay-1"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, resolver.calls)
	assert.Empty(t, activator.completed)
}

func TestMalformedPayloadRejected(t *testing.T) {
	srv := NewServer(":0", "/webhook/payment", &fakeResolver{}, &fakeActivator{}, nil, nil)

	assert.Equal(t, http.StatusBadRequest, postNotification(t, srv, `{not json`).Code)
	assert.Equal(t, http.StatusBadRequest,
		postNotification(t, srv, `{"event":"payment.succeeded","object":{}}`).Code)
}

func TestDownstreamFailureReturns500(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("gateway down")}
	srv := NewServer(":0", "/webhook/payment", resolver, &fakeActivator{}, nil, nil)

	rec := postNotification(t, srv, `{"event":"payment.succeeded","object":{"id":"pay-1"}}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUnconfirmedPaymentAcknowledgedWithoutActivation(t *testing.T) {
	resolver := &fakeResolver{principalID: 0}
	activator := &fakeActivator{}
	srv := NewServer(":0", "/webhook/payment", resolver, activator, nil, nil)

	rec := postNotification(t, srv, `{"event":"payment.succeeded","object":{"id":"pay-1"}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, activator.completed)
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(":0", "/webhook/payment", &fakeResolver{}, &fakeActivator{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
