package reconciler_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/impactlink/impactlink/internal/fixtures/mocks"
	"github.com/impactlink/impactlink/pkg/domain"
	dondomain "github.com/impactlink/impactlink/pkg/domain/donation"
	"github.com/impactlink/impactlink/pkg/money"
	"github.com/impactlink/impactlink/pkg/provider/gateway"
	"github.com/impactlink/impactlink/pkg/service/reconciler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type transitionCall struct {
	ref     string
	outcome dondomain.Outcome
}

type stubDonations struct {
	calls []transitionCall
	err   error
}

func (s *stubDonations) ApplyTransition(_ context.Context, ref string, outcome dondomain.Outcome) error {
	s.calls = append(s.calls, transitionCall{ref: ref, outcome: outcome})
	return s.err
}

type billingCall struct {
	externalRef string
	paymentRef  string
	amount      money.Amount
	currency    money.Code
	periodEnd   time.Time
}

type stubSubscriptions struct {
	billed    []billingCall
	failed    []string
	cancelled []string
	err       error
}

func (s *stubSubscriptions) HandleBillingSucceeded(_ context.Context, externalRef, paymentRef string, amount money.Amount, currency money.Code, periodEnd time.Time) error {
	s.billed = append(s.billed, billingCall{externalRef, paymentRef, amount, currency, periodEnd})
	return s.err
}

func (s *stubSubscriptions) HandleBillingFailed(_ context.Context, externalRef string) error {
	s.failed = append(s.failed, externalRef)
	return s.err
}

func (s *stubSubscriptions) HandleRemoteCancelled(_ context.Context, externalRef string) error {
	s.cancelled = append(s.cancelled, externalRef)
	return s.err
}

type memCache struct {
	mu      sync.Mutex
	seen    map[string]bool
	seenErr error
}

func newMemCache() *memCache { return &memCache{seen: map[string]bool{}} }

func (c *memCache) Seen(_ context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seenErr != nil {
		return false, c.seenErr
	}
	return c.seen[id], nil
}

func (c *memCache) Mark(_ context.Context, id string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[id] = true
	return nil
}

type fixture struct {
	gw    *mocks.MockGateway
	don   *stubDonations
	subs  *stubSubscriptions
	cache *memCache
	svc   *reconciler.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		gw:    mocks.NewMockGateway(t),
		don:   &stubDonations{},
		subs:  &stubSubscriptions{},
		cache: newMemCache(),
	}
	f.svc = reconciler.New(f.gw, f.don, f.subs, f.cache, time.Hour, slog.Default())
	return f
}

func (f *fixture) deliver(evt *gateway.Event) {
	f.gw.On("VerifyEvent", mock.Anything, mock.Anything).Return(evt, nil).Once()
}

func TestHandle_SignatureFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.gw.On("VerifyEvent", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: bad header", domain.ErrSignatureVerification))

	err := f.svc.Handle(context.Background(), []byte("{}"), "t=1,v1=bad")
	assert.ErrorIs(t, err, domain.ErrSignatureVerification)
	assert.Empty(t, f.don.calls)
}

func TestHandle_PaymentSucceeded(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.deliver(&gateway.Event{ID: "evt_1", Kind: gateway.EventPaymentSucceeded, PaymentIntentID: "pi_1"})

	require.NoError(t, f.svc.Handle(context.Background(), []byte("{}"), "sig"))

	require.Len(t, f.don.calls, 1)
	assert.Equal(t, transitionCall{ref: "pi_1", outcome: dondomain.OutcomeSucceeded}, f.don.calls[0])
	seen, _ := f.cache.Seen(context.Background(), "evt_1")
	assert.True(t, seen)
}

func TestHandle_PaymentFailedAndRefunded(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.deliver(&gateway.Event{ID: "evt_1", Kind: gateway.EventPaymentFailed, PaymentIntentID: "pi_1"})
	f.deliver(&gateway.Event{ID: "evt_2", Kind: gateway.EventChargeRefunded, PaymentIntentID: "pi_1"})

	require.NoError(t, f.svc.Handle(context.Background(), []byte("{}"), "sig"))
	require.NoError(t, f.svc.Handle(context.Background(), []byte("{}"), "sig"))

	require.Len(t, f.don.calls, 2)
	assert.Equal(t, dondomain.OutcomeFailed, f.don.calls[0].outcome)
	assert.Equal(t, dondomain.OutcomeRefunded, f.don.calls[1].outcome)
}

func TestHandle_DuplicateEventSkipsDispatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	evt := &gateway.Event{ID: "evt_1", Kind: gateway.EventPaymentSucceeded, PaymentIntentID: "pi_1"}
	f.deliver(evt)
	f.deliver(evt)

	require.NoError(t, f.svc.Handle(context.Background(), []byte("{}"), "sig"))
	require.NoError(t, f.svc.Handle(context.Background(), []byte("{}"), "sig"))

	assert.Len(t, f.don.calls, 1)
}

func TestHandle_CacheFailureStillDispatches(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.cache.seenErr = fmt.Errorf("connection refused")
	f.deliver(&gateway.Event{ID: "evt_1", Kind: gateway.EventPaymentSucceeded, PaymentIntentID: "pi_1"})

	require.NoError(t, f.svc.Handle(context.Background(), []byte("{}"), "sig"))
	assert.Len(t, f.don.calls, 1)
}

func TestHandle_UnknownReferenceIsAcknowledged(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.don.err = fmt.Errorf("%w: payment reference %q", domain.ErrUnknownReference, "pi_ghost")
	f.deliver(&gateway.Event{ID: "evt_1", Kind: gateway.EventPaymentSucceeded, PaymentIntentID: "pi_ghost"})

	assert.NoError(t, f.svc.Handle(context.Background(), []byte("{}"), "sig"))
}

func TestHandle_InvalidTransitionPropagates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.don.err = domain.ErrInvalidTransition
	f.deliver(&gateway.Event{ID: "evt_1", Kind: gateway.EventChargeRefunded, PaymentIntentID: "pi_1"})

	err := f.svc.Handle(context.Background(), []byte("{}"), "sig")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Failed dispatches are not marked processed.
	seen, _ := f.cache.Seen(context.Background(), "evt_1")
	assert.False(t, seen)
}

func TestHandle_BillingSucceededRoutesInvoiceData(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	periodEnd := time.Now().UTC().Add(30 * 24 * time.Hour)
	f.deliver(&gateway.Event{
		ID:               "evt_1",
		Kind:             gateway.EventBillingSucceeded,
		SubscriptionID:   "sub_1",
		PaymentIntentID:  "pi_cycle_1",
		AmountMinorUnits: 10000,
		Currency:         "USD",
		PeriodEnd:        periodEnd,
	})

	require.NoError(t, f.svc.Handle(context.Background(), []byte("{}"), "sig"))

	require.Len(t, f.subs.billed, 1)
	b := f.subs.billed[0]
	assert.Equal(t, "sub_1", b.externalRef)
	assert.Equal(t, "pi_cycle_1", b.paymentRef)
	assert.Equal(t, int64(10000), b.amount)
	assert.Equal(t, money.USD, b.currency)
	assert.Equal(t, periodEnd, b.periodEnd)
}

func TestHandle_BillingFailedAndSubscriptionDeleted(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.deliver(&gateway.Event{ID: "evt_1", Kind: gateway.EventBillingFailed, SubscriptionID: "sub_1"})
	f.deliver(&gateway.Event{ID: "evt_2", Kind: gateway.EventSubscriptionDeleted, SubscriptionID: "sub_1"})

	require.NoError(t, f.svc.Handle(context.Background(), []byte("{}"), "sig"))
	require.NoError(t, f.svc.Handle(context.Background(), []byte("{}"), "sig"))

	assert.Equal(t, []string{"sub_1"}, f.subs.failed)
	assert.Equal(t, []string{"sub_1"}, f.subs.cancelled)
}

func TestHandle_UnrecognizedKindIsAcknowledged(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.deliver(&gateway.Event{ID: "evt_1", Kind: gateway.EventUnrecognized})

	require.NoError(t, f.svc.Handle(context.Background(), []byte("{}"), "sig"))
	assert.Empty(t, f.don.calls)
	assert.Empty(t, f.subs.billed)
}
