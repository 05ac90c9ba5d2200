package subscription_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/internal/fixtures/mocks"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/domain/events"
	subdomain "github.com/impactlink/impactlink/pkg/domain/subscription"
	"github.com/impactlink/impactlink/pkg/dto"
	"github.com/impactlink/impactlink/pkg/fees"
	"github.com/impactlink/impactlink/pkg/money"
	"github.com/impactlink/impactlink/pkg/provider/gateway"
	donsvc "github.com/impactlink/impactlink/pkg/service/donation"
	subsvc "github.com/impactlink/impactlink/pkg/service/subscription"
	"github.com/impactlink/impactlink/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *testutils.FakeStore
	gw    *mocks.MockGateway
	bus   *testutils.RecordingBus
	svc   *subsvc.Service

	donorID   uuid.UUID
	projectID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     testutils.NewFakeStore(),
		gw:        mocks.NewMockGateway(t),
		bus:       &testutils.RecordingBus{},
		donorID:   uuid.New(),
		projectID: uuid.New(),
	}
	f.store.SeedDonor(dto.DonorRead{ID: f.donorID, Email: "alice@example.com", Name: "Alice"})
	f.store.SeedProject(dto.ProjectRead{
		ID:       f.projectID,
		Category: "healthcare",
		Status:   "active",
		Currency: "USD",
	})
	donations := donsvc.New(f.store, f.gw, f.bus, nil, fees.DefaultPolicy(), slog.Default())
	f.svc = subsvc.New(f.store, f.gw, f.bus, donations, slog.Default())
	return f
}

func (f *fixture) seedActive(t *testing.T, externalRef string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.store.SeedSubscription(dto.SubscriptionRead{
		ID:          id,
		DonorID:     f.donorID,
		ProjectID:   f.projectID,
		Amount:      10000,
		Currency:    "USD",
		Frequency:   "monthly",
		Status:      "active",
		ExternalRef: externalRef,
		NextCharge:  time.Now().UTC().Add(30 * 24 * time.Hour),
		CreatedAt:   time.Now().UTC(),
	})
	return id
}

func mustMoney(t *testing.T, amount int64) money.Money {
	t.Helper()
	m, err := money.New(amount, money.USD)
	require.NoError(t, err)
	return m
}

func TestCreate_EnrollsCustomerAndRegistersSchedule(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	periodEnd := time.Now().UTC().Add(30 * 24 * time.Hour)
	f.gw.On("EnsureCustomer", mock.Anything, mock.MatchedBy(func(p *gateway.CustomerParams) bool {
		return p.Email == "alice@example.com" && p.PaymentMethodRef == "pm_1"
	})).Return("cus_1", nil)
	f.gw.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(p *gateway.CreateSubscriptionParams) bool {
		return p.CustomerID == "cus_1" && p.Interval == "month" && p.IntervalCount == 1
	})).Return(&gateway.SubscriptionInfo{ID: "sub_1", CurrentPeriodEnd: periodEnd}, nil)

	sub, err := f.svc.Create(context.Background(), subsvc.CreateParams{
		DonorID:          f.donorID,
		ProjectID:        f.projectID,
		Amount:           mustMoney(t, 10000),
		Frequency:        subdomain.FrequencyMonthly,
		PaymentMethodRef: "pm_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, "sub_1", sub.ExternalRef)
	assert.Equal(t, periodEnd, sub.NextCharge)

	assert.Equal(t, "cus_1", f.store.DonorRows[f.donorID].GatewayCustID)
	assert.Len(t, f.bus.Emitted(events.TypeSubscriptionActivated), 1)
}

func TestCreate_QuarterlyBillsEveryThreeMonths(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.gw.On("EnsureCustomer", mock.Anything, mock.Anything).Return("cus_1", nil)
	f.gw.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(p *gateway.CreateSubscriptionParams) bool {
		return p.Interval == "month" && p.IntervalCount == 3
	})).Return(&gateway.SubscriptionInfo{ID: "sub_q"}, nil)

	sub, err := f.svc.Create(context.Background(), subsvc.CreateParams{
		DonorID:   f.donorID,
		ProjectID: f.projectID,
		Amount:    mustMoney(t, 2500),
		Frequency: subdomain.FrequencyQuarterly,
	})
	require.NoError(t, err)
	// Gateway gave no period end; the local approximation stands in.
	assert.False(t, sub.NextCharge.IsZero())
}

func TestCreate_ReusesExistingGatewayCustomer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.store.SeedDonor(dto.DonorRead{ID: f.donorID, Email: "alice@example.com", GatewayCustID: "cus_old"})
	f.gw.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(p *gateway.CreateSubscriptionParams) bool {
		return p.CustomerID == "cus_old"
	})).Return(&gateway.SubscriptionInfo{ID: "sub_1"}, nil)

	_, err := f.svc.Create(context.Background(), subsvc.CreateParams{
		DonorID:   f.donorID,
		ProjectID: f.projectID,
		Amount:    mustMoney(t, 10000),
		Frequency: subdomain.FrequencyWeekly,
	})
	require.NoError(t, err)
	f.gw.AssertNotCalled(t, "EnsureCustomer", mock.Anything, mock.Anything)
}

func TestCreate_InvalidFrequency(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), subsvc.CreateParams{
		DonorID:   f.donorID,
		ProjectID: f.projectID,
		Amount:    mustMoney(t, 10000),
		Frequency: "fortnightly",
	})
	assert.Error(t, err)
}

func TestCreate_InactiveProject(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	closed := uuid.New()
	f.store.SeedProject(dto.ProjectRead{ID: closed, Status: "completed", Currency: "USD"})

	_, err := f.svc.Create(context.Background(), subsvc.CreateParams{
		DonorID:   f.donorID,
		ProjectID: closed,
		Amount:    mustMoney(t, 10000),
		Frequency: subdomain.FrequencyMonthly,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)
}

func TestPauseAndResume(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	id := f.seedActive(t, "sub_1")
	f.gw.On("PauseSubscription", mock.Anything, "sub_1").Return(nil).Once()
	f.gw.On("ResumeSubscription", mock.Anything, "sub_1").Return(nil).Once()

	require.NoError(t, f.svc.Pause(context.Background(), id))
	assert.Equal(t, "paused", f.store.SubscriptionRows[id].Status)

	// Pausing again is a no-op and does not hit the gateway twice.
	require.NoError(t, f.svc.Pause(context.Background(), id))

	require.NoError(t, f.svc.Resume(context.Background(), id))
	assert.Equal(t, "active", f.store.SubscriptionRows[id].Status)
}

func TestPause_CancelledSubscription(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	id := f.seedActive(t, "sub_1")
	f.store.SubscriptionRows[id].Status = "cancelled"

	err := f.svc.Pause(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_Idempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	id := f.seedActive(t, "sub_1")
	f.gw.On("CancelSubscription", mock.Anything, "sub_1").Return(nil).Once()

	require.NoError(t, f.svc.Cancel(context.Background(), id))
	require.NoError(t, f.svc.Cancel(context.Background(), id))

	assert.Equal(t, "cancelled", f.store.SubscriptionRows[id].Status)
	assert.Len(t, f.bus.Emitted(events.TypeSubscriptionCancelled), 1)
}

func TestHandleBillingSucceeded_RecordsDonationAndAdvancesNextCharge(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	id := f.seedActive(t, "sub_1")
	periodEnd := time.Now().UTC().Add(60 * 24 * time.Hour)

	err := f.svc.HandleBillingSucceeded(context.Background(), "sub_1", "pi_cycle_1", 10000, money.USD, periodEnd)
	require.NoError(t, err)

	assert.Equal(t, periodEnd, f.store.SubscriptionRows[id].NextCharge)
	assert.Equal(t, "active", f.store.SubscriptionRows[id].Status)

	var recorded *dto.DonationRead
	for _, d := range f.store.DonationRows {
		if d.PaymentRef == "pi_cycle_1" {
			recorded = d
		}
	}
	require.NotNil(t, recorded)
	assert.Equal(t, "completed", recorded.Status)
	assert.True(t, recorded.Recurring)
	assert.Equal(t, int64(9180), f.store.ProjectRows[f.projectID].CurrentFunding)
}

func TestHandleBillingSucceeded_RedeliveryIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedActive(t, "sub_1")
	periodEnd := time.Now().UTC().Add(60 * 24 * time.Hour)

	require.NoError(t, f.svc.HandleBillingSucceeded(context.Background(), "sub_1", "pi_cycle_1", 10000, money.USD, periodEnd))
	require.NoError(t, f.svc.HandleBillingSucceeded(context.Background(), "sub_1", "pi_cycle_1", 10000, money.USD, periodEnd))

	assert.Len(t, f.store.DonationRows, 1)
	assert.Equal(t, int64(9180), f.store.ProjectRows[f.projectID].CurrentFunding)
}

func TestHandleBillingSucceeded_ZeroAmountFallsBackToSubscription(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seedActive(t, "sub_1")

	err := f.svc.HandleBillingSucceeded(context.Background(), "sub_1", "pi_cycle_1", 0, "", time.Time{})
	require.NoError(t, err)

	assert.Equal(t, int64(9180), f.store.ProjectRows[f.projectID].CurrentFunding)
}

func TestHandleBillingSucceeded_CancelledSubscriptionSpawnsNoDonation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	id := f.seedActive(t, "sub_1")
	f.store.SubscriptionRows[id].Status = "cancelled"
	before := f.store.SubscriptionRows[id].NextCharge
	periodEnd := time.Now().UTC().Add(60 * 24 * time.Hour)

	err := f.svc.HandleBillingSucceeded(context.Background(), "sub_1", "pi_cycle_1", 10000, money.USD, periodEnd)
	require.NoError(t, err)

	assert.Empty(t, f.store.DonationRows)
	assert.Zero(t, f.store.ProjectRows[f.projectID].CurrentFunding)
	assert.Equal(t, "cancelled", f.store.SubscriptionRows[id].Status)
	assert.Equal(t, before, f.store.SubscriptionRows[id].NextCharge)
}

func TestHandleBillingFailed_SubscriptionStaysActive(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	id := f.seedActive(t, "sub_1")

	require.NoError(t, f.svc.HandleBillingFailed(context.Background(), "sub_1"))

	assert.Equal(t, "active", f.store.SubscriptionRows[id].Status)
	assert.Len(t, f.bus.Emitted(events.TypeSubscriptionBillingFailed), 1)
	assert.Empty(t, f.store.DonationRows)
}

func TestHandleRemoteCancelled(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	id := f.seedActive(t, "sub_1")

	require.NoError(t, f.svc.HandleRemoteCancelled(context.Background(), "sub_1"))
	require.NoError(t, f.svc.HandleRemoteCancelled(context.Background(), "sub_1"))

	assert.Equal(t, "cancelled", f.store.SubscriptionRows[id].Status)
	assert.Len(t, f.bus.Emitted(events.TypeSubscriptionCancelled), 1)
}

func TestHandlers_UnknownExternalRef(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.svc.HandleBillingFailed(context.Background(), "sub_missing")
	assert.ErrorIs(t, err, domain.ErrUnknownReference)

	err = f.svc.HandleRemoteCancelled(context.Background(), "sub_missing")
	assert.ErrorIs(t, err, domain.ErrUnknownReference)
}
