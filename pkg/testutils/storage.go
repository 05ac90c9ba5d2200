// Package testutils provides in-memory fakes for service tests: a
// map-backed unit of work with real compare-and-swap semantics and a
// recording event bus.
package testutils

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/impactlink/impactlink/pkg/domain"
	"github.com/impactlink/impactlink/pkg/dto"
	"github.com/impactlink/impactlink/pkg/eventbus"
	"github.com/impactlink/impactlink/pkg/repository"
	charityrepo "github.com/impactlink/impactlink/pkg/repository/charity"
	donationrepo "github.com/impactlink/impactlink/pkg/repository/donation"
	donorrepo "github.com/impactlink/impactlink/pkg/repository/donor"
	projectrepo "github.com/impactlink/impactlink/pkg/repository/project"
	subscriptionrepo "github.com/impactlink/impactlink/pkg/repository/subscription"
)

// FakeStore is an in-memory repository.UnitOfWork. It has no real
// transactions; Do simply runs the function against shared state under a
// mutex. UpdateStatus keeps genuine compare-and-swap behavior so
// transition races can be simulated.
type FakeStore struct {
	mu sync.Mutex

	DonationRows     map[uuid.UUID]*dto.DonationRead
	ProjectRows      map[uuid.UUID]*dto.ProjectRead
	CharityRows      map[uuid.UUID]*dto.CharityRead
	DonorRows        map[uuid.UUID]*dto.DonorRead
	SubscriptionRows map[uuid.UUID]*dto.SubscriptionRead

	// DoErr, when set, makes every Do call fail without running fn.
	DoErr error
}

// NewFakeStore returns an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		DonationRows:     map[uuid.UUID]*dto.DonationRead{},
		ProjectRows:      map[uuid.UUID]*dto.ProjectRead{},
		CharityRows:      map[uuid.UUID]*dto.CharityRead{},
		DonorRows:        map[uuid.UUID]*dto.DonorRead{},
		SubscriptionRows: map[uuid.UUID]*dto.SubscriptionRead{},
	}
}

// SeedProject adds a project row.
func (f *FakeStore) SeedProject(p dto.ProjectRead) { f.ProjectRows[p.ID] = &p }

// SeedCharity adds a charity row.
func (f *FakeStore) SeedCharity(c dto.CharityRead) { f.CharityRows[c.ID] = &c }

// SeedDonor adds a donor row.
func (f *FakeStore) SeedDonor(d dto.DonorRead) { f.DonorRows[d.ID] = &d }

// SeedDonation adds a donation row.
func (f *FakeStore) SeedDonation(d dto.DonationRead) { f.DonationRows[d.ID] = &d }

// SeedSubscription adds a subscription row.
func (f *FakeStore) SeedSubscription(s dto.SubscriptionRead) { f.SubscriptionRows[s.ID] = &s }

// Do implements repository.UnitOfWork.
func (f *FakeStore) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if f.DoErr != nil {
		return f.DoErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f)
}

// Donations implements repository.UnitOfWork.
func (f *FakeStore) Donations() (donationrepo.Repository, error) {
	return (*fakeDonations)(f), nil
}

// Subscriptions implements repository.UnitOfWork.
func (f *FakeStore) Subscriptions() (subscriptionrepo.Repository, error) {
	return (*fakeSubscriptions)(f), nil
}

// Projects implements repository.UnitOfWork.
func (f *FakeStore) Projects() (projectrepo.Repository, error) {
	return (*fakeProjects)(f), nil
}

// Charities implements repository.UnitOfWork.
func (f *FakeStore) Charities() (charityrepo.Repository, error) {
	return (*fakeCharities)(f), nil
}

// Donors implements repository.UnitOfWork.
func (f *FakeStore) Donors() (donorrepo.Repository, error) {
	return (*fakeDonors)(f), nil
}

type fakeDonations FakeStore

func (f *fakeDonations) Create(_ context.Context, c dto.DonationCreate) error {
	for _, d := range f.DonationRows {
		if d.PaymentRef == c.PaymentRef {
			return domain.ErrAlreadyExists
		}
	}
	f.DonationRows[c.ID] = &dto.DonationRead{
		ID:           c.ID,
		DonorID:      c.DonorID,
		ProjectID:    c.ProjectID,
		CharityID:    c.CharityID,
		PaymentRef:   c.PaymentRef,
		GrossAmount:  c.GrossAmount,
		PlatformFee:  c.PlatformFee,
		ProcessorFee: c.ProcessorFee,
		NetAmount:    c.NetAmount,
		Currency:     c.Currency,
		Status:       c.Status,
		Recurring:    c.Recurring,
		Message:      c.Message,
		Anonymous:    c.Anonymous,
		CreatedAt:    time.Now().UTC(),
	}
	return nil
}

func (f *fakeDonations) Get(_ context.Context, id uuid.UUID) (*dto.DonationRead, error) {
	d, ok := f.DonationRows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDonations) GetByPaymentRef(_ context.Context, ref string) (*dto.DonationRead, error) {
	for _, d := range f.DonationRows {
		if d.PaymentRef == ref {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDonations) GetByPaymentRefForUpdate(ctx context.Context, ref string) (*dto.DonationRead, error) {
	return f.GetByPaymentRef(ctx, ref)
}

func (f *fakeDonations) GetForUpdate(ctx context.Context, id uuid.UUID) (*dto.DonationRead, error) {
	return f.Get(ctx, id)
}

func (f *fakeDonations) UpdateStatus(_ context.Context, id uuid.UUID, fromStatus string, u dto.DonationStatusUpdate) error {
	d, ok := f.DonationRows[id]
	if !ok {
		return domain.ErrNotFound
	}
	if d.Status != fromStatus {
		return domain.ErrConcurrencyConflict
	}
	d.Status = u.Status
	if u.ImpactScore != nil {
		d.ImpactScore = *u.ImpactScore
	}
	if u.CompletedAt != nil {
		d.CompletedAt = u.CompletedAt
	}
	if u.RefundedAt != nil {
		d.RefundedAt = u.RefundedAt
	}
	if u.RefundReason != nil {
		d.RefundReason = *u.RefundReason
	}
	return nil
}

func (f *fakeDonations) CountCompletedByDonorAndTarget(_ context.Context, donorID, projectID, charityID uuid.UUID) (int64, error) {
	var n int64
	for _, d := range f.DonationRows {
		if d.DonorID != donorID || d.Status != "completed" {
			continue
		}
		if projectID != uuid.Nil {
			if d.ProjectID == projectID {
				n++
			}
		} else if d.CharityID == charityID {
			n++
		}
	}
	return n, nil
}

func (f *fakeDonations) ListByDonor(_ context.Context, donorID uuid.UUID) ([]*dto.DonationRead, error) {
	var list []*dto.DonationRead
	for _, d := range f.DonationRows {
		if d.DonorID == donorID {
			cp := *d
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

type fakeSubscriptions FakeStore

func (f *fakeSubscriptions) Create(_ context.Context, c dto.SubscriptionCreate) error {
	if _, ok := f.SubscriptionRows[c.ID]; ok {
		return domain.ErrAlreadyExists
	}
	f.SubscriptionRows[c.ID] = &dto.SubscriptionRead{
		ID:          c.ID,
		DonorID:     c.DonorID,
		ProjectID:   c.ProjectID,
		Amount:      c.Amount,
		Currency:    c.Currency,
		Frequency:   c.Frequency,
		Status:      c.Status,
		ExternalRef: c.ExternalRef,
		NextCharge:  c.NextCharge,
		CreatedAt:   time.Now().UTC(),
	}
	return nil
}

func (f *fakeSubscriptions) Get(_ context.Context, id uuid.UUID) (*dto.SubscriptionRead, error) {
	s, ok := f.SubscriptionRows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubscriptions) GetByExternalRef(_ context.Context, ref string) (*dto.SubscriptionRead, error) {
	for _, s := range f.SubscriptionRows {
		if s.ExternalRef == ref {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSubscriptions) Update(_ context.Context, id uuid.UUID, u dto.SubscriptionUpdate) error {
	s, ok := f.SubscriptionRows[id]
	if !ok {
		return domain.ErrNotFound
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.NextCharge != nil {
		s.NextCharge = *u.NextCharge
	}
	return nil
}

func (f *fakeSubscriptions) ListByDonor(_ context.Context, donorID uuid.UUID) ([]*dto.SubscriptionRead, error) {
	var list []*dto.SubscriptionRead
	for _, s := range f.SubscriptionRows {
		if s.DonorID == donorID {
			cp := *s
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

type fakeProjects FakeStore

func (f *fakeProjects) Get(_ context.Context, id uuid.UUID) (*dto.ProjectRead, error) {
	p, ok := f.ProjectRows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) AdjustFunding(_ context.Context, id uuid.UUID, deltaFunding, deltaDonors int64) error {
	p, ok := f.ProjectRows[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.CurrentFunding += deltaFunding
	p.DonorCount += deltaDonors
	return nil
}

type fakeCharities FakeStore

func (f *fakeCharities) Get(_ context.Context, id uuid.UUID) (*dto.CharityRead, error) {
	c, ok := f.CharityRows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCharities) AdjustFunding(_ context.Context, id uuid.UUID, deltaFunding, deltaDonors int64) error {
	c, ok := f.CharityRows[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.CurrentFunding += deltaFunding
	c.DonorCount += deltaDonors
	return nil
}

type fakeDonors FakeStore

func (f *fakeDonors) Get(_ context.Context, id uuid.UUID) (*dto.DonorRead, error) {
	d, ok := f.DonorRows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDonors) AdjustImpactScore(_ context.Context, id uuid.UUID, delta int64) error {
	d, ok := f.DonorRows[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.ImpactScore += delta
	return nil
}

func (f *fakeDonors) SetGatewayCustomer(_ context.Context, id uuid.UUID, customerID string) error {
	d, ok := f.DonorRows[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.GatewayCustID = customerID
	return nil
}

// RecordingBus is an eventbus.Bus that captures emitted events for
// assertions.
type RecordingBus struct {
	mu     sync.Mutex
	Events []eventbus.Event
}

// Emit implements eventbus.Bus.
func (b *RecordingBus) Emit(_ context.Context, e eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, e)
	return nil
}

// Register implements eventbus.Bus.
func (b *RecordingBus) Register(string, eventbus.HandlerFunc) {}

// Emitted returns the captured events of the given type.
func (b *RecordingBus) Emitted(eventType string) []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []eventbus.Event
	for _, e := range b.Events {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}
