// Package mocks holds testify mocks for external boundaries.
package mocks

import (
	"context"

	"github.com/impactlink/impactlink/pkg/provider/gateway"
	"github.com/stretchr/testify/mock"
)

// MockGateway is a testify mock of gateway.Gateway.
type MockGateway struct {
	mock.Mock
}

// NewMockGateway creates a MockGateway with expectation cleanup bound to t.
func NewMockGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGateway {
	m := &MockGateway{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockGateway) CreatePaymentIntent(ctx context.Context, params *gateway.CreateIntentParams) (*gateway.PaymentIntent, error) {
	args := m.Called(ctx, params)
	if pi, ok := args.Get(0).(*gateway.PaymentIntent); ok {
		return pi, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) RetrievePaymentIntent(ctx context.Context, id string) (*gateway.PaymentIntent, error) {
	args := m.Called(ctx, id)
	if pi, ok := args.Get(0).(*gateway.PaymentIntent); ok {
		return pi, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) CreateRefund(ctx context.Context, params *gateway.RefundParams) (*gateway.Refund, error) {
	args := m.Called(ctx, params)
	if r, ok := args.Get(0).(*gateway.Refund); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) EnsureCustomer(ctx context.Context, params *gateway.CustomerParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) CreateSubscription(ctx context.Context, params *gateway.CreateSubscriptionParams) (*gateway.SubscriptionInfo, error) {
	args := m.Called(ctx, params)
	if si, ok := args.Get(0).(*gateway.SubscriptionInfo); ok {
		return si, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) PauseSubscription(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGateway) ResumeSubscription(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGateway) CancelSubscription(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGateway) VerifyEvent(payload []byte, signature string) (*gateway.Event, error) {
	args := m.Called(payload, signature)
	if e, ok := args.Get(0).(*gateway.Event); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}
