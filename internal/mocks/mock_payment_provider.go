package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

type MockPaymentProvider struct {
	mock.Mock
	domain.PaymentProvider
}

func (m *MockPaymentProvider) CheckoutURL(order *domain.Order, event *domain.Event) string {
	args := m.Called(order, event)
	return args.String(0)
}

func (m *MockPaymentProvider) ParseNotification(params map[string]string) (*domain.PaymentNotification, error) {
	args := m.Called(params)

	notification, _ := args.Get(0).(*domain.PaymentNotification)
	return notification, args.Error(1)
}

func (m *MockPaymentProvider) ParseIPN(params map[string]string) (*domain.PaymentNotification, error) {
	args := m.Called(params)

	notification, _ := args.Get(0).(*domain.PaymentNotification)
	return notification, args.Error(1)
}

func (m *MockPaymentProvider) SignIPNResponse(params map[string]string, now time.Time) string {
	args := m.Called(params, now)
	return args.String(0)
}
