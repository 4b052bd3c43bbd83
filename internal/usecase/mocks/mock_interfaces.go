//	mockgen -source=internal/usecase/interfaces.go -destination=internal/usecase/mocks/mock_interfaces.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/brokerops/commissions/internal/domain"
	usecase "github.com/brokerops/commissions/internal/usecase"
	gomock "go.uber.org/mock/gomock"
)

// MockPaymentGateway is a mock of PaymentGateway interface.
type MockPaymentGateway struct {
	ctrl     *gomock.Controller
	recorder *MockPaymentGatewayMockRecorder
	isgomock struct{}
}

// MockPaymentGatewayMockRecorder is the mock recorder for MockPaymentGateway.
type MockPaymentGatewayMockRecorder struct {
	mock *MockPaymentGateway
}

// NewMockPaymentGateway creates a new mock instance.
func NewMockPaymentGateway(ctrl *gomock.Controller) *MockPaymentGateway {
	mock := &MockPaymentGateway{ctrl: ctrl}
	mock.recorder = &MockPaymentGatewayMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPaymentGateway) EXPECT() *MockPaymentGatewayMockRecorder {
	return m.recorder
}

// Transfer mocks base method.
func (m *MockPaymentGateway) Transfer(ctx context.Context, destination string, amount domain.Money, idempotencyToken string) (*usecase.TransferResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Transfer", ctx, destination, amount, idempotencyToken)
	ret0, _ := ret[0].(*usecase.TransferResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Transfer indicates an expected call of Transfer.
func (mr *MockPaymentGatewayMockRecorder) Transfer(ctx, destination, amount, idempotencyToken any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Transfer", reflect.TypeOf((*MockPaymentGateway)(nil).Transfer), ctx, destination, amount, idempotencyToken)
}

// Lookup mocks base method.
func (m *MockPaymentGateway) Lookup(ctx context.Context, idempotencyToken string) (usecase.LookupStatus, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Lookup", ctx, idempotencyToken)
	ret0, _ := ret[0].(usecase.LookupStatus)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Lookup indicates an expected call of Lookup.
func (mr *MockPaymentGatewayMockRecorder) Lookup(ctx, idempotencyToken any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Lookup", reflect.TypeOf((*MockPaymentGateway)(nil).Lookup), ctx, idempotencyToken)
}
