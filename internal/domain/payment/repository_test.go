package payment

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (_m *MockPaymentRepository) Create(ctx context.Context, payment *Payment) error {
	ret := _m.Called(ctx, payment)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *Payment) error); ok {
		r0 = rf(ctx, payment)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockPaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*Payment, error) {
	ret := _m.Called(ctx, paymentID)

	var r0 *Payment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Payment)
	}

	return r0, ret.Error(1)
}

func (_m *MockPaymentRepository) FindAll(ctx context.Context) ([]Payment, error) {
	ret := _m.Called(ctx)

	var r0 []Payment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Payment)
	}

	return r0, ret.Error(1)
}

func (_m *MockPaymentRepository) FindByCustomer(ctx context.Context, customerID string) ([]Payment, error) {
	ret := _m.Called(ctx, customerID)

	var r0 []Payment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Payment)
	}

	return r0, ret.Error(1)
}

func (_m *MockPaymentRepository) Update(ctx context.Context, payment *Payment) error {
	ret := _m.Called(ctx, payment)
	return ret.Error(0)
}

func (_m *MockPaymentRepository) Delete(ctx context.Context, paymentID string) error {
	ret := _m.Called(ctx, paymentID)
	return ret.Error(0)
}
