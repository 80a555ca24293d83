package suspension

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockSuspensionRepository struct {
	mock.Mock
}

func (_m *MockSuspensionRepository) Create(ctx context.Context, suspension *Suspension) error {
	ret := _m.Called(ctx, suspension)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *Suspension) error); ok {
		r0 = rf(ctx, suspension)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockSuspensionRepository) FindByCustomer(ctx context.Context, customerID string) ([]Suspension, error) {
	ret := _m.Called(ctx, customerID)

	var r0 []Suspension
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Suspension)
	}

	return r0, ret.Error(1)
}

func (_m *MockSuspensionRepository) FindAll(ctx context.Context) ([]Suspension, error) {
	ret := _m.Called(ctx)

	var r0 []Suspension
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Suspension)
	}

	return r0, ret.Error(1)
}

func (_m *MockSuspensionRepository) Delete(ctx context.Context, customerID string, suspensionID int64) error {
	ret := _m.Called(ctx, customerID, suspensionID)
	return ret.Error(0)
}
