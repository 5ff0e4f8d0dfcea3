package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nicholas-fedor/backupnotify/pkg/types"
)

// Notifier is a mock type for the Notifier type.
type Notifier struct {
	mock.Mock
}

// Notify provides a mock function with given fields: ctx, outcome.
func (_m *Notifier) Notify(ctx context.Context, outcome types.Outcome) error {
	ret := _m.Called(ctx, outcome)

	var result0 error
	if rf, ok := ret.Get(0).(func(context.Context, types.Outcome) error); ok {
		result0 = rf(ctx, outcome)
	} else {
		result0 = ret.Error(0)
	}

	return result0
}

// GetName provides a mock function with given fields:.
func (_m *Notifier) GetName() string {
	ret := _m.Called()

	var result0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		result0 = rf()
	} else {
		result0 = ret.Get(0).(string)
	}

	return result0
}

// NewNotifier creates a new instance of Notifier. It also registers a testing interface on the mock
// and a cleanup function to assert the mocks expectations.
func NewNotifier(t interface {
	mock.TestingT
	Cleanup(func())
},
) *Notifier {
	m := &Notifier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
