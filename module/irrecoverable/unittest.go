package irrecoverable

import (
	"context"
	"runtime"
	"testing"
)

// MockSignalerContext is a SignalerContext that can be used in tests.
type MockSignalerContext struct {
	context.Context
	t       *testing.T
	onThrow func(err error)
}

var _ SignalerContext = &MockSignalerContext{}

func (m MockSignalerContext) sealed() {}

// Throw hands the error to the configured callback, or fails the test if no
// callback is configured. Like the production signaler, it never returns.
func (m MockSignalerContext) Throw(err error) {
	defer runtime.Goexit()
	if m.onThrow != nil {
		m.onThrow(err)
		return
	}
	m.t.Errorf("mock signaler context received error: %v", err)
}

func NewMockSignalerContext(t *testing.T, ctx context.Context) *MockSignalerContext {
	return &MockSignalerContext{
		Context: ctx,
		t:       t,
	}
}

func NewMockSignalerContextWithCancel(t *testing.T, parent context.Context) (*MockSignalerContext, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	return NewMockSignalerContext(t, ctx), cancel
}

// NewMockSignalerContextWithCallback returns a mock context which hands
// thrown errors to the given callback instead of failing the test.
func NewMockSignalerContextWithCallback(t *testing.T, parent context.Context, onThrow func(err error)) (*MockSignalerContext, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	return &MockSignalerContext{
		Context: ctx,
		t:       t,
		onThrow: onThrow,
	}, cancel
}
