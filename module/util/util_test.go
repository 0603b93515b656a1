package util_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/onflow/flow-blocksync/module/util"
	"github.com/onflow/flow-blocksync/utils/unittest"
)

func TestAllClosed(t *testing.T) {
	t.Run("closes after the last channel", func(t *testing.T) {
		first, second := make(chan struct{}), make(chan struct{})
		all := util.AllClosed(first, second)

		// closing out of order must not matter
		close(second)
		unittest.RequireNeverClosedWithin(t, all, 20*time.Millisecond, "closed while a channel was open")
		close(first)
		unittest.AssertClosesBefore(t, all, time.Second)
	})

	t.Run("no channels", func(t *testing.T) {
		unittest.AssertClosesBefore(t, util.AllClosed(), time.Second)
	})
}

func TestWaitError(t *testing.T) {
	expected := errors.New("irrecoverable")

	t.Run("error pending when done closes", func(t *testing.T) {
		done := make(chan struct{})
		close(done)
		// both cases are ready, the error must win every time
		for i := 0; i < 10; i++ {
			pending := make(chan error, 1)
			pending <- expected
			assert.ErrorIs(t, util.WaitError(pending, done), expected)
		}
	})

	t.Run("done without error", func(t *testing.T) {
		done := make(chan struct{})
		close(done)
		assert.NoError(t, util.WaitError(make(chan error), done))
	})

	t.Run("error without done", func(t *testing.T) {
		errChan := make(chan error, 1)
		errChan <- expected
		assert.ErrorIs(t, util.WaitError(errChan, make(chan struct{})), expected)
	})
}
