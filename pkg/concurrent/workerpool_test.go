// Copyright The DocuFlow Authors.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_Run(t *testing.T) {
	ctx := context.Background()
	pool := NewWorkerPool(2)

	var counter int64
	functions := []func() error{
		func() error { atomic.AddInt64(&counter, 1); return nil },
		func() error { atomic.AddInt64(&counter, 2); return nil },
		func() error { atomic.AddInt64(&counter, 3); return nil },
	}

	err := pool.Run(ctx, functions...)
	require.NoError(t, err)
	assert.Equal(t, int64(6), atomic.LoadInt64(&counter))
}

func TestWorkerPool_Run_WithError(t *testing.T) {
	ctx := context.Background()
	pool := NewWorkerPool(1)

	wantErr := errors.New("boom")
	err := pool.Run(ctx,
		func() error { return wantErr },
		func() error { return nil },
	)
	assert.ErrorIs(t, err, wantErr)
}

func TestWorkerPool_Run_NoFunctions(t *testing.T) {
	pool := NewWorkerPool(2)
	assert.NoError(t, pool.Run(context.Background()))
}

func TestWorkerPool_RunAll_CollectsAllErrors(t *testing.T) {
	ctx := context.Background()
	pool := NewWorkerPool(2)

	var counter int64
	errs := pool.RunAll(ctx,
		func() error { return errors.New("first") },
		func() error { atomic.AddInt64(&counter, 1); return nil },
		func() error { return errors.New("second") },
		func() error { atomic.AddInt64(&counter, 1); return nil },
	)

	assert.Len(t, errs, 2)
	// All functions ran despite the failures.
	assert.Equal(t, int64(2), atomic.LoadInt64(&counter))
}

func TestWorkerPool_RunAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewWorkerPool(2)
	errs := pool.RunAll(ctx, func() error { return nil })
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestNewWorkerPool_MinimumOneWorker(t *testing.T) {
	pool := NewWorkerPool(0)
	assert.Equal(t, 1, pool.workerCount)
}
