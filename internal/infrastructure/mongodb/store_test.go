package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_EsperaLineal(t *testing.T) {
	var waits []time.Duration
	p := retryPolicy{
		attempts: 3,
		backoff:  time.Second,
		wait: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}
	calls := 0
	err := p.run(context.Background(), func(context.Context, int) error {
		calls++
		return errors.New("sin servidor")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits)
}

func TestRetryPolicy_ExitoEnSegundoIntento(t *testing.T) {
	p := retryPolicy{attempts: 3, backoff: time.Millisecond, wait: sleepCtx}
	calls := 0
	err := p.run(context.Background(), func(_ context.Context, attempt int) error {
		calls++
		if attempt < 2 {
			return errors.New("todavía no")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryPolicy_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := retryPolicy{attempts: 3, backoff: time.Hour, wait: sleepCtx}
	err := p.run(ctx, func(context.Context, int) error { return errors.New("falla") })
	assert.ErrorIs(t, err, context.Canceled)
}
