package startup

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		InitialDelay: time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		MaxAttempts:  attempts,
		Multiplier:   2.0,
	}
}

func refused() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
}

func TestIsNetworkError(t *testing.T) {
	assert.False(t, IsNetworkError(nil))
	assert.True(t, IsNetworkError(refused()))
	assert.True(t, IsNetworkError(errors.New("dial tcp 127.0.0.1:1: connect: connection refused")))
	assert.False(t, IsNetworkError(errors.New("permission denied")))
	assert.False(t, IsNetworkError(context.Canceled))
	assert.False(t, IsNetworkError(context.DeadlineExceeded))
}

func TestWithRetry_SucceedsAfterNetworkErrors(t *testing.T) {
	log := zerolog.New(zerolog.NewTestWriter(t))
	calls := 0

	err := WithRetry(context.Background(), "probe", fastConfig(5), func(context.Context) error {
		calls++
		if calls < 3 {
			return refused()
		}
		return nil
	}, &log)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_NonNetworkErrorFailsFast(t *testing.T) {
	log := zerolog.Nop()
	boom := errors.New("boom")
	calls := 0

	err := WithRetry(context.Background(), "probe", fastConfig(5), func(context.Context) error {
		calls++
		return boom
	}, &log)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_GivesUp(t *testing.T) {
	log := zerolog.Nop()
	calls := 0

	err := WithRetry(context.Background(), "probe", fastConfig(3), func(context.Context) error {
		calls++
		return refused()
	}, &log)

	assert.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	log := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, "probe", fastConfig(3), func(context.Context) error {
		t.Fatal("fn must not run with a cancelled context")
		return nil
	}, &log)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitAndBackoff_CapsDelay(t *testing.T) {
	log := zerolog.Nop()
	cfg := fastConfig(3)
	next := waitAndBackoff(context.Background(), &log, "probe", 1, cfg, 3*time.Millisecond, refused())
	assert.Equal(t, cfg.MaxDelay, next)
}
