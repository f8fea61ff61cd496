package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	name  string
	err   error
	calls atomic.Int32
}

func (c *countingRefresher) Name() string { return c.name }

func (c *countingRefresher) Refresh(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func (c *countingRefresher) Invalidate(context.Context) (bool, error) { return false, nil }

func TestNewWarmerService_Validation(t *testing.T) {
	_, err := NewWarmerService(WarmerServiceOptions{Interval: time.Minute})
	require.Error(t, err)

	_, err = NewWarmerService(WarmerServiceOptions{Resources: []Refresher{&countingRefresher{}}})
	require.Error(t, err)
}

func TestWarmerService_WarmOnce(t *testing.T) {
	ok := &countingRefresher{name: "/news/top"}
	bad := &countingRefresher{name: "/admin/common/info", err: errors.New("down")}
	svc, err := NewWarmerService(WarmerServiceOptions{Resources: []Refresher{ok, bad}, Interval: time.Minute})
	require.NoError(t, err)

	failed := svc.WarmOnce(context.Background())

	assert.Equal(t, 1, failed)
	assert.Equal(t, int32(1), ok.calls.Load())
	assert.Equal(t, int32(1), bad.calls.Load())
}

func TestWarmerService_RunStopsOnCancel(t *testing.T) {
	r := &countingRefresher{name: "/news/top"}
	svc, err := NewWarmerService(WarmerServiceOptions{Resources: []Refresher{r}, Interval: 20 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("warmer did not stop")
	}
}
