package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"nourish/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconcilerFunc func(ctx context.Context) (*service.ReconcileReport, error)

func (f reconcilerFunc) Run(ctx context.Context) (*service.ReconcileReport, error) {
	return f(ctx)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduleReconcile_EmptySpecDisables(t *testing.T) {
	s := NewScheduler(quietLogger(), time.Second)
	id, err := s.ScheduleReconcile("", reconcilerFunc(func(context.Context) (*service.ReconcileReport, error) {
		t.Fatal("must not run")
		return nil, nil
	}))
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.Equal(t, 0, s.Entries())
}

func TestScheduleReconcile_InvalidSpec(t *testing.T) {
	s := NewScheduler(quietLogger(), time.Second)
	_, err := s.ScheduleReconcile("every now and then", reconcilerFunc(nil))
	require.Error(t, err)
}

func TestScheduleReconcile_Runs(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(quietLogger(), time.Second)
	_, err := s.ScheduleReconcile("@every 1s", reconcilerFunc(func(ctx context.Context) (*service.ReconcileReport, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		runs.Add(1)
		return &service.ReconcileReport{FollowersRepaired: []uint{1}}, nil
	}))
	require.NoError(t, err)
	require.Equal(t, 1, s.Entries())

	s.Start()
	defer s.Stop(context.Background())

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestRunReconcile_FailureIsLogged(t *testing.T) {
	s := NewScheduler(quietLogger(), time.Second)
	called := false
	s.runReconcile(reconcilerFunc(func(context.Context) (*service.ReconcileReport, error) {
		called = true
		return nil, errors.New("store down")
	}))
	assert.True(t, called)
}
