package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func() error
}

func (m *mockService) Start(ctx context.Context) error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	<-ctx.Done()
	return nil
}

func (m *mockService) Stop(context.Context) {
	m.stopped.Store(true)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func await(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycleStartsAndStopsServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)

	svc1 := &mockService{}
	svc2 := &mockService{}
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	waitFor(t, func() bool { return svc1.started.Load() && svc2.started.Load() })

	cancel()
	assert.NoError(t, await(t, done))
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycleStopsOnServiceError(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)

	healthy := &mockService{}
	boom := errors.New("listen failed")
	lc.Add("healthy", healthy)
	lc.Add("broken", &mockService{startFn: func() error { return boom }})

	err := await(t, runAsync(lc, context.Background()))
	assert.ErrorIs(t, err, boom)
	assert.True(t, healthy.stopped.Load())
}

func TestLifecycleJobFinishingKeepsRunning(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	lc := NewLifecycle(zap.New(core), time.Second)

	svc := &mockService{}
	var ran atomic.Bool
	lc.Add("svc", svc)
	lc.Go("job", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	waitFor(t, func() bool { return ran.Load() && logs.FilterMessage("job finished").Len() == 1 })
	assert.False(t, svc.stopped.Load())

	cancel()
	assert.NoError(t, await(t, done))
	assert.True(t, svc.stopped.Load())
}

func TestLifecycleJobContextCancelledOnShutdown(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)

	var cancelled atomic.Bool
	lc.Go("long job", func(ctx context.Context) error {
		<-ctx.Done()
		cancelled.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	cancel()
	require.NoError(t, await(t, done))
	waitFor(t, cancelled.Load)
}

func TestLifecycleServiceExitingEarlyShutsDown(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t), time.Second)
	lc.Add("quitter", &mockService{startFn: func() error { return nil }})

	err := await(t, runAsync(lc, context.Background()))
	assert.ErrorContains(t, err, "exited unexpectedly")
}

func TestLifecycleWarnsOnSlowStop(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	lc := NewLifecycle(zap.New(core), 10*time.Millisecond)
	lc.Add("slow", &FuncService{
		StartFn: func(ctx context.Context) error { <-ctx.Done(); return nil },
		StopFn:  func(ctx context.Context) { <-ctx.Done() },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)
	cancel()
	require.NoError(t, await(t, done))
	assert.Equal(t, 1, logs.FilterMessage("service stop exceeded timeout").Len())
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func(context.Context) error {
			started = true
			return nil
		},
		StopFn: func(context.Context) {
			stopped = true
		},
	}

	assert.NoError(t, svc.Start(context.Background()))
	assert.True(t, started)
	svc.Stop(context.Background())
	assert.True(t, stopped)

	assert.NotPanics(t, func() { (&FuncService{}).Stop(context.Background()) })
}
