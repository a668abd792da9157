package framework

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())
	errs.Add(errors.New("a"))
	require.EqualError(t, errs.Aggregate(), "a")
	errs.Add(errors.New("b"))
	require.EqualError(t, errs.Aggregate(), "Multiple errors:\na\nb")
}

func TestLoopControllersAndMessages(t *testing.T) {
	loop := NewLoop()
	var order []int
	var seen []Message
	loop.AddController(PrLvPostProc, ControlFunc(func(cc ControlContext) error {
		order = append(order, PrLvPostProc)
		cc.Messages().ProcessMessages(func(msg Message) bool {
			seen = append(seen, msg)
			return true
		})
		return nil
	}))
	loop.AddController(PrLvSafety, ControlFunc(func(cc ControlContext) error {
		order = append(order, PrLvSafety)
		cc.Messages().ProcessMessages(func(msg Message) bool {
			return msg == "taken"
		})
		return errors.New("logged only")
	}))
	loop.PostMessage("taken")
	loop.PostMessage("left")
	loop.RunIteration(context.Background())
	require.Equal(t, []int{PrLvSafety, PrLvPostProc}, order)
	require.Equal(t, []Message{"left"}, seen)

	loop.RunIteration(context.Background())
	require.Equal(t, []Message{"left"}, seen)
}

func TestLoopRun(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Millisecond
	var count int32
	loop.AddController(PrLvNormal, ControlFunc(func(cc ControlContext) error {
		atomic.AddInt32(&count, 1)
		return nil
	}))
	started := make(chan struct{})
	loop.AddRunnable(RunFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	<-started
	for atomic.LoadInt32(&count) < 3 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}

func TestRunnerStopsAll(t *testing.T) {
	runner := NewRunner()
	failure := errors.New("failed")
	runner.Go(
		NamedRun("blocking", RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		RunFunc(func(ctx context.Context) error {
			return failure
		}),
	)
	require.EqualError(t, runner.Wait(), "failed")
}

type testCloser struct {
	closed int32
	ch     chan struct{}
}

func (c *testCloser) Close() error {
	if atomic.AddInt32(&c.closed, 1) == 1 {
		close(c.ch)
	}
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	closer := &testCloser{ch: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-closer.ch
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&closer.closed))

	closer = &testCloser{ch: make(chan struct{})}
	err = RunWithContextCloser(context.Background(), closer, func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&closer.closed))
}

func TestLoopStopsWithRunnable(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Millisecond
	failure := errors.New("link lost")
	loop.AddRunnable(RunFunc(func(ctx context.Context) error {
		return failure
	}))
	require.EqualError(t, loop.Run(context.Background()), "link lost")
}
