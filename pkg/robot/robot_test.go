package robot

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/alfred/pkg/hal"
	"github.com/robotalks/alfred/pkg/hal/sim"
	"github.com/robotalks/alfred/pkg/link"
	"github.com/robotalks/alfred/pkg/watchdog"
)

type pipeStream struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (s *pipeStream) Close() error {
	for _, c := range s.closers {
		c.Close()
	}
	return nil
}

func newPipeStreams() (*pipeStream, *pipeStream) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	return &pipeStream{Reader: ar, Writer: aw, closers: []io.Closer{ar, aw}},
		&pipeStream{Reader: br, Writer: bw, closers: []io.Closer{br, bw}}
}

type recordingObserver struct {
	lock  sync.Mutex
	cmds  []byte
	resps []string
}

func (o *recordingObserver) CommandHandled(cmd *link.Command, resp string, err error) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.cmds = append(o.cmds, cmd.Opcode)
	o.resps = append(o.resps, resp)
}

type robotTestCtx struct {
	t        *testing.T
	board    *sim.Board
	robot    *Robot
	watchdog *watchdog.Watchdog
	client   *link.Client
	observer *recordingObserver
	cancel   func()
}

func newRobotTestCtx(t *testing.T, conf *Config) *robotTestCtx {
	local, remote := newPipeStreams()
	tctx := &robotTestCtx{
		t:        t,
		board:    sim.NewBoard(),
		client:   link.NewClient(remote),
		observer: &recordingObserver{},
	}
	recv := link.NewReceiver(local)
	tctx.robot, tctx.watchdog = conf.NewRobot(recv, tctx.board)
	tctx.robot.Observer = tctx.observer
	ctx, cancel := context.WithCancel(context.Background())
	tctx.cancel = func() {
		cancel()
		local.Close()
		remote.Close()
	}
	go recv.Run(ctx)
	go tctx.robot.Run(ctx)
	go tctx.client.Run(ctx)
	return tctx
}

func (c *robotTestCtx) do(line string) string {
	resp, err := c.client.Do(context.Background(), []byte(line))
	require.NoError(c.t, err)
	return resp
}

func waitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRobotCommands(t *testing.T) {
	tctx := newRobotTestCtx(t, NewConfig())
	defer tctx.cancel()
	ctx := context.Background()

	require.NoError(t, tctx.client.Ping(ctx))
	require.Equal(t, link.RespPing, tctx.do(""))
	ident, err := tctx.client.Identify(ctx)
	require.NoError(t, err)
	require.Equal(t, "ALFRED 1.0", ident)
	require.Equal(t, link.RespNotRecognised, tctx.do("x"))
	require.Equal(t, link.RespNotRecognised, tctx.do("S,1,1"))
	require.True(t, tctx.board.Indicator())
	require.True(t, tctx.robot.State.Connected())

	tctx.observer.lock.Lock()
	defer tctx.observer.lock.Unlock()
	require.Equal(t, []byte{link.OpPing, link.OpPing, link.OpIdentify, 'x', 'S'}, tctx.observer.cmds)
	require.Equal(t, link.RespNotRecognised, tctx.observer.resps[4])
}

func TestRobotSetSpeed(t *testing.T) {
	tctx := newRobotTestCtx(t, NewConfig())
	defer tctx.cancel()

	require.Equal(t, link.RespSpeedSet, tctx.do("s,100,0"))
	require.Equal(t, hal.Duty{Value: 1023, Enabled: true}, tctx.board.Output(hal.Left))
	require.False(t, tctx.board.Output(hal.Right).Enabled)
	require.Zero(t, tctx.board.Output(hal.Right).Value)

	require.Equal(t, link.RespSpeedSet, tctx.do("s,-50,250"))
	require.Equal(t, hal.Duty{Value: 511, Reverse: true, Enabled: true}, tctx.board.Output(hal.Left))
	require.Equal(t, hal.Duty{Value: 1023, Enabled: true}, tctx.board.Output(hal.Right))

	// a malformed line leaves the outputs untouched.
	require.Equal(t, link.RespSpeedError, tctx.do("s,abc,5"))
	require.Equal(t, link.RespSpeedError, tctx.do("s,10"))
	require.Equal(t, hal.Duty{Value: 511, Reverse: true, Enabled: true}, tctx.board.Output(hal.Left))

	// disabling keeps the direction bit.
	require.Equal(t, link.RespSpeedSet, tctx.do("s,0,0"))
	require.Equal(t, hal.Duty{Reverse: true}, tctx.board.Output(hal.Left))
}

func TestRobotReset(t *testing.T) {
	tctx := newRobotTestCtx(t, NewConfig())
	defer tctx.cancel()

	require.NoError(t, tctx.client.SetSpeed(context.Background(), 40, 40))
	require.NoError(t, tctx.client.Reset(context.Background()))
	require.False(t, tctx.robot.State.Connected())
	require.Zero(t, tctx.board.Output(hal.Left).Value)
	require.Zero(t, tctx.board.Output(hal.Right).Value)

	// the next line revives the connection.
	require.NoError(t, tctx.client.Ping(context.Background()))
	require.True(t, tctx.robot.State.Connected())
}

func TestRobotScope(t *testing.T) {
	tctx := newRobotTestCtx(t, NewConfig())
	defer tctx.cancel()

	ctx, cancel := context.WithCancel(context.Background())
	var samples []uint16
	err := tctx.client.Scope(ctx, 3, func(val uint16) {
		if samples = append(samples, val); len(samples) >= 5 {
			cancel()
		}
	})
	require.NoError(t, err)
	require.True(t, len(samples) >= 5)
	for i := 1; i < 5; i++ {
		require.Equal(t, (samples[i-1]+4)&0x3ff, samples[i])
	}

	// the stream is over, regular commands are answered.
	require.Equal(t, link.RespSpeedSet, tctx.do("s,10,10"))
}

func TestRobotScopeEndsOnDisconnect(t *testing.T) {
	tctx := newRobotTestCtx(t, NewConfig())
	defer tctx.cancel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var count int32
	scopeDone := make(chan error, 1)
	go func() {
		scopeDone <- tctx.client.Scope(ctx, 1, func(uint16) {
			if atomic.AddInt32(&count, 1) == 3 {
				tctx.robot.State.Disconnect()
			}
		})
	}()

	waitFor(t, func() bool { return atomic.LoadInt32(&count) >= 3 })
	// samples already on the link drain, then the stream is silent.
	var settled int32
	waitFor(t, func() bool {
		before := atomic.LoadInt32(&count)
		time.Sleep(20 * time.Millisecond)
		settled = atomic.LoadInt32(&count)
		return settled == before
	})
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, settled, atomic.LoadInt32(&count))
	require.False(t, tctx.robot.State.Connected())

	// the next line is dispatched as a regular command.
	cancel()
	require.NoError(t, <-scopeDone)
	require.True(t, tctx.robot.State.Connected())
	require.Equal(t, link.RespSpeedSet, tctx.do("s,10,10"))

	tctx.observer.lock.Lock()
	defer tctx.observer.lock.Unlock()
	require.Equal(t, []byte{link.OpScope, link.OpIdentify, link.OpSetSpeed}, tctx.observer.cmds)
}

func TestRobotScopeErrors(t *testing.T) {
	tctx := newRobotTestCtx(t, NewConfig())
	defer tctx.cancel()

	for _, line := range []string{"a,8", "a,-1", "a", "a7", "a,x"} {
		require.Equal(t, link.RespScopeError, tctx.do(line), line)
	}
}

func TestRobotScopePaced(t *testing.T) {
	conf := NewConfig()
	conf.SampleInterval = time.Millisecond
	tctx := newRobotTestCtx(t, conf)
	defer tctx.cancel()

	ctx, cancel := context.WithCancel(context.Background())
	var count int
	require.NoError(t, tctx.client.Scope(ctx, 0, func(uint16) {
		if count++; count >= 3 {
			cancel()
		}
	}))
	ident, err := tctx.client.Identify(context.Background())
	require.NoError(t, err)
	require.Equal(t, link.RespIdentify, ident)
}

func TestRobotWatchdog(t *testing.T) {
	conf := NewConfig()
	conf.WatchdogSubTick = time.Millisecond
	conf.WatchdogThreshold = 10
	tctx := newRobotTestCtx(t, conf)
	defer tctx.cancel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tctx.watchdog.NewLoop().Run(ctx)

	require.NoError(t, tctx.client.SetSpeed(context.Background(), 60, -60))
	waitFor(t, func() bool { return !tctx.robot.State.Connected() })
	waitFor(t, func() bool { return !tctx.board.Indicator() })
	require.Zero(t, tctx.board.Output(hal.Left).Value)
	require.Zero(t, tctx.board.Output(hal.Right).Value)

	cancel()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, tctx.client.Ping(context.Background()))
	require.True(t, tctx.board.Indicator())
	require.True(t, tctx.robot.State.Connected())
}

func TestRobotSetSpeedDisconnected(t *testing.T) {
	r := New(link.NewReceiver(nil), sim.NewBoard(), &watchdog.ConnState{})
	require.Equal(t, ErrDisconnected, r.setSpeed(10, 10))
	left, _ := r.Motors.Outputs()
	require.False(t, left.Enabled)
}
