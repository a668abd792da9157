package sh

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/alfred/pkg/hal"
	"github.com/robotalks/alfred/pkg/hal/sim"
	"github.com/robotalks/alfred/pkg/link"
	"github.com/robotalks/alfred/pkg/robot"
	"github.com/robotalks/alfred/pkg/transport"
	"github.com/robotalks/alfred/pkg/transport/websocket"
)

type bufPrinter struct {
	lines []string
}

func (p *bufPrinter) Println(val ...interface{}) {
	p.lines = append(p.lines, strings.TrimSuffix(fmt.Sprintln(val...), "\n"))
}

func (p *bufPrinter) Printf(format string, val ...interface{}) {
	p.lines = append(p.lines, strings.TrimSuffix(fmt.Sprintf(format, val...), "\n"))
}

func (p *bufPrinter) take() []string {
	lines := p.lines
	p.lines = nil
	return lines
}

func startRobot(t *testing.T) (*sim.Board, string, func()) {
	l, err := websocket.Listen("127.0.0.1:0", "/link")
	require.NoError(t, err)
	board := sim.NewBoard()
	r, _ := robot.NewConfig().NewRobot(link.NewReceiver(l), board)
	ctx, cancel := context.WithCancel(context.Background())
	go r.Link.Run(ctx)
	go r.Run(ctx)
	return board, "ws://" + l.Addr().String() + "/link", func() {
		cancel()
		l.Close()
	}
}

func TestShellNotOpen(t *testing.T) {
	s := &Shell{Transport: transport.NewConfig()}
	p := &bufPrinter{}
	require.Equal(t, ErrNotOpen, s.Exec(p, "ping"))
	require.Error(t, s.Exec(p, "nope"))
	require.Error(t, s.Exec(p, "speed", "1"))
	require.Error(t, s.Exec(p, "speed", "a", "1"))
}

func TestShellCommands(t *testing.T) {
	board, url, stop := startRobot(t)
	defer stop()

	s := &Shell{Transport: transport.NewConfig()}
	defer s.Close()
	p := &bufPrinter{}
	require.NoError(t, s.Exec(p, "open", url))
	require.Equal(t, []string{"connected to ALFRED 1.0"}, p.take())

	require.NoError(t, s.Exec(p, "ident"))
	require.Equal(t, []string{link.RespIdentify}, p.take())

	require.NoError(t, s.Exec(p, "ping"))
	require.True(t, strings.HasPrefix(p.take()[0], "OK"))

	require.NoError(t, s.Exec(p, "s", "100", "-50"))
	require.Equal(t, []string{"OK"}, p.take())
	require.Equal(t, hal.Duty{Value: 1023, Enabled: true}, board.Output(hal.Left))
	require.Equal(t, hal.Duty{Value: 511, Reverse: true, Enabled: true}, board.Output(hal.Right))

	require.NoError(t, s.Exec(p, "stop"))
	p.take()
	require.False(t, board.Output(hal.Left).Enabled)

	require.NoError(t, s.Exec(p, "scope", "1", "3"))
	require.Equal(t, []string{"0", "2", "4"}, p.take())

	require.Error(t, s.Exec(p, "scope", "9"))

	require.NoError(t, s.Exec(p, "raw", "x"))
	require.Equal(t, []string{link.RespNotRecognised}, p.take())

	require.NoError(t, s.Exec(p, "reset"))
	require.Equal(t, []string{"OK"}, p.take())

	require.NoError(t, s.Exec(p, "close"))
	require.Equal(t, ErrNotOpen, s.Exec(p, "ident"))
}
