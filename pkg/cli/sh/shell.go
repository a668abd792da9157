// Package sh provides an interactive shell controlling the robot.
package sh

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/alfred/pkg/link"
	"github.com/robotalks/alfred/pkg/transport"
)

// ErrNotOpen indicates no link is open.
var ErrNotOpen = errors.New("link not open, use open first")

const closedPrompt = "[none] > "

var (
	evalOnly bool
	target   string
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.StringVar(&target, "robot", target, "Serial port or ws:// URL to open on start.")
}

// Printer prints command output, implemented by ishell.Context.
type Printer interface {
	Println(val ...interface{})
	Printf(format string, val ...interface{})
}

// Shell controls a robot over a link.
type Shell struct {
	Interactive bool
	Transport   *transport.Config
	Shell       *ishell.Shell

	lock   sync.Mutex
	target string
	client *link.Client
	closer io.Closer
	cancel func()
}

// New creates a shell with all commands registered.
func New(conf *transport.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Transport:   conf,
		Shell:       ishell.New(),
	}
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range Commands {
		s.Shell.AddCmd(s.ishellCmd(cmd))
	}
	return s
}

func (s *Shell) ishellCmd(cmd *Command) *ishell.Cmd {
	return &ishell.Cmd{
		Name:    cmd.Name,
		Aliases: cmd.Aliases,
		Help:    cmd.Help,
		Func: func(c *ishell.Context) {
			if err := cmd.Func(s, c, c.Args); err != nil {
				c.Err(err)
			}
		},
	}
}

// Open opens a link to target, a serial port or a ws:// URL, and
// identifies the robot. An empty target opens the configured port.
func (s *Shell) Open(target string) (*link.Identity, error) {
	rw, err := s.Transport.Dial(target)
	if err != nil {
		return nil, err
	}
	if target == "" {
		target = s.Transport.Port
	}
	client := link.NewClient(rw)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := client.Run(ctx); err != nil && err != context.Canceled {
			glog.Warningf("sh: link %s closed: %v", target, err)
		}
	}()
	id, err := client.Handshake(ctx)
	if err != nil {
		cancel()
		rw.Close()
		return nil, err
	}
	s.Close()
	s.lock.Lock()
	s.target, s.client, s.closer, s.cancel = target, client, rw, cancel
	s.lock.Unlock()
	s.setPrompt(target + " > ")
	return id, nil
}

// Close closes the current link.
func (s *Shell) Close() {
	s.lock.Lock()
	cancel, closer := s.cancel, s.closer
	s.client, s.closer, s.cancel, s.target = nil, nil, nil, ""
	s.lock.Unlock()
	if cancel != nil {
		cancel()
		closer.Close()
		s.setPrompt(closedPrompt)
	}
}

func (s *Shell) setPrompt(prompt string) {
	if s.Shell != nil {
		s.Shell.SetPrompt(prompt)
	}
}

// Client returns the client of the open link.
func (s *Shell) Client() (*link.Client, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.client == nil {
		return nil, ErrNotOpen
	}
	return s.client, nil
}

// Exec runs a command by name or alias.
func (s *Shell) Exec(p Printer, name string, args ...string) error {
	for _, cmd := range Commands {
		if cmd.Name == name {
			return cmd.Func(s, p, args)
		}
		for _, alias := range cmd.Aliases {
			if alias == name {
				return cmd.Func(s, p, args)
			}
		}
	}
	return fmt.Errorf("unknown command %q", name)
}

// Run runs the shell. args are processed as a single command
// without the interactive shell.
func (s *Shell) Run(target string, args ...string) {
	if target != "" {
		if _, err := s.Open(target); err != nil {
			log.Fatalf("open %s failed: %v", target, err)
		}
	}
	defer s.Close()
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(transport.NewConfig()).Run(target, flag.Args()...)
}
