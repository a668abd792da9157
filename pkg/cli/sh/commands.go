package sh

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robotalks/alfred/pkg/link"
	"github.com/robotalks/alfred/pkg/transport"
)

// DefaultScopeSamples is the number of samples printed by scope.
const DefaultScopeSamples = 10

// Command is a shell command.
type Command struct {
	Name    string
	Aliases []string
	Help    string
	Func    func(s *Shell, p Printer, args []string) error
}

// Commands lists all shell commands.
var Commands = []*Command{
	{Name: "open", Aliases: []string{"o"}, Help: "[PORT|ws://HOST:PORT/PATH]", Func: openCmd},
	{Name: "close", Help: "", Func: closeCmd},
	{Name: "ports", Help: "", Func: portsCmd},
	{Name: "ping", Aliases: []string{"p"}, Help: "", Func: pingCmd},
	{Name: "ident", Aliases: []string{"i"}, Help: "", Func: identCmd},
	{Name: "speed", Aliases: []string{"s"}, Help: "LEFT RIGHT", Func: speedCmd},
	{Name: "stop", Help: "", Func: stopCmd},
	{Name: "reset", Aliases: []string{"r"}, Help: "", Func: resetCmd},
	{Name: "scope", Aliases: []string{"a"}, Help: "CHANNEL [SAMPLES]", Func: scopeCmd},
	{Name: "raw", Help: "LINE", Func: rawCmd},
}

func withClient(s *Shell, fn func(ctx context.Context, c *link.Client) error) error {
	client, err := s.Client()
	if err != nil {
		return err
	}
	return fn(context.Background(), client)
}

func intArgs(args []string, names ...string) ([]int, error) {
	if len(args) < len(names) {
		return nil, fmt.Errorf("expect %s", strings.Join(names, " "))
	}
	vals := make([]int, len(names))
	for n := range names {
		val, err := strconv.Atoi(args[n])
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", names[n], args[n])
		}
		vals[n] = val
	}
	return vals, nil
}

func openCmd(s *Shell, p Printer, args []string) error {
	var target string
	if len(args) > 0 {
		target = args[0]
	}
	id, err := s.Open(target)
	if err == nil {
		p.Printf("connected to %s\n", id)
	}
	return err
}

func closeCmd(s *Shell, p Printer, args []string) error {
	s.Close()
	return nil
}

func portsCmd(s *Shell, p Printer, args []string) error {
	ports, err := transport.Ports()
	if err != nil {
		return err
	}
	for _, port := range ports {
		p.Println(port)
	}
	return nil
}

func pingCmd(s *Shell, p Printer, args []string) error {
	return withClient(s, func(ctx context.Context, c *link.Client) error {
		start := time.Now()
		if err := c.Ping(ctx); err != nil {
			return err
		}
		p.Printf("OK %v\n", time.Since(start))
		return nil
	})
}

func identCmd(s *Shell, p Printer, args []string) error {
	return withClient(s, func(ctx context.Context, c *link.Client) error {
		ident, err := c.Identify(ctx)
		if err == nil {
			p.Println(ident)
		}
		return err
	})
}

func speedCmd(s *Shell, p Printer, args []string) error {
	vals, err := intArgs(args, "LEFT", "RIGHT")
	if err != nil {
		return err
	}
	return withClient(s, func(ctx context.Context, c *link.Client) error {
		if err := c.SetSpeed(ctx, vals[0], vals[1]); err != nil {
			return err
		}
		p.Println("OK")
		return nil
	})
}

func stopCmd(s *Shell, p Printer, args []string) error {
	return speedCmd(s, p, []string{"0", "0"})
}

func resetCmd(s *Shell, p Printer, args []string) error {
	return withClient(s, func(ctx context.Context, c *link.Client) error {
		if err := c.Reset(ctx); err != nil {
			return err
		}
		p.Println("OK")
		return nil
	})
}

func scopeCmd(s *Shell, p Printer, args []string) error {
	vals, err := intArgs(args, "CHANNEL")
	if err != nil {
		return err
	}
	samples := DefaultScopeSamples
	if len(args) > 1 {
		if samples, err = strconv.Atoi(args[1]); err != nil || samples <= 0 {
			return fmt.Errorf("invalid SAMPLES %q", args[1])
		}
	}
	return withClient(s, func(ctx context.Context, c *link.Client) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		var count int
		return c.Scope(ctx, vals[0], func(val uint16) {
			if count < samples {
				p.Println(val)
			}
			if count++; count >= samples {
				cancel()
			}
		})
	})
}

func rawCmd(s *Shell, p Printer, args []string) error {
	return withClient(s, func(ctx context.Context, c *link.Client) error {
		resp, err := c.Do(ctx, []byte(strings.Join(args, " ")))
		if err == nil {
			p.Println(resp)
		}
		return err
	})
}
