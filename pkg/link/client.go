package link

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
)

// DefaultTimeout is the default time waiting for a response line.
const DefaultTimeout = time.Second

// Client provides controller side operations over the line protocol.
type Client struct {
	Timeout time.Duration

	recv *Receiver
	lock sync.Mutex
}

// NewClient creates a Client over rw. Run must be started before
// sending commands.
func NewClient(rw io.ReadWriter) *Client {
	recv := NewReceiver(rw)
	recv.MaxLen = 256
	return &Client{Timeout: DefaultTimeout, recv: recv}
}

// Receiver gets the wrapped Receiver.
func (c *Client) Receiver() *Receiver {
	return c.recv
}

// Run implements Runnable.
func (c *Client) Run(ctx context.Context) error {
	return c.recv.Run(ctx)
}

// Do sends a raw command line and returns the response line.
func (c *Client) Do(ctx context.Context, line []byte) (string, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.recv.WriteLine(string(line)); err != nil {
		return "", err
	}
	return c.readResponse(ctx)
}

// DoCommand sends a Command and returns the response line.
func (c *Client) DoCommand(ctx context.Context, cmd *Command) (string, error) {
	return c.Do(ctx, cmd.Bytes())
}

func (c *Client) readResponse(ctx context.Context) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	line, err := c.recv.ReadLine(ctx)
	if err == context.DeadlineExceeded {
		return "", ErrTimeout
	}
	return string(line.Data), err
}

func (c *Client) expect(ctx context.Context, cmd *Command, ok string) error {
	resp, err := c.DoCommand(ctx, cmd)
	if err != nil {
		return err
	}
	if resp != ok {
		return &ResponseError{Response: resp}
	}
	return nil
}

// Ping sends the liveness probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.expect(ctx, &Command{Opcode: OpPing}, RespPing)
}

// Identify queries the identification string.
func (c *Client) Identify(ctx context.Context) (string, error) {
	return c.DoCommand(ctx, &Command{Opcode: OpIdentify})
}

// SetSpeed sets left and right wheel speeds in percent.
func (c *Client) SetSpeed(ctx context.Context, left, right int) error {
	return c.expect(ctx, &Command{Opcode: OpSetSpeed, Args: []int{left, right}}, RespSpeedSet)
}

// Reset stops the robot and marks the connection dead.
func (c *Client) Reset(ctx context.Context) error {
	return c.expect(ctx, &Command{Opcode: OpReset}, RespReset)
}

// Scope streams analog samples of channel ch to fn until ctx is done,
// then stops the stream by sending an identify command and draining
// samples up to its response.
func (c *Client) Scope(ctx context.Context, ch int, fn func(uint16)) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	cmd := &Command{Opcode: OpScope, Args: []int{ch}}
	if err := c.recv.WriteLine(string(cmd.Bytes())); err != nil {
		return err
	}
	for {
		line, err := c.recv.ReadLine(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}
		resp := string(line.Data)
		if resp == RespScopeError {
			return &ResponseError{Response: resp}
		}
		val, err := strconv.ParseUint(resp, 10, 16)
		if err != nil {
			return fmt.Errorf("invalid sample %q: %v", resp, err)
		}
		fn(uint16(val))
	}
	return c.stopStream(context.Background())
}

func (c *Client) stopStream(ctx context.Context) error {
	if err := c.recv.WriteLine(string(OpIdentify)); err != nil {
		return err
	}
	for {
		resp, err := c.readResponse(ctx)
		if err != nil {
			return err
		}
		if resp == RespIdentify {
			return nil
		}
	}
}
