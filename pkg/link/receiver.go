package link

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/golang/glog"
)

// Receiver frames a byte stream into lines and writes response lines.
type Receiver struct {
	ReadWriter io.ReadWriter
	// MaxLen is the maximum line length, longer lines are truncated.
	MaxLen int

	pending   []byte
	discard   bool // dropping the excess of a truncated line
	err       error
	lock      sync.Mutex
	writeLock sync.Mutex

	arrivedCh chan struct{}
	doneCh    chan struct{}
	startOnce sync.Once
}

// NewReceiver creates a Receiver.
func NewReceiver(rw io.ReadWriter) *Receiver {
	return &Receiver{
		ReadWriter: rw,
		MaxLen:     MaxLineLen,
		arrivedCh:  make(chan struct{}, 1),
		doneCh:     make(chan struct{}),
	}
}

// Run reads the underlying stream until it fails or ctx is done.
func (r *Receiver) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	r.startOnce.Do(func() {
		go func() {
			errCh <- r.readLoop()
		}()
	})
	select {
	case <-ctx.Done():
		if closer, ok := r.ReadWriter.(io.Closer); ok {
			closer.Close()
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (r *Receiver) readLoop() error {
	buf := make([]byte, 64)
	for {
		n, err := r.ReadWriter.Read(buf)
		if n > 0 {
			r.lock.Lock()
			r.pending = append(r.pending, buf[:n]...)
			r.lock.Unlock()
			glog.V(4).Infof("link: recv %q", buf[:n])
			r.notify()
		}
		if err == ErrPeerChanged {
			r.lock.Lock()
			if len(r.pending) > 0 {
				glog.V(2).Infof("link: peer changed, dropped %q", r.pending)
			}
			r.pending, r.discard = nil, false
			r.lock.Unlock()
			continue
		}
		if err != nil {
			if err == io.EOF {
				err = ErrClosed
			}
			r.lock.Lock()
			r.err = err
			r.lock.Unlock()
			close(r.doneCh)
			return err
		}
	}
}

func (r *Receiver) notify() {
	select {
	case r.arrivedCh <- struct{}{}:
	default:
	}
}

// Available indicates at least one received byte is not consumed yet.
func (r *Receiver) Available() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.pending) > 0
}

// Arrived is signaled when new bytes are received.
func (r *Receiver) Arrived() <-chan struct{} {
	return r.arrivedCh
}

// ReadLine blocks until a full line is received.
func (r *Receiver) ReadLine(ctx context.Context) (Line, error) {
	for {
		r.lock.Lock()
		line, ok := r.takeLine()
		err := r.err
		r.lock.Unlock()
		if ok {
			if line.Truncated {
				glog.Warningf("link: line truncated to %d bytes: %s", len(line.Data), line)
			}
			return line, nil
		}
		if err != nil {
			return Line{}, err
		}
		select {
		case <-ctx.Done():
			return Line{}, ctx.Err()
		case <-r.arrivedCh:
		case <-r.doneCh:
		}
	}
}

func (r *Receiver) takeLine() (line Line, ok bool) {
	if r.discard {
		pos := bytes.IndexByte(r.pending, '\n')
		if pos < 0 {
			r.pending = r.pending[:0]
			return
		}
		r.pending, r.discard = r.pending[pos+1:], false
	}
	maxLen := r.MaxLen
	if maxLen <= 0 {
		maxLen = MaxLineLen
	}
	pos := bytes.IndexByte(r.pending, '\n')
	switch {
	case pos >= 0:
		line.Data = append([]byte(nil), r.pending[:pos]...)
		r.pending = r.pending[pos+1:]
		if l := len(line.Data); l > 0 && line.Data[l-1] == '\r' {
			line.Data = line.Data[:l-1]
		}
		if len(line.Data) > maxLen {
			line.Data, line.Truncated = line.Data[:maxLen], true
		}
	case len(r.pending) > maxLen:
		line.Data, line.Truncated = append([]byte(nil), r.pending[:maxLen]...), true
		r.pending, r.discard = r.pending[:0], true
	default:
		return
	}
	if len(r.pending) == 0 {
		r.pending = nil
	}
	return line, true
}

// WriteLine writes text terminated by CRLF.
func (r *Receiver) WriteLine(text string) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()
	glog.V(4).Infof("link: send %q", text)
	_, err := io.WriteString(r.ReadWriter, text+"\r\n")
	return err
}
