// Package websocket carries the robot link over websocket connections.
package websocket

import (
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/alfred/pkg/link"
)

type session struct {
	conn *websocket.Conn
	done chan struct{}
	once sync.Once
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// Listener accepts controllers over websocket and exposes the latest
// one as a byte stream. A new connection replaces the previous one.
// Writes without a controller are dropped, like a serial line without
// a peer.
type Listener struct {
	listener net.Listener
	server   *http.Server

	lock    sync.Mutex
	cond    *sync.Cond
	current *session
	closed  bool
	// last session Read returned bytes from.
	reading *session
}

// Listen starts serving websocket connections on addr at path.
func Listen(addr, path string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	l := &Listener{listener: ln}
	l.cond = sync.NewCond(&l.lock)
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(l.serve))
	l.server = &http.Server{Handler: mux}
	go l.server.Serve(ln)
	glog.Infof("websocket: listening on %s%s", ln.Addr(), path)
	return l, nil
}

// Addr returns the listening address.
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

func (l *Listener) serve(conn *websocket.Conn) {
	conn.PayloadType = websocket.BinaryFrame
	s := &session{conn: conn, done: make(chan struct{})}
	l.lock.Lock()
	if l.closed {
		l.lock.Unlock()
		return
	}
	prev := l.current
	l.current = s
	l.cond.Broadcast()
	l.lock.Unlock()
	if prev != nil {
		glog.Infof("websocket: %s replaced by %s", prev.conn.Request().RemoteAddr, conn.Request().RemoteAddr)
		prev.close()
	} else {
		glog.Infof("websocket: %s connected", conn.Request().RemoteAddr)
	}
	// the handler must not return until the session is over,
	// returning closes the connection.
	<-s.done
}

func (l *Listener) drop(s *session) {
	l.lock.Lock()
	if l.current == s {
		l.current = nil
		glog.Infof("websocket: %s disconnected", s.conn.Request().RemoteAddr)
	}
	l.lock.Unlock()
	s.close()
}

// Read implements io.Reader. It blocks while no controller is connected
// and returns io.EOF once the Listener is closed. The first Read from a
// controller following another one returns link.ErrPeerChanged with no
// data.
func (l *Listener) Read(p []byte) (int, error) {
	for {
		l.lock.Lock()
		for l.current == nil && !l.closed {
			l.cond.Wait()
		}
		s, closed := l.current, l.closed
		prev := l.reading
		l.reading = s
		l.lock.Unlock()
		if closed {
			return 0, io.EOF
		}
		if prev != nil && prev != s {
			return 0, link.ErrPeerChanged
		}
		n, err := s.conn.Read(p)
		if err != nil {
			l.drop(s)
		}
		if n > 0 {
			return n, nil
		}
	}
}

// Write implements io.Writer.
func (l *Listener) Write(p []byte) (int, error) {
	l.lock.Lock()
	s := l.current
	l.lock.Unlock()
	if s == nil {
		return len(p), nil
	}
	if _, err := s.conn.Write(p); err != nil {
		glog.V(2).Infof("websocket: write error: %v", err)
		l.drop(s)
	}
	return len(p), nil
}

// Close implements io.Closer.
func (l *Listener) Close() error {
	l.lock.Lock()
	if l.closed {
		l.lock.Unlock()
		return nil
	}
	l.closed = true
	s := l.current
	l.current = nil
	l.cond.Broadcast()
	l.lock.Unlock()
	if s != nil {
		s.close()
	}
	return l.server.Close()
}

// Dial connects to a Listener as a controller.
func Dial(url string) (*websocket.Conn, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}
