package telemetry

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/alfred/pkg/framework"
	"github.com/robotalks/alfred/pkg/hal"
	"github.com/robotalks/alfred/pkg/link"
	"github.com/robotalks/alfred/pkg/watchdog"
)

// DefaultInterval is the default status publish interval.
const DefaultInterval = time.Second

// Sink publishes payloads to topics.
type Sink interface {
	Publish(topic string, payload []byte, retain bool) error
}

// OutputReader reads the current motor outputs.
type OutputReader interface {
	Outputs() (left, right hal.Duty)
}

// Publisher publishes the robot status. It is the remote connection
// indicator and observes dispatched commands.
// SetIndicator and Control never wait for the Sink, the payloads are
// published from Run.
type Publisher struct {
	Sink     Sink
	Meta     Meta
	Motors   OutputReader
	Interval time.Duration

	commands    uint64
	failures    uint64
	disconnects uint64

	lock      sync.Mutex
	connected bool
	sent      bool
	resend    bool
	lastPub   time.Time

	indicatorCh chan struct{}
	statusCh    chan []byte
}

// NewPublisher creates a Publisher.
func NewPublisher(sink Sink, meta Meta, motors OutputReader) *Publisher {
	return &Publisher{
		Sink:        sink,
		Meta:        meta,
		Motors:      motors,
		Interval:    DefaultInterval,
		indicatorCh: make(chan struct{}, 1),
		statusCh:    make(chan []byte, 1),
	}
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "telemetry"
}

// Run implements Runnable. It publishes indicator changes and status
// updates queued by SetIndicator and Control.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.indicatorCh:
			p.publishIndicator()
		case payload := <-p.statusCh:
			p.publish(TopicStatus, payload, false)
		}
	}
}

func (p *Publisher) publishIndicator() {
	p.lock.Lock()
	on, changed := p.connected, p.resend || p.connected != p.sent
	p.sent, p.resend = on, false
	p.lock.Unlock()
	if changed {
		p.publish(TopicConnected, connectedPayload(on), true)
	}
}

func (p *Publisher) wakeIndicator() {
	select {
	case p.indicatorCh <- struct{}{}:
	default:
	}
}

func (p *Publisher) topic(name string) string {
	return p.Meta.ID + "/" + name
}

func (p *Publisher) publish(name string, payload []byte, retain bool) {
	if err := p.Sink.Publish(p.topic(name), payload, retain); err != nil {
		glog.Warningf("telemetry: publish %s error: %v", name, err)
	}
}

// Announce publishes the meta and the connection state, used when the
// broker connection is (re-)established.
func (p *Publisher) Announce() {
	meta, err := json.Marshal(&p.Meta)
	if err != nil {
		panic(err)
	}
	p.publish(TopicMeta, meta, true)
	p.lock.Lock()
	p.resend = true
	p.lock.Unlock()
	p.wakeIndicator()
}

// Withdraw clears the retained meta and reports disconnected.
func (p *Publisher) Withdraw() {
	p.publish(TopicConnected, connectedPayload(false), true)
	p.publish(TopicMeta, nil, true)
}

func connectedPayload(connected bool) []byte {
	if connected {
		return []byte("1")
	}
	return []byte("0")
}

// SetIndicator implements hal.Indicator.
func (p *Publisher) SetIndicator(on bool) {
	p.lock.Lock()
	changed := p.connected != on
	p.connected = on
	p.lock.Unlock()
	if changed {
		p.wakeIndicator()
	}
}

// CommandHandled implements robot.Observer.
func (p *Publisher) CommandHandled(cmd *link.Command, resp string, err error) {
	atomic.AddUint64(&p.commands, 1)
	if err != nil {
		atomic.AddUint64(&p.failures, 1)
	}
}

// Status builds the current status.
func (p *Publisher) Status(now time.Time) *Status {
	p.lock.Lock()
	st := &Status{Connected: p.connected}
	p.lock.Unlock()
	st.Commands = atomic.LoadUint64(&p.commands)
	st.Failures = atomic.LoadUint64(&p.failures)
	st.Disconnects = atomic.LoadUint64(&p.disconnects)
	st.Timestamp = now.UnixNano() / int64(time.Millisecond)
	if p.Motors != nil {
		left, right := p.Motors.Outputs()
		st.Left, st.Right = wheelOf(left), wheelOf(right)
	}
	return st
}

func wheelOf(d hal.Duty) *Wheel {
	return &Wheel{Duty: uint32(d.Value), Reverse: d.Reverse, Enabled: d.Enabled}
}

// PublishStatus queues the status for Run. A status still queued is
// replaced.
func (p *Publisher) PublishStatus(now time.Time) {
	payload, err := proto.Marshal(p.Status(now))
	if err != nil {
		glog.Errorf("telemetry: encode status error: %v", err)
		return
	}
	p.lock.Lock()
	p.lastPub = now
	p.lock.Unlock()
	for {
		select {
		case p.statusCh <- payload:
			return
		default:
		}
		select {
		case <-p.statusCh:
			glog.V(2).Info("telemetry: dropped stale status")
		default:
		}
	}
}

// Control implements Controller.
func (p *Publisher) Control(cc fx.ControlContext) error {
	var urgent bool
	cc.Messages().ProcessMessages(func(msg fx.Message) bool {
		if _, ok := msg.(*watchdog.DisconnectedMsg); ok {
			atomic.AddUint64(&p.disconnects, 1)
			urgent = true
			return true
		}
		return false
	})
	now := cc.Time()
	p.lock.Lock()
	due := now.Sub(p.lastPub) >= p.Interval
	p.lock.Unlock()
	if urgent || due {
		p.PublishStatus(now)
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (p *Publisher) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, p)
}
