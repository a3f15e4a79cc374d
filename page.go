package liveframe

import (
	"fmt"
	"log"
	"sync"

	"github.com/livefir/liveframe/internal/metrics"
)

// frameStart remembers the arguments of a session start so a manual retry
// can create a brand-new session for the same slot.
type frameStart struct {
	url string
	cfg FrameConfig
}

// Page owns the load sessions for one connected host page. It is the
// CommandSink its sessions write to: commands buffer while no client is
// attached and flush, in order, on the next attach, so a briefly
// disconnected client misses nothing.
type Page struct {
	id        string
	collector *metrics.Collector
	status    string
	onOutcome func(Outcome)

	mu       sync.Mutex
	bindings map[string]ViewportBinding
	sessions map[string]*Session
	starts   map[string]frameStart
	closed   bool

	sinkMu  sync.Mutex
	conn    CommandSink
	backlog []Command
}

func newPage(id string, collector *metrics.Collector, status string, onOutcome func(Outcome)) *Page {
	return &Page{
		id:        id,
		collector: collector,
		status:    status,
		onOutcome: onOutcome,
		bindings:  make(map[string]ViewportBinding),
		sessions:  make(map[string]*Session),
		starts:    make(map[string]frameStart),
	}
}

// ID returns the page's resume id.
func (p *Page) ID() string {
	return p.id
}

// RegisterBinding makes a viewport binding available to StartSession. The
// host resolves bindings once; the page never derives element ids itself.
func (p *Page) RegisterBinding(b ViewportBinding) error {
	if b.Container == "" {
		return fmt.Errorf("binding requires a container id")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPageClosed
	}
	p.bindings[b.Container] = b
	return nil
}

// StartSession begins a load session for containerID. The call is
// fire-and-forget: an unregistered container id is reported once as a
// diagnostic and nothing else happens. An existing session on the slot is
// closed first so the new session never receives stale signals.
func (p *Page) StartSession(containerID, url string, cfg FrameConfig) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	b, ok := p.bindings[containerID]
	if !ok {
		p.mu.Unlock()
		p.collector.BindingNotFound()
		log.Printf("liveframe: %v: %q", ErrBindingNotFound, containerID)
		return
	}

	if old := p.sessions[containerID]; old != nil {
		old.Close()
	}

	s := newSession(b, url, cfg, p, p.collector, p.status, p.onOutcome)
	p.sessions[containerID] = s
	p.starts[containerID] = frameStart{url: url, cfg: cfg}
	p.mu.Unlock()

	s.Start()
}

// Session returns the current session for a container, if any.
func (p *Page) Session(containerID string) (*Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[containerID]
	return s, ok
}

// handleMessage routes one parsed client message to its session.
func (p *Page) handleMessage(msg *clientMessage) error {
	switch msg.Type {
	case "signal":
		p.mu.Lock()
		s := p.sessions[msg.Container]
		p.mu.Unlock()

		if s == nil {
			return fmt.Errorf("no session for container %q", msg.Container)
		}
		if msg.Event == "error" {
			s.HandleError(msg.Epoch)
		} else {
			s.HandleLoad(msg.Epoch, msg.Blocked, msg.Snapshot)
		}
		return nil

	case "retry":
		return p.handleRetry(msg.Container)

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// handleRetry services a retry-control activation: remove the control,
// clear the status area, and start a brand-new session with the original
// arguments. The attempt counter starts over at zero.
func (p *Page) handleRetry(containerID string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPageClosed
	}
	s := p.sessions[containerID]
	start, known := p.starts[containerID]
	b, bound := p.bindings[containerID]
	p.mu.Unlock()

	if !known || !bound {
		return fmt.Errorf("nothing to retry for container %q", containerID)
	}

	// The control only exists after exhaustion; a click racing a live
	// session is ignored.
	if s != nil && !s.State().terminal() {
		return nil
	}

	p.collector.ManualRetry()
	log.Printf("liveframe: %s: manual retry", containerID)

	if b.Status != "" {
		_ = p.Send(Command{Op: OpRetryControl, Container: containerID, Target: b.Status, Visible: false})
		_ = p.Send(Command{Op: OpStatus, Container: containerID, Target: b.Status, Text: ""})
	}

	p.StartSession(containerID, start.url, start.cfg)
	return nil
}

// Send implements CommandSink for the page's sessions.
func (p *Page) Send(c Command) error {
	p.sinkMu.Lock()
	defer p.sinkMu.Unlock()

	if p.conn == nil {
		p.backlog = append(p.backlog, c)
		return nil
	}
	return p.conn.Send(c)
}

// attach connects a client sink and flushes any buffered commands to it in
// their original order.
func (p *Page) attach(sink CommandSink) {
	p.sinkMu.Lock()
	defer p.sinkMu.Unlock()

	p.conn = sink
	for _, c := range p.backlog {
		if err := sink.Send(c); err != nil {
			log.Printf("liveframe: backlog flush failed: %v", err)
			break
		}
	}
	p.backlog = nil
}

// detach disconnects the client sink; subsequent commands buffer again.
func (p *Page) detach() {
	p.sinkMu.Lock()
	defer p.sinkMu.Unlock()
	p.conn = nil
}

// Close tears down every session on the page. Closed pages drop all
// subsequent starts and signals.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	for _, s := range p.sessions {
		s.Close()
	}
}
