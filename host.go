// Package liveframe embeds remote documents inside bounded viewport slots
// of a host page and drives each embedding through a bounded retry
// protocol. The server owns the retry state machine; a thin browser client
// executes viewport commands and reports completion signals back over a
// WebSocket.
package liveframe

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/livefir/liveframe/internal/metrics"
	"github.com/livefir/liveframe/internal/session"
)

// Host wires a manifest to pages, the WebSocket transport, the rendered
// host page, and metrics. One Host serves many concurrent pages; each page
// gets its own isolated sessions.
type Host struct {
	manifest  *Manifest
	registry  *session.Registry
	collector *metrics.Collector
	upgrader  *websocket.Upgrader

	status    string
	pageTTL   time.Duration
	ownsPage  bool // serving the built-in host page, so normalize element ids
	onOutcome func(Outcome)
}

// HostOption configures a Host instance
type HostOption func(*Host) error

// NewHost creates a Host for the given manifest. By default the Host serves
// its built-in page markup, so manifest element ids are normalized to the
// ids that markup creates.
func NewHost(m *Manifest, options ...HostOption) (*Host, error) {
	if m == nil {
		return nil, fmt.Errorf("manifest is required")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	h := &Host{
		manifest:  m,
		collector: metrics.NewCollector(),
		status:    defaultFailureStatus,
		pageTTL:   time.Hour,
		ownsPage:  true,
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	for _, option := range options {
		if err := option(h); err != nil {
			return nil, err
		}
	}

	if h.ownsPage {
		m.normalize()
	}
	h.registry = session.NewRegistry(h.pageTTL)
	return h, nil
}

// WithPageTTL sets how long a disconnected page stays resumable
func WithPageTTL(ttl time.Duration) HostOption {
	return func(h *Host) error {
		if ttl <= 0 {
			return fmt.Errorf("page TTL must be positive")
		}
		h.pageTTL = ttl
		return nil
	}
}

// WithFailureStatus overrides the status text shown when retries exhaust
func WithFailureStatus(text string) HostOption {
	return func(h *Host) error {
		if text == "" {
			return fmt.Errorf("failure status text cannot be empty")
		}
		h.status = text
		return nil
	}
}

// WithExplicitBindings disables element id normalization for hosts that
// embed frames in their own markup. Absent ids then mean absent elements
// and the corresponding commands are skipped.
func WithExplicitBindings() HostOption {
	return func(h *Host) error {
		h.ownsPage = false
		return nil
	}
}

// WithOutcomeHook registers a function invoked whenever a session reaches
// a terminal state. The hook runs on its own goroutine.
func WithOutcomeHook(fn func(Outcome)) HostOption {
	return func(h *Host) error {
		if fn == nil {
			return fmt.Errorf("outcome hook cannot be nil")
		}
		h.onOutcome = fn
		return nil
	}
}

// WithUpgrader replaces the WebSocket upgrader, e.g. to enforce an origin
// policy.
func WithUpgrader(u *websocket.Upgrader) HostOption {
	return func(h *Host) error {
		if u == nil {
			return fmt.Errorf("upgrader cannot be nil")
		}
		h.upgrader = u
		return nil
	}
}

// NewPage creates a page with the manifest's bindings registered and adds
// it to the resume registry. Sessions are not started yet; the handler
// starts them once a client attaches, and programmatic hosts call
// StartSessions themselves.
func (h *Host) NewPage() (*Page, error) {
	id, err := session.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to create page id: %w", err)
	}

	p := newPage(id, h.collector, h.status, h.onOutcome)
	for _, f := range h.manifest.Frames {
		if err := p.RegisterBinding(f.Binding()); err != nil {
			return nil, err
		}
	}

	h.registry.Put(id, p)
	return p, nil
}

// StartSessions dispatches the first attempt for every manifest frame on
// the page, in manifest order.
func (h *Host) StartSessions(p *Page) {
	for _, f := range h.manifest.Frames {
		p.StartSession(f.Container, f.URL, f.Config())
	}
}

// ResumePage returns the live page for id, refreshing its TTL.
func (h *Host) ResumePage(id string) (*Page, bool) {
	entry, ok := h.registry.Get(id)
	if !ok {
		return nil, false
	}
	return entry.(*Page), true
}

// ClosePage tears a page down and drops it from the resume registry.
func (h *Host) ClosePage(p *Page) {
	h.registry.Delete(p.ID())
	p.Close()
}

// Metrics returns a snapshot of the host's loader counters.
func (h *Host) Metrics() metrics.LoaderMetrics {
	return h.collector.Snapshot()
}
