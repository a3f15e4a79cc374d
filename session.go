package liveframe

import (
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/livefir/liveframe/internal/metrics"
)

// defaultFailureStatus is the status text shown when a session runs out of
// attempts.
const defaultFailureStatus = "Content failed to load."

// State is the lifecycle state of a load session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateFailed
	StateSuccess
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateFailed:
		return "failed"
	case StateSuccess:
		return "success"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// terminal reports whether the state admits no further scheduled work.
func (s State) terminal() bool {
	return s == StateSuccess || s == StateExhausted
}

// FrameConfig controls retry behavior for one embedded frame.
type FrameConfig struct {
	// RetryCount is the number of attempts allowed. Values below 1 still
	// get exactly one attempt and no retries.
	RetryCount int

	// RetryDelay is the fixed pause between a failed attempt and the next.
	// Zero re-dispatches immediately.
	RetryDelay time.Duration

	// ShowLoader toggles the loading indicator during attempts.
	ShowLoader bool

	// CacheBust appends a timestamp query parameter to each dispatch URL.
	CacheBust bool
}

// DefaultFrameConfig returns the defaults applied when manifest fields are
// omitted: 3 attempts, 2s fixed backoff, loader shown, no cache busting.
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{
		RetryCount: 3,
		RetryDelay: 2 * time.Second,
		ShowLoader: true,
	}
}

// maxAttempts normalizes RetryCount: a session always gets at least one
// attempt.
func (c FrameConfig) maxAttempts() int {
	if c.RetryCount < 1 {
		return 1
	}
	return c.RetryCount
}

// Outcome reports a session reaching a terminal state.
type Outcome struct {
	Container string
	URL       string
	State     State
	Attempts  int
	At        time.Time
}

// Session drives one retry-bounded attempt sequence to load one resource
// into one viewport slot. It owns the slot's UI transitions, dispatches at
// most one attempt at a time, and stops scheduling work once it reaches a
// terminal state. A manual retry never resumes a session; it creates a new
// one.
type Session struct {
	binding   ViewportBinding
	url       string
	cfg       FrameConfig
	sink      CommandSink
	collector *metrics.Collector
	status    string
	onOutcome func(Outcome)

	// now is stubbed in tests to make cache-busted URLs deterministic.
	now func() time.Time

	mu      sync.Mutex
	attempt int
	state   State
	timer   *time.Timer
	started bool
	ended   bool
	closed  bool
}

func newSession(binding ViewportBinding, url string, cfg FrameConfig, sink CommandSink, collector *metrics.Collector, status string, onOutcome func(Outcome)) *Session {
	if collector == nil {
		collector = metrics.NewCollector()
	}
	if status == "" {
		status = defaultFailureStatus
	}
	return &Session{
		binding:   binding,
		url:       url,
		cfg:       cfg,
		sink:      sink,
		collector: collector,
		status:    status,
		onOutcome: onOutcome,
		now:       time.Now,
		state:     StateIdle,
	}
}

// Start begins the first attempt synchronously. Calling Start more than
// once, or after Close, does nothing.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.started {
		return
	}
	s.started = true
	s.collector.SessionStarted()
	s.dispatchLocked()
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attempt returns how many dispatches have been made so far.
func (s *Session) Attempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

// URL returns the session's base resource locator.
func (s *Session) URL() string {
	return s.url
}

// Close makes the session inert: a pending backoff timer is stopped and
// late completion signals are dropped. Closing is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.endLocked()
}

// HandleLoad processes a raw success signal for the given attempt epoch.
// Signals for superseded epochs, terminal sessions, or closed sessions are
// dropped.
func (s *Session) HandleLoad(epoch int, blocked bool, snapshot string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.currentLocked(epoch) {
		return
	}

	if blocked {
		// Cross-origin documents cannot be inspected; treat them as
		// loaded rather than retrying a healthy resource.
		s.collector.BlockedIntrospection()
		s.succeedLocked()
		return
	}

	count, err := bodyElementCount(snapshot)
	if err != nil {
		// Introspection itself failed; fold into success like the
		// cross-origin case.
		s.collector.BlockedIntrospection()
		s.succeedLocked()
		return
	}

	if count == 0 {
		s.collector.EmptyContentFailure()
		s.failLocked(EmptyContentFailure)
		return
	}

	s.succeedLocked()
}

// HandleError processes a raw failure signal for the given attempt epoch.
func (s *Session) HandleError(epoch int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.currentLocked(epoch) {
		return
	}

	s.collector.SignalFailure()
	s.failLocked(LoadSignalFailure)
}

// currentLocked reports whether a completion signal for epoch belongs to
// the attempt currently in flight.
func (s *Session) currentLocked(epoch int) bool {
	return !s.closed && s.state == StateLoading && epoch == s.attempt
}

// dispatchLocked performs one attempt: bump the attempt counter, compute
// the final URL, hide stale content behind the loader, and arm the
// embedding target.
func (s *Session) dispatchLocked() {
	s.attempt++
	s.state = StateLoading
	s.collector.DispatchStarted()

	url := s.url
	if s.cfg.CacheBust {
		url = cacheBustURL(url, s.now())
	}

	if s.cfg.ShowLoader && s.binding.Loader != "" {
		s.send(Command{Op: OpLoader, Container: s.binding.Container, Target: s.binding.Loader, Visible: true})
	}

	// Hide partially-rendered or stale content while the attempt is in
	// flight rather than flashing old content.
	s.send(Command{Op: OpFrame, Container: s.binding.Container, Target: s.binding.frameTarget(), Visible: false})
	s.send(Command{Op: OpSetSrc, Container: s.binding.Container, Target: s.binding.Container, URL: url, Epoch: s.attempt})
}

func (s *Session) succeedLocked() {
	s.state = StateSuccess
	s.collector.SuccessClassified()
	s.endLocked()
	s.reportOutcomeLocked()

	if s.cfg.ShowLoader && s.binding.Loader != "" {
		s.send(Command{Op: OpLoader, Container: s.binding.Container, Target: s.binding.Loader, Visible: false})
	}
	s.send(Command{Op: OpFrame, Container: s.binding.Container, Target: s.binding.frameTarget(), Visible: true})
	if s.binding.Status != "" {
		s.send(Command{Op: OpStatus, Container: s.binding.Container, Target: s.binding.Status, Text: ""})
	}
}

func (s *Session) failLocked(kind FailureKind) {
	max := s.cfg.maxAttempts()

	if s.attempt < max {
		s.state = StateFailed
		log.Printf("liveframe: %s: attempt %d/%d failed (%s), retrying in %v",
			s.binding.Container, s.attempt, max, kind, s.cfg.RetryDelay)

		// The loader stays visible through the backoff; no error flashes
		// between attempts.
		if s.cfg.RetryDelay <= 0 {
			s.dispatchLocked()
			return
		}
		s.timer = time.AfterFunc(s.cfg.RetryDelay, s.redispatch)
		return
	}

	s.state = StateExhausted
	s.collector.RetriesExhausted()
	s.endLocked()
	s.reportOutcomeLocked()
	log.Printf("liveframe: %s: retries exhausted after %d attempts (%s)",
		s.binding.Container, s.attempt, kind)

	if s.cfg.ShowLoader && s.binding.Loader != "" {
		s.send(Command{Op: OpLoader, Container: s.binding.Container, Target: s.binding.Loader, Visible: false})
	}
	s.send(Command{Op: OpFrame, Container: s.binding.Container, Target: s.binding.frameTarget(), Visible: true})
	if s.binding.Status != "" {
		s.send(Command{Op: OpStatus, Container: s.binding.Container, Target: s.binding.Status, Text: s.status})
		s.send(Command{Op: OpRetryControl, Container: s.binding.Container, Target: s.binding.Status, Visible: true})
	}
}

// redispatch is the backoff timer callback.
func (s *Session) redispatch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateFailed {
		return
	}
	s.dispatchLocked()
}

// endLocked balances the active-session gauge exactly once per started
// session.
func (s *Session) endLocked() {
	if !s.started || s.ended {
		return
	}
	s.ended = true
	s.collector.SessionEnded()
}

// reportOutcomeLocked delivers the terminal outcome on its own goroutine so
// a hook can safely call back into the loader.
func (s *Session) reportOutcomeLocked() {
	if s.onOutcome == nil {
		return
	}
	o := Outcome{
		Container: s.binding.Container,
		URL:       s.url,
		State:     s.state,
		Attempts:  s.attempt,
		At:        s.now(),
	}
	go s.onOutcome(o)
}

func (s *Session) send(c Command) {
	if err := s.sink.Send(c); err != nil {
		log.Printf("liveframe: %s: command send failed: %v", s.binding.Container, err)
	}
}

// cacheBustURL appends a timestamp query parameter so HTTP and browser
// caches cannot serve a stale copy of a resource that may change between
// retries. Uses & when the URL already carries a query string, else ?.
func cacheBustURL(raw string, now time.Time) string {
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + "lfts=" + strconv.FormatInt(now.UnixMilli(), 10)
}
