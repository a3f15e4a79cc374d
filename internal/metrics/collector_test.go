package metrics

import (
	"sync"
	"testing"
)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector()

	c.SessionStarted()
	c.DispatchStarted()
	c.SignalFailure()
	c.DispatchStarted()
	c.EmptyContentFailure()
	c.DispatchStarted()
	c.SuccessClassified()
	c.BlockedIntrospection()
	c.RetriesExhausted()
	c.ManualRetry()
	c.BindingNotFound()
	c.SessionEnded()

	m := c.Snapshot()
	if m.SessionsStarted != 1 {
		t.Errorf("SessionsStarted = %d", m.SessionsStarted)
	}
	if m.ActiveSessions != 0 {
		t.Errorf("ActiveSessions = %d", m.ActiveSessions)
	}
	if m.Dispatches != 3 {
		t.Errorf("Dispatches = %d", m.Dispatches)
	}
	if m.SignalFailures != 1 || m.EmptyContentFailures != 1 {
		t.Errorf("failures = %d/%d", m.SignalFailures, m.EmptyContentFailures)
	}
	if m.Successes != 1 || m.BlockedIntrospections != 1 {
		t.Errorf("successes = %d, blocked = %d", m.Successes, m.BlockedIntrospections)
	}
	if m.Exhaustions != 1 || m.ManualRetries != 1 || m.BindingNotFound != 1 {
		t.Errorf("terminal counters = %d/%d/%d", m.Exhaustions, m.ManualRetries, m.BindingNotFound)
	}
	if m.Uptime < 0 {
		t.Errorf("Uptime = %v", m.Uptime)
	}
}

func TestCollectorMaxConcurrent(t *testing.T) {
	c := NewCollector()

	c.SessionStarted()
	c.SessionStarted()
	c.SessionStarted()
	c.SessionEnded()
	c.SessionStarted()

	m := c.Snapshot()
	if m.ActiveSessions != 3 {
		t.Errorf("ActiveSessions = %d, want 3", m.ActiveSessions)
	}
	if m.MaxConcurrentSessions != 3 {
		t.Errorf("MaxConcurrentSessions = %d, want 3", m.MaxConcurrentSessions)
	}
}

func TestCollectorConcurrentAccess(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.SessionStarted()
				c.DispatchStarted()
				c.SuccessClassified()
				c.SessionEnded()
			}
		}()
	}
	wg.Wait()

	m := c.Snapshot()
	if m.SessionsStarted != 1000 {
		t.Errorf("SessionsStarted = %d, want 1000", m.SessionsStarted)
	}
	if m.ActiveSessions != 0 {
		t.Errorf("ActiveSessions = %d, want 0", m.ActiveSessions)
	}
	if m.MaxConcurrentSessions < 1 || m.MaxConcurrentSessions > 10 {
		t.Errorf("MaxConcurrentSessions = %d, want 1..10", m.MaxConcurrentSessions)
	}
}

func TestCollectorReset(t *testing.T) {
	c := NewCollector()
	c.SessionStarted()
	c.DispatchStarted()
	c.RetriesExhausted()

	start := c.Snapshot().StartTime
	c.Reset()

	m := c.Snapshot()
	if m.SessionsStarted != 0 || m.Dispatches != 0 || m.Exhaustions != 0 {
		t.Errorf("Reset left counters: %+v", m)
	}
	if !m.StartTime.Equal(start) {
		t.Error("Reset changed the start time")
	}
}
