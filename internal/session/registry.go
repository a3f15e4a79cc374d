// Package session tracks live host pages across WebSocket reconnects.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Page is the minimal surface the registry needs from a host page.
type Page interface {
	Close()
}

type entry struct {
	page       Page
	createdAt  time.Time
	lastAccess time.Time
}

// Registry holds pages keyed by id with TTL-based expiry. A page whose
// client disconnected stays resumable until the TTL elapses; expired pages
// are closed so their sessions stop scheduling work.
type Registry struct {
	pages map[string]*entry
	mu    sync.Mutex
	ttl   time.Duration
}

// NewRegistry creates a registry with the given TTL
func NewRegistry(ttl time.Duration) *Registry {
	if ttl == 0 {
		ttl = time.Hour // Default 1 hour
	}

	return &Registry{
		pages: make(map[string]*entry),
		ttl:   ttl,
	}
}

// Put stores a page under id
func (r *Registry) Put(id string, p Page) {
	now := time.Now()

	r.mu.Lock()
	r.pages[id] = &entry{page: p, createdAt: now, lastAccess: now}
	r.mu.Unlock()
}

// Get retrieves a page by id, refreshing its last-access time.
// An expired page is closed and reported as missing.
func (r *Registry) Get(id string) (Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.pages[id]
	if !exists {
		return nil, false
	}

	if time.Since(e.lastAccess) > r.ttl {
		delete(r.pages, id)
		e.page.Close()
		return nil, false
	}

	e.lastAccess = time.Now()
	return e.page, true
}

// Delete removes a page without closing it
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pages, id)
}

// Sweep closes and removes expired pages, returning how many were evicted
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	cutoff := time.Now().Add(-r.ttl)

	for id, e := range r.pages {
		if e.lastAccess.Before(cutoff) {
			delete(r.pages, id)
			e.page.Close()
			count++
		}
	}

	return count
}

// Len returns the number of live pages
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// NewID creates a cryptographically secure page ID
func NewID() (string, error) {
	bytes := make([]byte, 16) // 128-bit page ID
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
