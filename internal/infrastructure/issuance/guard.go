package issuance

import (
	"strings"
	"sync"
	"time"
)

// Guard serializes signature issuance per recipient address. A recipient
// holds the slot from TryAcquire until Release or until the window elapses,
// so two concurrent requests for one wallet cannot both reach the signer.
// Implements domain.IssuanceGuard.
type Guard struct {
	mu      sync.Mutex
	inUse   map[string]time.Time
	window  time.Duration
	nowFunc func() time.Time
}

// NewGuard creates a guard with the given duplicate-issuance window.
func NewGuard(window time.Duration) *Guard {
	g := &Guard{
		inUse:   make(map[string]time.Time),
		window:  window,
		nowFunc: time.Now,
	}
	go g.cleanupLoop()
	return g
}

// TryAcquire claims the issuance slot for a recipient. Addresses are
// case-folded so 0xAB.. and 0xab.. contend for the same slot.
func (g *Guard) TryAcquire(recipient string) bool {
	key := strings.ToLower(recipient)
	now := g.nowFunc()

	g.mu.Lock()
	defer g.mu.Unlock()

	if until, held := g.inUse[key]; held && now.Before(until) {
		return false
	}
	g.inUse[key] = now.Add(g.window)
	return true
}

// Release frees the slot before the window elapses.
func (g *Guard) Release(recipient string) {
	key := strings.ToLower(recipient)

	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inUse, key)
}

// cleanupLoop drops expired slots so abandoned requests don't leak entries.
func (g *Guard) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := g.nowFunc()
		g.mu.Lock()
		for key, until := range g.inUse {
			if now.After(until) {
				delete(g.inUse, key)
			}
		}
		g.mu.Unlock()
	}
}
