package services

import (
	"sync"
	"time"

	"github.com/tbourn/loyalty-bot-backend/internal/domain"
)

// PurchaseSessions tracks customers who are choosing a vendor. There is at
// most one session per customer; Open overwrites. A session older than TTL
// resolves as absent. TTL <= 0 disables the soft expiry.
type PurchaseSessions struct {
	TTL time.Duration
	Now func() time.Time

	mu       sync.Mutex
	sessions map[string]domain.PurchaseSession
}

// NewPurchaseSessions returns an empty session store.
func NewPurchaseSessions(ttl time.Duration) *PurchaseSessions {
	return &PurchaseSessions{
		TTL:      ttl,
		Now:      time.Now,
		sessions: make(map[string]domain.PurchaseSession),
	}
}

// Open starts (or replaces) the session of customerID.
func (s *PurchaseSessions) Open(customerID, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = make(map[string]domain.PurchaseSession)
	}
	s.sessions[customerID] = domain.PurchaseSession{
		CustomerID:  customerID,
		DisplayName: displayName,
		CreatedAt:   s.now(),
	}
}

// Resolve returns the display name of the live session of customerID.
func (s *PurchaseSessions) Resolve(customerID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[customerID]
	if !ok {
		return "", false
	}
	if s.expired(sess, s.now()) {
		delete(s.sessions, customerID)
		return "", false
	}
	return sess.DisplayName, true
}

// Close removes the session of customerID, if any.
func (s *PurchaseSessions) Close(customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, customerID)
}

// Sweep drops every session past its soft expiry and returns how many.
func (s *PurchaseSessions) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Len reports the number of stored sessions, expired ones included.
func (s *PurchaseSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Clear drops every session and returns how many there were.
func (s *PurchaseSessions) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.sessions)
	s.sessions = make(map[string]domain.PurchaseSession)
	return n
}

func (s *PurchaseSessions) expired(sess domain.PurchaseSession, now time.Time) bool {
	return s.TTL > 0 && now.Sub(sess.CreatedAt) > s.TTL
}

func (s *PurchaseSessions) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
