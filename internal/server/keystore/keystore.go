// Package keystore holds the per-credential signing keys issued by the
// server. A credential is valid only while its key is present here, so
// removing a record revokes the credential at once.
package keystore

import (
	"sync"
	"time"
)

// Record is the key material of one issued credential.
type Record struct {
	Key      []byte
	IssuedAt time.Time
}

// Store maps credential strings to their signing keys. It is safe for
// concurrent use; callers never reach into the map directly.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp and sweep records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		records: make(map[string]Record),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store saves key under credential, replacing any previous record.
// The key is copied.
func (s *Store) Store(credential string, key []byte) {
	rec := Record{Key: append([]byte(nil), key...), IssuedAt: s.now()}

	s.mu.Lock()
	s.records[credential] = rec
	s.mu.Unlock()
}

// Get returns a copy of the key stored for credential.
func (s *Store) Get(credential string) ([]byte, bool) {
	s.mu.RLock()
	rec, ok := s.records[credential]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return append([]byte(nil), rec.Key...), true
}

// Remove deletes the record for credential. Absent credentials are ignored.
func (s *Store) Remove(credential string) {
	s.mu.Lock()
	delete(s.records, credential)
	s.mu.Unlock()
}

// Sweep deletes every record issued more than maxAge ago, whatever expiry
// the credential itself claims, and reports how many were removed.
func (s *Store) Sweep(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for credential, rec := range s.records {
		if rec.IssuedAt.Before(cutoff) {
			delete(s.records, credential)
			removed++
		}
	}
	return removed
}

// Len reports the number of live records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
