package tokenstore

import (
	"time"

	"LenaAI/pkg/cache"
)

// Store remembers revoked token ids (jti) until the token would have expired
// anyway. It is in-memory; revocations do not survive a restart.
type Store struct {
	revoked *cache.Cache
	now     func() time.Time
}

func New(maxEntries int) *Store {
	return &Store{
		revoked: cache.New(maxEntries, time.Minute),
		now:     time.Now,
	}
}

// RevokeToken revokes jti until expiresAt. Tokens without a jti cannot be revoked.
func (s *Store) RevokeToken(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}
	s.revoked.Set(jti, struct{}{}, ttl)
}

func (s *Store) IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	_, ok := s.revoked.Get(jti)
	return ok
}

// Len is the number of revocations currently remembered.
func (s *Store) Len() int {
	return s.revoked.Len()
}

func (s *Store) Close() {
	s.revoked.Close()
}
