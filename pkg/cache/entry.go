package cache

import "time"

// DefaultTTL is the lifetime of a cached page when none is configured.
const DefaultTTL = 5 * time.Minute

// PageEntry is a cached storefront page.
type PageEntry struct {
	// Data is the raw response body
	Data []byte `json:"data"`

	// Expires is when the entry becomes stale
	Expires time.Time `json:"expires"`

	// CachedAt is when the page was stored
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry wraps data in an entry expiring after ttl.
// A non-positive ttl uses DefaultTTL.
func NewEntry(data []byte, ttl time.Duration) *PageEntry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &PageEntry{
		Data:     data,
		Expires:  now.Add(ttl),
		CachedAt: now,
	}
}

// IsExpired returns true if the entry has expired.
func (e *PageEntry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *PageEntry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
