package snapshot

import (
	"time"

	"sjsage522/contestharvester/services/cache"
)

// markTTL keeps a refresh mark around for the rest of its day
const markTTL = 24 * time.Hour

// Session remembers which sources already had their automatic refresh on a
// given day. Marks live in process memory only: pass the same Session to every
// Refresher of one process, and a new process always starts a new session.
type Session struct {
	marks *cache.MemoryCache
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{marks: cache.NewMemoryCache()}
}

func markKey(source, day string) string {
	return "refreshed:" + source + ":" + day
}

// Attempted reports whether source was already refreshed (or checked) on day
func (s *Session) Attempted(source, day string) bool {
	_, err := s.marks.Get(markKey(source, day))
	return err == nil
}

// MarkAttempted records that source had its refresh on day
func (s *Session) MarkAttempted(source, day string) {
	// MemoryCache.Set never fails
	_ = s.marks.Set(markKey(source, day), []byte("1"), markTTL)
}
