package analytics

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/apogee-blog/apogee/internal/kv"
)

// CookieVisitor carries the durable visitor identity across requests.
const CookieVisitor = "apogee_visitor"

const (
	// defaultMaxTrackers bounds the per-visitor tracker map. The visitor
	// cookie is client-controlled, so the map must not grow with it.
	defaultMaxTrackers = 10000

	// trackerIdleTTL is how long an inactive visitor keeps session state.
	trackerIdleTTL = 2 * time.Hour
)

type sessionEntry struct {
	tracker  *Tracker
	lastSeen time.Time
}

// Sessions hands out one Tracker per visitor. Each tracker gets a durable
// store seeded from the visitor cookie and its own session-scoped marker
// store, so view dedup stays per visitor per server session. Idle visitors
// are evicted so the map stays bounded.
type Sessions struct {
	sink        Sink
	log         zerolog.Logger
	clock       Clock
	minReadTime time.Duration
	maxTrackers int

	mu       sync.Mutex
	trackers map[VisitorID]*sessionEntry
}

func NewSessions(sink Sink, log zerolog.Logger, opts ...TrackerOption) *Sessions {
	// Apply tracker options to a throwaway tracker to capture settings.
	resolved := NewTracker(kv.NewMemory(), kv.NewMemory(), sink, log, opts...)

	return &Sessions{
		sink:        sink,
		log:         log,
		clock:       resolved.clock,
		minReadTime: resolved.minReadTime,
		maxTrackers: defaultMaxTrackers,
		trackers:    make(map[VisitorID]*sessionEntry),
	}
}

// Identify returns the request's visitor identity, minting and setting the
// cookie on first sight.
func (s *Sessions) Identify(w http.ResponseWriter, r *http.Request) VisitorID {
	if cookie, err := r.Cookie(CookieVisitor); err == nil && cookie.Value != "" {
		return VisitorID(cookie.Value)
	}

	visitorID := VisitorID("visitor_" + uuid.NewString())
	http.SetCookie(w, &http.Cookie{
		Name:     CookieVisitor,
		Value:    string(visitorID),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
	})
	return visitorID
}

// Tracker returns the tracker for a visitor, creating one on first use.
func (s *Sessions) Tracker(visitorID VisitorID) *Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if entry, ok := s.trackers[visitorID]; ok {
		entry.lastSeen = now
		return entry.tracker
	}

	if len(s.trackers) >= s.maxTrackers {
		s.evictLocked(now)
	}

	durable := kv.NewMemory()
	if err := durable.Set(visitorKey, string(visitorID)); err != nil {
		s.log.Error().Err(err).Msg("Error seeding visitor store")
	}

	tracker := NewTracker(durable, kv.NewMemory(), s.sink, s.log,
		WithTrackerClock(s.clock),
		WithMinReadTime(s.minReadTime),
	)
	s.trackers[visitorID] = &sessionEntry{tracker: tracker, lastSeen: now}
	return tracker
}

// evictLocked drops visitors idle past the TTL. When none are idle it drops
// the least recently seen entry so the map never outgrows its cap.
func (s *Sessions) evictLocked(now time.Time) {
	var oldest VisitorID
	var oldestSeen time.Time
	for id, entry := range s.trackers {
		if now.Sub(entry.lastSeen) > trackerIdleTTL {
			delete(s.trackers, id)
			continue
		}
		if oldest == "" || entry.lastSeen.Before(oldestSeen) {
			oldest, oldestSeen = id, entry.lastSeen
		}
	}
	if len(s.trackers) >= s.maxTrackers && oldest != "" {
		delete(s.trackers, oldest)
	}
}
