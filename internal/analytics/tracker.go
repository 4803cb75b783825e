package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/apogee-blog/apogee/internal/kv"
	"github.com/apogee-blog/apogee/internal/model"
)

const (
	// DefaultMinReadTime is the engagement floor: shorter intervals are
	// treated as accidental navigation and dropped.
	DefaultMinReadTime = 10 * time.Second

	visitorKey      = "visitor_id"
	viewedKeyPrefix = "viewed_"
)

// Tracker measures views and read time for one browsing session. The durable
// store holds the visitor identity across sessions; the session store holds
// the per-session view dedup markers and is expected to reset when a new
// session starts.
//
// All sink failures are logged and swallowed, and local state (markers, the
// read timer) is maintained independently of sink outcome.
type Tracker struct {
	durable kv.Store
	session kv.Store
	sink    Sink
	clock   Clock
	log     zerolog.Logger

	minReadTime time.Duration

	mu        sync.Mutex
	visitorID VisitorID
	readStart time.Time // zero while idle
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

func WithTrackerClock(c Clock) TrackerOption {
	return func(t *Tracker) { t.clock = c }
}

func WithMinReadTime(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.minReadTime = d
		}
	}
}

func NewTracker(durable, session kv.Store, sink Sink, log zerolog.Logger, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		durable:     durable,
		session:     session,
		sink:        sink,
		clock:       systemClock{},
		log:         log,
		minReadTime: DefaultMinReadTime,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Identify returns the visitor identity, generating and persisting one on
// first use. The identity is stable for the tracker's lifetime even if the
// durable store rejects the write.
func (t *Tracker) Identify() VisitorID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.identifyLocked()
}

func (t *Tracker) identifyLocked() VisitorID {
	if t.visitorID != "" {
		return t.visitorID
	}

	if id, ok := t.durable.Get(visitorKey); ok && id != "" {
		t.visitorID = VisitorID(id)
		return t.visitorID
	}

	t.visitorID = VisitorID("visitor_" + uuid.NewString())
	if err := t.durable.Set(visitorKey, string(t.visitorID)); err != nil {
		t.log.Error().Err(err).Msg("Error persisting visitor id")
	}
	return t.visitorID
}

// TrackView emits a view event for postID unless one was already recorded
// for this visitor in this session. The dedup marker is set before the sink
// call, so a slow or failing sink cannot cause a double count: a failed
// emit still counts as attempted for the session.
func (t *Tracker) TrackView(ctx context.Context, postID model.PostID, userID model.UserID, userAgent string) {
	t.mu.Lock()
	visitorID := t.identifyLocked()
	now := t.clock.Now()

	// The check and the marker write must happen under the same lock:
	// concurrent beacons for the same post would otherwise both observe
	// the marker as absent and both emit.
	sessionKey := viewedKeyPrefix + string(postID)
	if _, viewed := t.session.Get(sessionKey); viewed {
		t.mu.Unlock()
		return
	}

	if err := t.session.Set(sessionKey, "true"); err != nil {
		t.log.Error().Err(err).Str("post_id", string(postID)).Msg("Error marking post as viewed")
	}
	t.mu.Unlock()

	err := t.sink.RecordView(ctx, ViewEvent{
		PostID:    postID,
		VisitorID: visitorID,
		UserID:    userID,
		UserAgent: userAgent,
		Timestamp: now,
	})
	if err != nil {
		t.log.Error().Err(err).Str("post_id", string(postID)).Msg("Error tracking view")
	}
}

// StartReadTimeTracking begins the active-reading timer. A second start
// before the matching stop replaces the previous start time; only one
// interval is tracked at a time.
func (t *Tracker) StartReadTimeTracking() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readStart = t.clock.Now()
}

// StopReadTimeTracking ends the active interval and emits a read-time sample
// when the visitor spent at least the engagement floor on the post. The
// timer is cleared regardless of threshold or sink outcome, so state never
// leaks into the next post view. Without a matching start it is a no-op.
func (t *Tracker) StopReadTimeTracking(ctx context.Context, postID model.PostID, userID model.UserID) {
	t.mu.Lock()
	start := t.readStart
	t.readStart = time.Time{}
	visitorID := t.identifyLocked()
	now := t.clock.Now()
	t.mu.Unlock()

	if start.IsZero() {
		return
	}

	elapsed := now.Sub(start)
	if elapsed < t.minReadTime {
		return
	}

	err := t.sink.RecordReadTime(ctx, ReadTimeSample{
		PostID:    postID,
		VisitorID: visitorID,
		UserID:    userID,
		Seconds:   int(elapsed / time.Second),
		Timestamp: now,
	})
	if err != nil {
		t.log.Error().Err(err).Str("post_id", string(postID)).Msg("Error tracking read time")
	}
}

// TrackEngagement emits a named engagement event (share, comment, like).
// Unlike views, engagement events are not deduplicated.
func (t *Tracker) TrackEngagement(ctx context.Context, postID model.PostID, eventType string, userID model.UserID) {
	t.mu.Lock()
	visitorID := t.identifyLocked()
	now := t.clock.Now()
	t.mu.Unlock()

	err := t.sink.RecordEngagement(ctx, EngagementEvent{
		PostID:    postID,
		VisitorID: visitorID,
		UserID:    userID,
		EventType: eventType,
		Timestamp: now,
	})
	if err != nil {
		t.log.Error().Err(err).Str("post_id", string(postID)).Str("event_type", eventType).Msg("Error tracking engagement")
	}
}
