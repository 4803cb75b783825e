// Package analytics implements content engagement tracking: pseudonymous
// visitor identity, session-deduplicated view counting, active read-time
// measurement and the aggregation store behind the author dashboards.
//
// Tracking is strictly best effort. No failure in this package may ever
// surface to the reading or authoring path; a lost event is just a missing
// data point.
package analytics

import (
	"context"
	"time"

	"github.com/apogee-blog/apogee/internal/model"
)

// VisitorID is a durable pseudonymous identity for one browsing client.
// It is not an authenticated user id.
type VisitorID string

// ViewEvent records one view of a post by a visitor. At most one is emitted
// per (post, visitor) pair per session.
type ViewEvent struct {
	PostID    model.PostID `json:"post_id"`
	VisitorID VisitorID    `json:"visitor_id"`
	UserID    model.UserID `json:"user_id,omitempty"`
	UserAgent string       `json:"user_agent,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// ReadTimeSample records how long a visitor actively spent on a post during
// one view interval. Samples under the engagement floor are never emitted.
type ReadTimeSample struct {
	PostID    model.PostID `json:"post_id"`
	VisitorID VisitorID    `json:"visitor_id"`
	UserID    model.UserID `json:"user_id,omitempty"`
	Seconds   int          `json:"seconds"`
	Timestamp time.Time    `json:"timestamp"`
}

// EngagementEvent records a named interaction with a post (share, comment,
// like) outside the two measured event types.
type EngagementEvent struct {
	PostID    model.PostID `json:"post_id"`
	VisitorID VisitorID    `json:"visitor_id"`
	UserID    model.UserID `json:"user_id,omitempty"`
	EventType string       `json:"event_type"`
	Timestamp time.Time    `json:"timestamp"`
}

// Sink is the aggregation endpoint events are emitted to. Implementations
// are treated as unreliable: callers fire and forget, log failures and never
// retry.
type Sink interface {
	RecordView(ctx context.Context, event ViewEvent) error
	RecordReadTime(ctx context.Context, sample ReadTimeSample) error
	RecordEngagement(ctx context.Context, event EngagementEvent) error
}

// Clock supplies the current time; injected so tests control elapsed time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
