package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/apogee-blog/apogee/internal/db"
)

const (
	// DefaultBufferSize is the capacity of the in-flight event channel.
	DefaultBufferSize = 1024

	// DefaultFlushInterval is how often buffered events are written out.
	DefaultFlushInterval = 5 * time.Second

	// DefaultFlushThreshold is the batch size that forces an early flush.
	DefaultFlushThreshold = 50
)

// ErrBufferFull is returned when the event buffer cannot accept more events.
// Callers drop the event; analytics ingestion never applies backpressure.
var ErrBufferFull = errors.New("analytics: event buffer full")

type eventKind int

const (
	kindView eventKind = iota
	kindReadTime
	kindEngagement
)

type bufferedEvent struct {
	kind       eventKind
	view       ViewEvent
	readTime   ReadTimeSample
	engagement EngagementEvent
}

// DBSink buffers incoming events on a channel and batch-inserts them into
// the analytics tables from a background goroutine, keeping the request path
// free of database latency.
type DBSink struct {
	db  db.DB
	log zerolog.Logger

	events chan bufferedEvent
	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	flushInterval  time.Duration
	flushThreshold int
}

// DBSinkOption configures a DBSink.
type DBSinkOption func(*DBSink)

func WithBufferSize(n int) DBSinkOption {
	return func(s *DBSink) {
		if n > 0 {
			s.events = make(chan bufferedEvent, n)
		}
	}
}

func WithFlushInterval(d time.Duration) DBSinkOption {
	return func(s *DBSink) {
		if d > 0 {
			s.flushInterval = d
		}
	}
}

func WithFlushThreshold(n int) DBSinkOption {
	return func(s *DBSink) {
		if n > 0 {
			s.flushThreshold = n
		}
	}
}

func NewDBSink(database db.DB, log zerolog.Logger, opts ...DBSinkOption) *DBSink {
	s := &DBSink{
		db:             database,
		log:            log,
		events:         make(chan bufferedEvent, DefaultBufferSize),
		closed:         make(chan struct{}),
		flushInterval:  DefaultFlushInterval,
		flushThreshold: DefaultFlushThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background flush goroutine.
func (s *DBSink) Start() {
	s.wg.Add(1)
	go s.flushLoop()
}

// Stop drains and flushes remaining events, then waits for the flush
// goroutine to finish. Safe to call multiple times.
func (s *DBSink) Stop() {
	s.once.Do(func() {
		close(s.closed)
	})
	s.wg.Wait()
}

func (s *DBSink) RecordView(_ context.Context, event ViewEvent) error {
	return s.send(bufferedEvent{kind: kindView, view: event})
}

func (s *DBSink) RecordReadTime(_ context.Context, sample ReadTimeSample) error {
	return s.send(bufferedEvent{kind: kindReadTime, readTime: sample})
}

func (s *DBSink) RecordEngagement(_ context.Context, event EngagementEvent) error {
	return s.send(bufferedEvent{kind: kindEngagement, engagement: event})
}

func (s *DBSink) send(event bufferedEvent) error {
	select {
	case s.events <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

func (s *DBSink) flushLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	batch := make([]bufferedEvent, 0, s.flushThreshold)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		s.flush(batch)
		batch = batch[:0]
	}

	for {
		select {
		case event := <-s.events:
			batch = append(batch, event)
			if len(batch) >= s.flushThreshold {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.closed:
			// Drain whatever is left before shutting down.
			for {
				select {
				case event := <-s.events:
					batch = append(batch, event)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *DBSink) flush(batch []bufferedEvent) {
	for _, event := range batch {
		var err error
		switch event.kind {
		case kindView:
			err = s.insertView(event.view)
		case kindReadTime:
			err = s.insertReadTime(event.readTime)
		case kindEngagement:
			err = s.insertEngagement(event.engagement)
		}
		if err != nil {
			s.log.Error().Err(err).Int("kind", int(event.kind)).Msg("Error flushing analytics event")
		}
	}

	s.log.Debug().Int("batch_size", len(batch)).Msg("Flushed analytics events")
}

func (s *DBSink) insertView(event ViewEvent) error {
	_, err := s.db.Exec(
		`INSERT INTO post_views (id, post_id, visitor_id, user_id, user_agent, viewed_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), event.PostID, event.VisitorID, string(event.UserID), event.UserAgent, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("error inserting view: %w", err)
	}
	return nil
}

func (s *DBSink) insertReadTime(sample ReadTimeSample) error {
	_, err := s.db.Exec(
		`INSERT INTO read_times (id, post_id, visitor_id, user_id, seconds, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), sample.PostID, sample.VisitorID, string(sample.UserID), sample.Seconds, sample.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("error inserting read time: %w", err)
	}
	return nil
}

func (s *DBSink) insertEngagement(event EngagementEvent) error {
	_, err := s.db.Exec(
		`INSERT INTO engagement_events (id, post_id, visitor_id, user_id, event_type, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), event.PostID, event.VisitorID, string(event.UserID), event.EventType, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("error inserting engagement event: %w", err)
	}
	return nil
}
