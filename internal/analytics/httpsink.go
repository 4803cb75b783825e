package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPSink forwards events to a remote aggregation endpoint as JSON. It is
// fire and forget: no retries, no queuing; a failed post is a dropped data
// point.
type HTTPSink struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSink(baseURL string) *HTTPSink {
	return &HTTPSink{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSink) RecordView(ctx context.Context, event ViewEvent) error {
	return s.post(ctx, "/api/analytics/view", event)
}

func (s *HTTPSink) RecordReadTime(ctx context.Context, sample ReadTimeSample) error {
	return s.post(ctx, "/api/analytics/read-time", sample)
}

func (s *HTTPSink) RecordEngagement(ctx context.Context, event EngagementEvent) error {
	return s.post(ctx, "/api/analytics/engagement", event)
}

func (s *HTTPSink) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error encoding analytics event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error building analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("error posting analytics event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("analytics endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
