package analytics

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/apogee-blog/apogee/internal/config"
	"github.com/apogee-blog/apogee/internal/model"
)

// UserResolver extracts the authenticated user from a request, returning ""
// for anonymous visitors.
type UserResolver func(r *http.Request) model.UserID

// Handler exposes the analytics ingestion and dashboard API.
type Handler struct {
	sessions    *Sessions
	reporter    *Reporter
	resolveUser UserResolver
	log         zerolog.Logger
}

func NewHandler(sessions *Sessions, reporter *Reporter, resolveUser UserResolver, log zerolog.Logger) *Handler {
	if resolveUser == nil {
		resolveUser = func(*http.Request) model.UserID { return "" }
	}
	return &Handler{
		sessions:    sessions,
		reporter:    reporter,
		resolveUser: resolveUser,
		log:         log,
	}
}

type trackRequest struct {
	PostID    string `json:"post_id"`
	EventType string `json:"event_type,omitempty"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*trackRequest, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return nil, false
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return nil, false
	}
	if req.PostID == "" {
		http.Error(w, "post_id required", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// HandleView records a page view, deduplicated per visitor per session.
// Always returns 204: tracking failures never surface to the client.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	visitorID := h.sessions.Identify(w, r)
	tracker := h.sessions.Tracker(visitorID)
	tracker.TrackView(r.Context(), model.PostID(req.PostID), h.resolveUser(r), r.UserAgent())

	w.WriteHeader(http.StatusNoContent)
}

// HandleReadStart begins the visitor's read-time interval.
func (h *Handler) HandleReadStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	visitorID := h.sessions.Identify(w, r)
	h.sessions.Tracker(visitorID).StartReadTimeTracking()

	w.WriteHeader(http.StatusNoContent)
}

// HandleReadStop ends the interval and records a sample when the visitor
// cleared the engagement floor. Sent as a beacon on page exit.
func (h *Handler) HandleReadStop(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	visitorID := h.sessions.Identify(w, r)
	tracker := h.sessions.Tracker(visitorID)
	tracker.StopReadTimeTracking(r.Context(), model.PostID(req.PostID), h.resolveUser(r))

	w.WriteHeader(http.StatusNoContent)
}

// HandleEngagement records a named engagement event (share, comment, like).
func (h *Handler) HandleEngagement(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.EventType == "" {
		http.Error(w, "event_type required", http.StatusBadRequest)
		return
	}

	visitorID := h.sessions.Identify(w, r)
	tracker := h.sessions.Tracker(visitorID)
	tracker.TrackEngagement(r.Context(), model.PostID(req.PostID), req.EventType, h.resolveUser(r))

	w.WriteHeader(http.StatusNoContent)
}

// HandlePostStats serves the per-post dashboard numbers.
func (h *Handler) HandlePostStats(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if postID == "" {
		http.NotFound(w, r)
		return
	}

	stats, err := h.reporter.PostStats(model.PostID(postID))
	if err != nil {
		h.log.Error().Err(err).Str("post_id", postID).Msg("Error querying post stats")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, stats)
}

// HandleAuthorStats serves the author dashboard rollup.
func (h *Handler) HandleAuthorStats(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		http.NotFound(w, r)
		return
	}

	stats, err := h.reporter.AuthorStats(model.UserID(userID))
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Error querying author stats")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, stats)
}

// HandlePlatformStats serves the site-wide admin dashboard numbers.
func (h *Handler) HandlePlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reporter.PlatformStats(10)
	if err != nil {
		h.log.Error().Err(err).Msg("Error querying platform stats")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, stats)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Error encoding analytics response")
	}
}
