package ai

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/apogee-blog/apogee/internal/config"
)

// Handler exposes the writing assistant to the editor UI.
type Handler struct {
	assistant *Assistant
	log       zerolog.Logger
}

func NewHandler(assistant *Assistant, log zerolog.Logger) *Handler {
	return &Handler{assistant: assistant, log: log}
}

type assistRequest struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Tone    string `json:"tone,omitempty"`
}

type assistResponse struct {
	Result string `json:"result"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*assistRequest, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return nil, false
	}

	var req assistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return nil, false
	}
	if req.Content == "" {
		http.Error(w, "content required", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// rewrite runs one of the text-in, text-out operations.
func (h *Handler) rewrite(w http.ResponseWriter, r *http.Request, op string, fn func(*assistRequest) (string, error)) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	result, err := fn(req)
	if err != nil {
		h.fail(w, op, err)
		return
	}
	h.writeJSON(w, assistResponse{Result: result})
}

func (h *Handler) HandleImprove(w http.ResponseWriter, r *http.Request) {
	h.rewrite(w, r, "improve", func(req *assistRequest) (string, error) {
		return h.assistant.ImproveWriting(r.Context(), req.Content)
	})
}

func (h *Handler) HandleConcise(w http.ResponseWriter, r *http.Request) {
	h.rewrite(w, r, "concise", func(req *assistRequest) (string, error) {
		return h.assistant.MakeConcise(r.Context(), req.Content)
	})
}

func (h *Handler) HandleGrammar(w http.ResponseWriter, r *http.Request) {
	h.rewrite(w, r, "grammar", func(req *assistRequest) (string, error) {
		return h.assistant.FixGrammar(r.Context(), req.Content)
	})
}

func (h *Handler) HandleTone(w http.ResponseWriter, r *http.Request) {
	h.rewrite(w, r, "tone", func(req *assistRequest) (string, error) {
		return h.assistant.ChangeTone(r.Context(), req.Content, req.Tone)
	})
}

func (h *Handler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	h.rewrite(w, r, "summarize", func(req *assistRequest) (string, error) {
		return h.assistant.Summarize(r.Context(), req.Content)
	})
}

func (h *Handler) HandleTags(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	tags, err := h.assistant.GenerateTags(r.Context(), req.Title, req.Content)
	if err != nil {
		h.fail(w, "tags", err)
		return
	}
	h.writeJSON(w, tags)
}

func (h *Handler) HandleCategory(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	result, err := h.assistant.DetectCategory(r.Context(), req.Title, req.Content)
	if err != nil {
		h.fail(w, "category", err)
		return
	}
	h.writeJSON(w, result)
}

// moderationResponse bundles both content analyses for one submission.
type moderationResponse struct {
	Spam     SpamResult     `json:"spam"`
	Toxicity ToxicityResult `json:"toxicity"`
}

func (h *Handler) HandleModerate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	spam, err := h.assistant.DetectSpam(r.Context(), req.Content)
	if err != nil {
		h.fail(w, "moderate", err)
		return
	}

	toxicity, err := h.assistant.DetectToxicity(r.Context(), req.Content)
	if err != nil {
		h.fail(w, "moderate", err)
		return
	}

	h.writeJSON(w, moderationResponse{Spam: spam, Toxicity: toxicity})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrNotConfigured) {
		http.Error(w, "AI assistant is not configured", http.StatusServiceUnavailable)
		return
	}
	h.log.Error().Err(err).Str("operation", op).Msg("Error running assistant operation")
	http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Error encoding assistant response")
	}
}
