package feed

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/apogee-blog/apogee/internal/config"
	"github.com/apogee-blog/apogee/internal/repository"
)

// Handler serves /rss.xml and /sitemap.xml.
type Handler struct {
	generator *Generator
	repo      repository.PostRepository
	log       zerolog.Logger
}

func NewHandler(generator *Generator, repo repository.PostRepository, log zerolog.Logger) *Handler {
	return &Handler{
		generator: generator,
		repo:      repo,
		log:       log,
	}
}

func (h *Handler) ServeRSS(w http.ResponseWriter, r *http.Request) {
	body, err := h.generator.RSS(h.repo.ActivePostList())
	if err != nil {
		h.log.Error().Err(err).Msg("Error generating RSS feed")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeRSS)
	w.Write(body)
}

func (h *Handler) ServeSitemap(w http.ResponseWriter, r *http.Request) {
	body, err := h.generator.Sitemap(h.repo.ActivePostList())
	if err != nil {
		h.log.Error().Err(err).Msg("Error generating sitemap")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeXML)
	w.Write(body)
}
