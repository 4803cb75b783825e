package editor

import (
	"embed"
	"net/http"
	"text/template"
	"time"

	"github.com/apogee-blog/apogee/internal/config"
	"github.com/apogee-blog/apogee/internal/model"
	"github.com/apogee-blog/apogee/internal/sse"
	"github.com/apogee-blog/apogee/internal/util"
)

type Handler struct {
	repo    Repository
	clients *sse.SSEClients

	fs *embed.FS
}

func NewHandler(repo Repository, clients *sse.SSEClients, fs *embed.FS) *Handler {
	return &Handler{
		repo:    repo,
		clients: clients,
		fs:      fs,
	}
}

// autoSavedAt formats the time of the draft's last persisted snapshot, or
// "" when the repository does not keep snapshots or none exists yet.
func (h *Handler) autoSavedAt(id DraftID) string {
	repo, ok := h.repo.(interface {
		HasRecoverableDraft(id DraftID) bool
		LastSavedAt(id DraftID) (time.Time, bool)
	})
	if !ok || !repo.HasRecoverableDraft(id) {
		return ""
	}

	savedAt, ok := repo.LastSavedAt(id)
	if !ok {
		return ""
	}
	return savedAt.Format("15:04:05")
}

func (h *Handler) ServeNewDraftEditor(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFS(h.fs, config.TemplatesLocalDir+"/"+config.TemplateLayout, config.TemplatesLocalDir+"/"+config.TemplateEditor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var draft *Draft = nil
	if cookie, err := r.Cookie(config.CookieDraftID); err == nil {
		draftID := DraftID(cookie.Value)
		draft, _ = h.repo.GetDraft(draftID)
	}

	if draft == nil {
		draft, err = h.repo.CreateDraft()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:  config.CookieDraftID,
			Value: string(draft.ID),
			Path:  "/",
		})
	}

	data := struct {
		*model.PageData
		*model.Post
		HxPostUrl    string
		HxSaveUrl    string
		HxSaveMethod string
		AutoSavedAt  string
	}{
		PageData:     model.NewPageData(r),
		Post:         &model.Post{ID: model.PostID(draft.ID), Title: draft.Title, Markdown: draft.Content},
		HxPostUrl:    "/partials/draft/preview",
		HxSaveUrl:    "/api/posts/" + string(draft.ID),
		HxSaveMethod: "POST",
		AutoSavedAt:  h.autoSavedAt(draft.ID),
	}

	showToolbar := true
	data.IsEditorPage = &showToolbar
	data.ShowToolbar = &showToolbar

	w.Header().Set(config.HETag, util.ContentHash([]byte(data.Theme+data.SyntaxTheme)))
	err = tmpl.ExecuteTemplate(w, config.TemplateLayout, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ServeEditPostEditor(w http.ResponseWriter, r *http.Request, post *model.Post) {
	tmpl, err := template.ParseFS(h.fs, config.TemplatesLocalDir+"/"+config.TemplateLayout, config.TemplatesLocalDir+"/"+config.TemplateEditor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := struct {
		*model.PageData
		*model.Post
		HxPostUrl    string
		HxSaveUrl    string
		HxSaveMethod string
		AutoSavedAt  string
	}{
		PageData:     model.NewPageData(r),
		Post:         post,
		HxPostUrl:    "/partials/post/preview",
		HxSaveUrl:    "/api/posts/" + string(post.ID),
		HxSaveMethod: "PUT",
		AutoSavedAt:  h.autoSavedAt(DraftID(post.ID)),
	}

	showToolbar := true
	data.IsEditorPage = &showToolbar
	data.ShowToolbar = &showToolbar

	w.Header().Set(config.HETag, util.ContentHash([]byte(data.Theme+data.SyntaxTheme)))
	err = tmpl.ExecuteTemplate(w, config.TemplateLayout, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
