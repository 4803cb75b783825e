package editor

import (
	"fmt"
	"time"

	"github.com/apogee-blog/apogee/internal/autosave"
)

const (
	payloadTitle   = "title"
	payloadContent = "content"
)

// PersistentRepository layers debounced durable persistence on top of an
// in-memory draft store. Every save is tracked by the autosave engine, so an
// unsaved draft survives a server restart; reads prefer the live in-memory
// copy and fall back to the last persisted snapshot.
type PersistentRepository struct {
	live   Repository
	engine *autosave.Engine
}

func NewPersistentRepository(live Repository, engine *autosave.Engine) *PersistentRepository {
	return &PersistentRepository{live: live, engine: engine}
}

func draftKey(id DraftID) string {
	return "draft_" + string(id)
}

func (r *PersistentRepository) CreateDraft() (*Draft, error) {
	return r.live.CreateDraft()
}

func (r *PersistentRepository) SaveDraft(id DraftID, title string, content []byte) error {
	if err := r.live.SaveDraft(id, title, content); err != nil {
		return err
	}

	r.engine.Track(draftKey(id), map[string]string{
		payloadTitle:   title,
		payloadContent: string(content),
	})
	return nil
}

func (r *PersistentRepository) GetDraft(id DraftID) (*Draft, error) {
	if draft, err := r.live.GetDraft(id); err == nil {
		return draft, nil
	}

	snapshot := r.engine.Restore(draftKey(id))
	if snapshot == nil {
		return nil, fmt.Errorf("draft not found: %s", id)
	}

	draft := &Draft{
		ID:          id,
		Title:       snapshot.Payload[payloadTitle],
		Content:     []byte(snapshot.Payload[payloadContent]),
		Initialized: snapshot.Payload[payloadContent] != "",
	}

	// Rehydrate the live store so subsequent saves pick up where the
	// recovered snapshot left off.
	if err := r.live.SaveDraft(id, draft.Title, draft.Content); err != nil {
		return nil, err
	}
	return draft, nil
}

// DeleteDraft drops the live draft and its persisted snapshot. Called when a
// draft is published or discarded.
func (r *PersistentRepository) DeleteDraft(id DraftID) error {
	r.engine.Clear(draftKey(id))
	return r.live.DeleteDraft(id)
}

// HasRecoverableDraft reports whether a persisted snapshot exists for the
// draft, used to offer recovery in the editor.
func (r *PersistentRepository) HasRecoverableDraft(id DraftID) bool {
	return r.engine.HasSavedData(draftKey(id))
}

// LastSavedAt returns when the draft's snapshot was last persisted, shown as
// the editor's auto-save indicator.
func (r *PersistentRepository) LastSavedAt(id DraftID) (time.Time, bool) {
	return r.engine.SavedAt(draftKey(id))
}
