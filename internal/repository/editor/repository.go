package editor

import "github.com/apogee-blog/apogee/internal/model"

type DraftID model.PostID

type Draft struct {
	ID      DraftID
	Title   string
	Content []byte

	Initialized bool
}

type Repository interface {
	CreateDraft() (*Draft, error)
	SaveDraft(id DraftID, title string, content []byte) error
	GetDraft(id DraftID) (*Draft, error)
	DeleteDraft(id DraftID) error
}
