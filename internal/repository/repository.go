package repository

import (
	"errors"

	"github.com/apogee-blog/apogee/internal/model"
)

// ErrReadOnly is returned by write operations on repositories that cannot
// persist changes, such as the filesystem repository.
var ErrReadOnly = errors.New("repository is read-only")

type PostRepository interface {
	Init()
	GetPosts() ([]model.Post, map[string]*model.Post, error)
	GetPostList() []model.Post

	// ActivePostList returns only posts that should appear in public
	// listings and feeds.
	ActivePostList() []model.Post

	ReadPost(id any) (*model.Post, error)
	ReloadPosts()

	NewPost() *model.Post
	SavePost(post *model.Post) error
	SetPostContent(post *model.Post) error
	DeletePost(id model.PostID) error
	SetPostStatus(id model.PostID, status model.PostStatus) error

	// SetReloadNotifier sets a function that will be called when the posts are reloaded.
	SetReloadNotifier(notifier func(model.PostID))
}
