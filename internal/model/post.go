// Package model defines core data structures and types for the blog application.
package model

import (
	"html/template"
	"strings"
	"time"

	"github.com/apogee-blog/apogee/internal/util"
)

type PostID string

type UserID string

// PostStatus controls whether a post is publicly visible.
type PostStatus string

const (
	PostStatusActive   PostStatus = "active"
	PostStatusInactive PostStatus = "inactive"
)

type Post struct {
	ID PostID

	Title   string
	Content template.HTML
	Path    string

	Status PostStatus
	Tags   []string

	// FeaturedImage is the media object key of the post's cover image, if any.
	FeaturedImage string

	// Used for cache busting.
	// We cannot use the content hash because the content is already rendered.
	MDContentHash string

	Markdown     []byte
	CreatedDate  time.Time
	ModifiedDate time.Time

	// Optional data from Mmark front matter.
	Info *util.ExtendedTitleData

	// Optional data: owner of the post (for example, the user who created it).
	Owner UserID
}

func (p *Post) GetTitle() string {
	if p.Info != nil && p.Info.Title != "" {
		var s strings.Builder

		if p.Info.SeriesInfo.Name != "" && p.Info.SeriesInfo.Value != "" {
			s.WriteString("[")
			s.WriteString(p.Info.SeriesInfo.Name)
			s.WriteString("-")
			s.WriteString(p.Info.SeriesInfo.Value)
			s.WriteString("] ")
		}

		s.WriteString(p.Info.Title)

		return s.String()
	}
	return p.Title
}

// IsActive reports whether the post should appear in public listings and feeds.
func (p *Post) IsActive() bool {
	return p.Status == "" || p.Status == PostStatusActive
}

// Summary returns a plain-text excerpt of up to n runes from the post's markdown,
// used for feed descriptions and meta tags.
func (p *Post) Summary(n int) string {
	text := strings.TrimSpace(string(p.Markdown))
	if p.Info != nil && p.Info.Consumed > 0 && p.Info.Consumed < len(text) {
		text = strings.TrimSpace(text[p.Info.Consumed:])
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
