package model

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/apogee-blog/apogee/internal/config"
	"github.com/apogee-blog/apogee/internal/theme"
)

type PageData struct {
	SiteName        string
	SiteTagline     string
	SiteDescription string
	SiteKeywords    []string
	SiteAuthor      string

	PageURL string

	Theme               string
	AllowThemeSwitching bool

	EditorEnabled      bool
	LivePreviewEnabled bool

	SyntaxCSS    template.CSS
	SyntaxTheme  string
	SyntaxThemes []string

	ShowToolbar  *bool
	IsEditorPage *bool
}

func NewPageData(r *http.Request) *PageData {
	syntaxtheme := theme.GetSyntaxThemeFromRequest(r)
	pd := &PageData{
		SiteName:     "Apogee",
		PageURL:      r.URL.Path,
		Theme:        theme.GetThemeFromRequest(r),
		SyntaxTheme:  syntaxtheme,
		SyntaxThemes: theme.GetSyntaxThemes(),
		SyntaxCSS:    theme.GenerateSyntaxCSS(syntaxtheme),
	}

	if cfg := config.AppConfig; cfg != nil {
		pd.SiteName = cfg.Site.Name
		pd.SiteTagline = cfg.Site.Tagline
		pd.SiteDescription = cfg.Site.Description
		pd.SiteKeywords = cfg.Meta.Keywords
		pd.SiteAuthor = cfg.Meta.Author
		pd.AllowThemeSwitching = cfg.Theme.AllowSwitching
		pd.EditorEnabled = cfg.Features.Editor.Enabled
		pd.LivePreviewEnabled = cfg.Features.Editor.LivePreview
	}

	return pd
}

func (pd *PageData) IsPost() bool {
	if pd.ShowToolbar == nil {
		return strings.HasPrefix(pd.PageURL, config.PostsUrlPath)
	}
	return *pd.ShowToolbar
}

func (pd *PageData) IsEditor() bool {
	if pd.IsEditorPage != nil {
		return *pd.IsEditorPage
	}
	const editPrefix = "/new/post/edit"
	return pd.PageURL == editPrefix || strings.HasPrefix(pd.PageURL, editPrefix+"/")
}
