// Package feed renders the RSS feed and XML sitemap from the post repository.
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/apogee-blog/apogee/internal/model"
)

const summaryLength = 280

// SiteInfo is the feed-level site metadata.
type SiteInfo struct {
	Name        string
	URL         string
	Description string
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description,omitempty"`
	Author      string `xml:"author,omitempty"`
	Category    string `xml:"category,omitempty"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Generator builds feed documents from the current post list.
type Generator struct {
	site SiteInfo
}

func NewGenerator(site SiteInfo) *Generator {
	return &Generator{site: site}
}

func (g *Generator) postURL(id model.PostID) string {
	return strings.TrimSuffix(g.site.URL, "/") + "/" + string(id)
}

// RSS renders an RSS 2.0 document. Posts must already be filtered to the
// public set and sorted newest first.
func (g *Generator) RSS(posts []model.Post) ([]byte, error) {
	channel := rssChannel{
		Title:       g.site.Name,
		Link:        g.site.URL,
		Description: g.site.Description,
		Language:    "en-us",
	}

	for _, post := range posts {
		item := rssItem{
			Title:       post.GetTitle(),
			Link:        g.postURL(post.ID),
			Description: post.Summary(summaryLength),
			Author:      string(post.Owner),
			GUID:        g.postURL(post.ID),
			PubDate:     post.ModifiedDate.UTC().Format(time.RFC1123Z),
		}
		if len(post.Tags) > 0 {
			item.Category = post.Tags[0]
		}
		channel.Items = append(channel.Items, item)
	}

	if len(posts) > 0 {
		channel.LastBuildDate = posts[0].ModifiedDate.UTC().Format(time.RFC1123Z)
	}

	return marshalXML(rssFeed{Version: "2.0", Channel: channel})
}

// Sitemap renders an XML sitemap with the site root and every public post.
func (g *Generator) Sitemap(posts []model.Post) ([]byte, error) {
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{
				Loc:        g.site.URL,
				ChangeFreq: "daily",
				Priority:   "1.0",
			},
		},
	}

	for _, post := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        g.postURL(post.ID),
			LastMod:    post.ModifiedDate.UTC().Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	return marshalXML(set)
}

func marshalXML(doc any) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshaling feed: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
