// Package routes defines HTTP route constants for the application.
package routes

// API Routes
const (
	// Static and assets
	RobotsPath        = "/robots.txt"
	ThemeOppositeIcon = "/theme/opposite-icon"
	PartialsPost      = "/partials/post"
	ThemeToggle       = "/theme/toggle"
	SyntaxThemeSet    = "/syntax-theme/set"
	SyntaxThemeGet    = "/syntax-theme/{theme}"

	// SSE
	SSEPath = "/sse"

	// Root
	RootPath = "/"

	// Feeds
	RSSPath     = "/rss.xml"
	SitemapPath = "/sitemap.xml"

	// Editor routes
	NewPost              = "/new/post"
	NewPostEdit          = "/new/post/edit"
	EditPost             = "/edit/post/"
	PartialsPostPreview  = "/partials/post/preview"
	PartialsDraftPreview = "/partials/draft/preview"

	// API
	APIPosts  = "/api/posts/{id}"
	APIImages = "/api/images"

	// Analytics ingestion and dashboards
	APIAnalyticsView       = "/api/analytics/view"
	APIAnalyticsReadStart  = "/api/analytics/read-start"
	APIAnalyticsReadStop   = "/api/analytics/read-time"
	APIAnalyticsEngagement = "/api/analytics/engagement"
	APIStatsPost           = "/api/stats/post/{id}"
	APIStatsAuthor         = "/api/stats/author/{id}"
	APIStatsPlatform       = "/api/stats/platform"

	// Writing assistant
	APIAIImprove   = "/api/ai/improve"
	APIAIConcise   = "/api/ai/concise"
	APIAIGrammar   = "/api/ai/grammar"
	APIAITone      = "/api/ai/tone"
	APIAISummarize = "/api/ai/summarize"
	APIAITags      = "/api/ai/tags"
	APIAICategory  = "/api/ai/category"
	APIAIModerate  = "/api/ai/moderate"

	// Auth routes
	AuthChallenge = "/auth/challenge"
	AuthVerify    = "/auth/verify"
	AuthLogin     = "/auth/login"

	UserProfile = "/user/profile"
)
