package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mmarkdown/mmark/v2/mast"
	"github.com/rs/zerolog"

	"github.com/apogee-blog/apogee/internal/ai"
	"github.com/apogee-blog/apogee/internal/analytics"
	"github.com/apogee-blog/apogee/internal/auth"
	"github.com/apogee-blog/apogee/internal/autosave"
	"github.com/apogee-blog/apogee/internal/cache"
	"github.com/apogee-blog/apogee/internal/config"
	"github.com/apogee-blog/apogee/internal/db"
	"github.com/apogee-blog/apogee/internal/feed"
	"github.com/apogee-blog/apogee/internal/kv"
	"github.com/apogee-blog/apogee/internal/logger"
	"github.com/apogee-blog/apogee/internal/model"
	"github.com/apogee-blog/apogee/internal/render"
	"github.com/apogee-blog/apogee/internal/repository"
	"github.com/apogee-blog/apogee/internal/repository/editor"
	"github.com/apogee-blog/apogee/internal/routes"
	"github.com/apogee-blog/apogee/internal/sse"
	"github.com/apogee-blog/apogee/internal/theme"
	"github.com/apogee-blog/apogee/internal/user"
	"github.com/apogee-blog/apogee/internal/util"
)

//go:embed static/* templates/*
var content embed.FS

var l zerolog.Logger

var clients = sse.NewSSEClients()

var database db.DB
var postRepository repository.PostRepository
var mediaRepository repository.MediaRepository

var draftEngine *autosave.Engine
var editorRepo editor.Repository
var editorHandler *editor.Handler

var activeAuthProvider auth.AuthProvider

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l)
	db.SetLogger(l)
	kv.SetLogger(l)
	repository.SetLogger(l)
	render.SetLogger(l)
	auth.SetLogger(l)
}

func resolveUser(r *http.Request) model.UserID {
	if activeAuthProvider == nil {
		return ""
	}
	userID, err := activeAuthProvider.GetUserIdFromSession(r)
	if err != nil {
		return ""
	}
	return userID
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded")
	}

	l = logger.New(os.Getenv("LOG_LEVEL"))
	setLoggers(l)

	configPath := os.Getenv("APOGEE_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	if err := config.LoadConfig(configPath); err != nil {
		l.Fatal().Err(err).Msg("Error loading config")
	}
	cfg := config.AppConfig

	if cfg.Logging.Level != "" {
		l = logger.New(cfg.Logging.Level)
		setLoggers(l)
	}

	database = db.NewSQLite(os.Getenv("APOGEE_DB"))
	if err := database.InitDB(); err != nil {
		l.Fatal().Msgf(config.ErrInitializeDatabaseFmt, err)
	}
	defer database.Close()

	postRepository = repository.NewDBPostRepository(database)

	// Draft persistence: debounced writes into the kv table, recovered on
	// editor open after a crash or restart.
	draftEngine = autosave.NewEngine(kv.NewDBStore(database), l,
		autosave.WithDelay(time.Duration(cfg.Autosave.DelayMs)*time.Millisecond),
		autosave.WithEnabled(cfg.Autosave.Enabled),
	)
	editorRepo = editor.NewPersistentRepository(editor.NewMemoryRepository(), draftEngine)
	editorHandler = editor.NewHandler(editorRepo, clients, &content)

	clerkAuthProvider := auth.NewClerkAuthProvider(os.Getenv("CLERK_API"), database)

	ed25519AuthProvider, err := auth.NewEd25519AuthProvider(
		os.Getenv("ED25519_PUBKEY"),
		"Authorization",
		model.UserID("admin"),
	)

	var userProvider user.AuthProvider

	switch cfg.Features.Authentication.Type {
	case "clerk":
		if err != nil {
			l.Warn().Err(err).Msg("Ed25519 auth provider unavailable")
			ed25519AuthProvider = nil
		}
		activeAuthProvider = clerkAuthProvider
		userProvider = user.NewClerkUserProvider()
	default:
		if err != nil {
			l.Fatal().Err(err).Msg("Error initializing ed25519 auth provider")
		}
		activeAuthProvider = ed25519AuthProvider
	}

	// Analytics pipeline: buffered sink into sqlite (or a remote collector),
	// one tracker per visitor.
	var sink analytics.Sink
	var dbSink *analytics.DBSink
	if cfg.Analytics.RemoteEndpoint != "" {
		sink = analytics.NewHTTPSink(cfg.Analytics.RemoteEndpoint)
	} else {
		dbSink = analytics.NewDBSink(database, l,
			analytics.WithBufferSize(cfg.Analytics.BufferSize),
			analytics.WithFlushInterval(time.Duration(cfg.Analytics.FlushIntervalSeconds)*time.Second),
			analytics.WithFlushThreshold(cfg.Analytics.FlushThreshold),
		)
		dbSink.Start()
		sink = dbSink
	}

	sessions := analytics.NewSessions(sink, l,
		analytics.WithMinReadTime(time.Duration(cfg.Analytics.MinReadSeconds)*time.Second),
	)
	reporter := analytics.NewReporter(database, l)
	analyticsHandler := analytics.NewHandler(sessions, reporter, resolveUser, l)

	// Calculate the hash of static content
	static, _ := fs.Sub(content, config.StaticLocalDir)
	fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if !d.IsDir() {
			cache.SetStaticHash(config.StaticUrlPath+path, util.ContentHash([]byte(path)))
		}
		return nil
	})

	mux := http.NewServeMux()

	mux.HandleFunc(routes.RobotsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("User-agent: *\nDisallow:"))
	})

	mux.HandleFunc(routes.ThemeOppositeIcon, func(w http.ResponseWriter, r *http.Request) {
		currTheme := r.URL.Query().Get("theme")
		if currTheme == "" {
			http.Error(w, "theme required", http.StatusBadRequest)
			return
		}

		w.Header().Set(config.HCType, config.CTypeHTML)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(theme.GetThemeIcon(currTheme)))
	})

	mux.HandleFunc(routes.PartialsPost, func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("post")
		if path == "" {
			http.NotFound(w, r)
			return
		}

		post, err := postRepository.ReadPost(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		htmlContent, _ := render.RenderMarkdownCached(post.Markdown, post.MDContentHash, theme.GetSyntaxThemeFromRequest(r))

		w.Header().Set(config.HCType, config.CTypeHTML)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(fmt.Sprintf("<title>%s</title>\n%s", post.Title, htmlContent)))
	})

	mux.Handle(config.StaticUrlPath, http.StripPrefix(config.StaticUrlPath, http.FileServer(http.FS(static))))
	mux.HandleFunc(config.PostsUrlPath, servePost)
	mux.HandleFunc(routes.NewPost, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:  config.CookieDraftID,
			Value: "",
			Path:  "/",
		})
		w.Header().Add(config.HHxRedirect, routes.NewPostEdit)
		http.Redirect(w, r, routes.NewPostEdit, http.StatusFound)
	})
	mux.HandleFunc(routes.ThemeToggle, serveThemePostToggle)
	mux.HandleFunc(routes.SyntaxThemeSet, serveSyntaxThemePostSet)
	mux.HandleFunc(routes.SyntaxThemeGet, serveSyntaxThemeGetTheme)
	mux.HandleFunc(routes.SSEPath, eventsHandler)
	mux.HandleFunc(routes.RootPath, serveIndex)

	mux.Handle(routes.PartialsPostPreview, http.HandlerFunc(serveNewPostPreview))
	mux.Handle(routes.PartialsDraftPreview, http.HandlerFunc(midWithDraftSaving(serveNewPostPreview)))

	mux.Handle(routes.NewPostEdit, http.HandlerFunc(editorHandler.ServeNewDraftEditor))
	mux.Handle(routes.EditPost, http.HandlerFunc(ServeEditPost))

	mux.HandleFunc("/webhook/user", clerkAuthProvider.HandleWebhookUser)
	if userProvider != nil {
		mux.HandleFunc(routes.UserProfile, userProvider.GetSessionKey)
	}

	mux.HandleFunc(routes.APIPosts, handleAPIPosts)

	if cfg.Features.Analytics.Enabled {
		mux.HandleFunc(routes.APIAnalyticsView, analyticsHandler.HandleView)
		mux.HandleFunc(routes.APIAnalyticsReadStart, analyticsHandler.HandleReadStart)
		mux.HandleFunc(routes.APIAnalyticsReadStop, analyticsHandler.HandleReadStop)
		mux.HandleFunc(routes.APIAnalyticsEngagement, analyticsHandler.HandleEngagement)
		mux.HandleFunc(routes.APIStatsPost, analyticsHandler.HandlePostStats)
		mux.HandleFunc(routes.APIStatsAuthor, analyticsHandler.HandleAuthorStats)
		mux.HandleFunc(routes.APIStatsPlatform, analyticsHandler.HandlePlatformStats)
	}

	if cfg.AI.Enabled {
		provider, err := ai.NewProviderFromConfig(&cfg.AI)
		if err != nil {
			l.Fatal().Err(err).Msg("Error configuring AI provider")
		}
		aiHandler := ai.NewHandler(ai.NewAssistant(provider, &cfg.AI), l)

		// Every assistant call spends provider credits, so none are open
		// to anonymous visitors.
		mux.HandleFunc(routes.APIAIImprove, midRequireUser(aiHandler.HandleImprove))
		mux.HandleFunc(routes.APIAIConcise, midRequireUser(aiHandler.HandleConcise))
		mux.HandleFunc(routes.APIAIGrammar, midRequireUser(aiHandler.HandleGrammar))
		mux.HandleFunc(routes.APIAITone, midRequireUser(aiHandler.HandleTone))
		mux.HandleFunc(routes.APIAISummarize, midRequireUser(aiHandler.HandleSummarize))
		mux.HandleFunc(routes.APIAITags, midRequireUser(aiHandler.HandleTags))
		mux.HandleFunc(routes.APIAICategory, midRequireUser(aiHandler.HandleCategory))
		mux.HandleFunc(routes.APIAIModerate, midRequireUser(aiHandler.HandleModerate))
	}

	if cfg.Media.Enabled {
		mediaRepository = repository.NewS3MediaRepository(
			os.Getenv("S3_ACCESS_KEY_ID"),
			os.Getenv("S3_ACCESS_KEY_SECRET"),
			cfg.Media.Endpoint,
			cfg.Media.Bucket,
			cfg.Media.PublicURL,
		)
		mux.HandleFunc(routes.APIImages, handleAPIImages)
	}

	if cfg.Features.Feeds.Enabled {
		feedHandler := feed.NewHandler(
			feed.NewGenerator(feed.SiteInfo{
				Name:        cfg.Site.Name,
				URL:         cfg.Site.URL,
				Description: cfg.Site.Description,
			}),
			postRepository,
			l,
		)
		mux.HandleFunc(routes.RSSPath, feedHandler.ServeRSS)
		mux.HandleFunc(routes.SitemapPath, feedHandler.ServeSitemap)
	}

	if ed25519AuthProvider != nil {
		auth.RegisterEd25519AuthRoutes(mux, ed25519AuthProvider, &content)
	}

	go postRepository.Init()
	postRepository.SetReloadNotifier(handleReloadPost)

	securedMux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == routes.RobotsPath { // Ignore robots.txt
			mux.ServeHTTP(w, r)
		} else {
			secureHeaders(mux.ServeHTTP)(w, r)
		}
	})

	var handler http.Handler = securedMux
	if activeAuthProvider != nil {
		handler = activeAuthProvider.WithHeaderAuthorization()(securedMux)
	}

	server := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: cacheIt(handler.ServeHTTP),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		l.Info().Str("addr", server.Addr).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-ctx.Done()
	l.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("Error shutting down server")
	}

	// Persist any in-flight drafts and drain buffered analytics events
	// before the process exits.
	draftEngine.Flush()
	if dbSink != nil {
		dbSink.Stop()
	}
}

func handleAPIPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := activeAuthProvider.EnforceUserAndGetId(w, r)
	if err != nil {
		return
	}

	switch r.Method {
	case http.MethodPost:
		draftID := r.PathValue("id")

		if _, err := editorRepo.GetDraft(editor.DraftID(draftID)); err != nil {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}

		content := r.FormValue("content")

		post := postRepository.NewPost()
		post.Markdown = []byte(content)
		post.Owner = userID
		post.Path = string(post.ID)
		post.Title = postTitle(post)

		if err := postRepository.SavePost(post); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// Published: the draft and its persisted snapshot are done.
		editorRepo.DeleteDraft(editor.DraftID(draftID))
		http.SetCookie(w, &http.Cookie{
			Name:  config.CookieDraftID,
			Value: "",
			Path:  "/",
		})

	case http.MethodPut:
		postID := r.PathValue("id")
		content := r.FormValue("content")

		post, err := postRepository.ReadPost(postID)
		if err != nil {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}
		if post.Owner != userID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		post.Markdown = []byte(content)
		if title := postTitle(post); title != "" && post.Title != title {
			post.Title = title
		}

		if err := postRepository.SetPostContent(post); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

	case http.MethodPatch:
		postID := r.PathValue("id")

		status := model.PostStatus(r.FormValue("status"))
		if status != model.PostStatusActive && status != model.PostStatusInactive {
			http.Error(w, "status must be active or inactive", http.StatusBadRequest)
			return
		}

		post, err := postRepository.ReadPost(postID)
		if err != nil {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}
		if post.Owner != userID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if err := postRepository.SetPostStatus(post.ID, status); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		postID := r.PathValue("id")

		post, err := postRepository.ReadPost(postID)
		if err != nil {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}
		if post.Owner != userID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if err := postRepository.DeletePost(post.ID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
	}
}

const maxImageUploadBytes = 10 << 20

func handleAPIImages(w http.ResponseWriter, r *http.Request) {
	if _, err := activeAuthProvider.EnforceUserAndGetId(w, r); err != nil {
		return
	}

	switch r.Method {
	case http.MethodPost:
		if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
			http.Error(w, "Invalid upload", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, "Image file required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxImageUploadBytes))
		if err != nil {
			http.Error(w, "Error reading upload", http.StatusInternalServerError)
			return
		}

		key, err := mediaRepository.Upload(r.Context(), header.Filename, header.Header.Get(config.HCType), data)
		if err != nil {
			l.Error().Err(err).Msg("Error uploading image")
			http.Error(w, "Upload failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set(config.HCType, config.CTypeJSON)
		json.NewEncoder(w).Encode(map[string]string{
			"key": key,
			"url": mediaRepository.URL(key),
		})

	case http.MethodDelete:
		key := r.URL.Query().Get("key")
		if key == "" {
			http.Error(w, "Key required", http.StatusBadRequest)
			return
		}
		if err := mediaRepository.Delete(r.Context(), key); err != nil {
			l.Error().Err(err).Str("key", key).Msg("Error deleting image")
			http.Error(w, "Delete failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
	}
}

func postTitle(post *model.Post) string {
	frontMatter, err := util.GetFrontMatter(post.Markdown)
	if err == nil && frontMatter.Title != "" {
		return frontMatter.Title
	}
	return "Untitled - " + post.CreatedDate.Format("2006-01-02")
}

func ServeEditPost(w http.ResponseWriter, r *http.Request) {
	userID, err := activeAuthProvider.GetUserIdFromSession(r)
	if err != nil {
		// Verify if it's an Hx-Request and if not, use standard redirect
		if r.Header.Get("Hx-Request") == "" {
			http.Redirect(w, r, routes.AuthLogin+"?redirect="+url.QueryEscape(r.URL.String()), http.StatusFound)
			return
		}
		// Redirect to the auth page if no userID (unauthorized)
		w.Header().Add(config.HHxRedirect, routes.AuthLogin+"?redirect="+url.QueryEscape(r.URL.String()))
		return
	}

	postID := strings.TrimPrefix(r.URL.Path, routes.EditPost)
	if postID == "" {
		http.NotFound(w, r)
		return
	}

	post, err := postRepository.ReadPost(postID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	// Check ownership
	if userID != post.Owner {
		w.Header().Add(config.HHxRedirect, r.Header.Get("Referer"))
		return
	}

	editorHandler.ServeEditPostEditor(w, r, post)
}

// midRequireUser rejects unauthenticated requests before the wrapped
// handler runs.
func midRequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := activeAuthProvider.EnforceUserAndGetId(w, r); err != nil {
			return
		}
		next(w, r)
	}
}

// midWithDraftSaving persists the draft body on every preview request, so the
// auto-save engine sees each keystroke batch.
func midWithDraftSaving(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draftID := r.FormValue("draft-id")
		if draftID == "" {
			next.ServeHTTP(w, r)
			return
		}

		content := r.FormValue("content")
		if err := editorRepo.SaveDraft(editor.DraftID(draftID), r.FormValue("title"), []byte(content)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func serveNewPostPreview(w http.ResponseWriter, r *http.Request) {
	content := r.FormValue("content")
	if content == "" {
		content = "Start typing in the editor to see a preview here."
	}

	htmlContent, _ := render.RenderMarkdown([]byte(content), theme.GetSyntaxThemeFromRequest(r))
	stats := util.GetReadingStats(content)

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write(htmlContent)
	fmt.Fprintf(w, `<div class="reading-stats">%d words, %s</div>`, stats.WordCount, stats.ReadingTime)
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		// Add etag header to response if it's a static file
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, hash)
		}

		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		h(w, r)
	}
}

func serveIndex(w http.ResponseWriter, r *http.Request) {
	posts := postRepository.ActivePostList()

	tmpl, err := template.ParseFS(content,
		config.TemplatesLocalDir+"/"+config.TemplateLayout,
		config.TemplatesLocalDir+"/"+config.TemplateIndex,
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := struct {
		*model.PageData
		PostsPath string
		Posts     []model.Post
	}{
		PageData:  model.NewPageData(r),
		PostsPath: config.PostsUrlPath,
		Posts:     posts,
	}

	w.Header().Set(config.HETag, util.ContentHash([]byte(data.Theme+data.SyntaxTheme)))

	err = tmpl.ExecuteTemplate(w, config.TemplateLayout, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func servePost(w http.ResponseWriter, r *http.Request) {
	postID := strings.TrimPrefix(r.URL.Path, config.PostsUrlPath)
	if postID == "" {
		http.NotFound(w, r)
		return
	}

	post, err := postRepository.ReadPost(postID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	htmlContent, extra := render.RenderMarkdownCached(post.Markdown, post.MDContentHash, theme.GetSyntaxThemeFromRequest(r))
	post.Path = postID
	post.Content = template.HTML(htmlContent)
	if titleData, ok := extra.(*mast.TitleData); ok && titleData != nil {
		post.Info = &util.ExtendedTitleData{TitleData: titleData}
	}

	data := struct {
		*model.PageData
		Post        *model.Post
		ReadingTime string
	}{
		PageData:    model.NewPageData(r),
		Post:        post,
		ReadingTime: util.ReadingTimeRange(string(post.Markdown)),
	}

	tmpl, err := template.ParseFS(content,
		config.TemplatesLocalDir+"/"+config.TemplateLayout,
		config.TemplatesLocalDir+"/"+config.TemplatePost,
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = tmpl.ExecuteTemplate(w, config.TemplateLayout, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func serveThemePostToggle(w http.ResponseWriter, r *http.Request) {
	currentTheme := theme.GetThemeFromRequest(r)

	newTheme := config.DefaultTheme
	if currentTheme == config.DarkTheme {
		newTheme = config.LightTheme
	}

	http.SetCookie(w, &http.Cookie{
		Name:  config.CookieTheme,
		Value: newTheme,
		Path:  "/",
	})

	syntaxTheme := theme.GetDefaultSyntaxTheme(newTheme)
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil {
		syntaxTheme = cookie.Value
	}

	w.Header().Set("Hx-Trigger", fmt.Sprintf(`{"themeChanged":{"value":"%s","syntaxTheme":"%s"}}`, newTheme, syntaxTheme))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(theme.GetThemeIcon(newTheme)))
}

func serveSyntaxThemePostSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	currTheme := r.FormValue("syntax-theme-select")
	if currTheme == "" {
		http.Error(w, "theme required", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.CookieSyntaxTheme,
		Value:    currTheme,
		Path:     "/",
		HttpOnly: true,
	})

	themeStyle := []byte(theme.GenerateSyntaxCSS(currTheme))
	w.WriteHeader(http.StatusOK)
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.Write(themeStyle)
}

func serveSyntaxThemeGetTheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	currTheme := r.PathValue("theme")

	themeStyle := []byte(theme.GenerateSyntaxCSS(currTheme))
	w.WriteHeader(http.StatusOK)
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HETag, util.ContentHash(themeStyle))
	w.Write(themeStyle)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	postID := r.URL.Query().Get("post")
	if postID == "" {
		http.Error(w, "Post parameter required", http.StatusBadRequest)
		return
	}

	w.Header().Set(config.HCType, "text/event-stream")
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Del("X-Content-Type-Options")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "event: connected\ndata: SSE connection established\n\n")
	flusher.Flush()

	client := &sse.Client{
		Msg:    make(chan string),
		PostID: model.PostID(postID),
	}

	clients.Add(client)

	l.Debug().Msg("New SSE client connected")

	defer func() {
		clients.Delete(client)
		l.Debug().Msg("SSE client disconnected")
	}()

	notify := r.Context().Done()
	for {
		select {
		case msg := <-client.Msg:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-notify:
			return
		}
	}
}

func handleReloadPost(postID model.PostID) {
	go clients.Broadcast(postID, "reload")
}
