package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/apogee-blog/apogee/internal/db"
	"github.com/apogee-blog/apogee/internal/logger"
	"github.com/apogee-blog/apogee/internal/model"
	"github.com/apogee-blog/apogee/internal/repository"
	"github.com/apogee-blog/apogee/internal/util"
)

// Imports a directory of .md files into the posts table.
func main() {
	path := flag.String("path", "", "Path to the directory containing .md files")
	ownerID := flag.String("owner-id", "", "Owner user ID for the posts")
	dbPath := flag.String("db", "", "Path to the sqlite database (defaults to ./database.db)")
	flag.Parse()

	l := logger.New(os.Getenv("LOG_LEVEL"))

	if *path == "" || *ownerID == "" {
		l.Fatal().Msg("Both --path and --owner-id flags are required")
	}

	database := db.NewSQLite(*dbPath)
	if err := database.InitDB(); err != nil {
		l.Fatal().Err(err).Msg("Error initializing database")
	}
	defer database.Close()

	repo := repository.NewDBPostRepository(database)

	files, err := os.ReadDir(*path)
	if err != nil {
		l.Fatal().Err(err).Str("path", *path).Msg("Error reading directory")
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}
		if err := processFile(*path, file, repo, *ownerID); err != nil {
			l.Error().Err(err).Str("file", file.Name()).Msg("Error processing file")
			continue
		}
		l.Info().Str("file", file.Name()).Msg("Saved post")
	}
}

func processFile(dirPath string, file os.DirEntry, repo repository.PostRepository, ownerID string) error {
	filePath := filepath.Join(dirPath, file.Name())

	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	frontMatter, err := util.GetFrontMatter(content)
	if err != nil {
		frontMatter = nil
	}

	// Use the front matter title if available, otherwise the file name.
	title := strings.TrimSuffix(file.Name(), ".md")
	if frontMatter != nil && frontMatter.Title != "" {
		title = frontMatter.Title
	}

	fileInfo, err := file.Info()
	if err != nil {
		return err
	}
	modTime := fileInfo.ModTime()

	createdDate := modTime.UTC()
	if frontMatter != nil && !frontMatter.Date.IsZero() {
		createdDate = frontMatter.Date.UTC()
	}

	post := &model.Post{
		ID:           model.PostID(uuid.New().String()),
		Title:        title,
		Markdown:     content,
		Status:       model.PostStatusActive,
		CreatedDate:  createdDate,
		ModifiedDate: modTime.UTC(),
		Owner:        model.UserID(ownerID),
	}
	post.Path = string(post.ID)

	if frontMatter != nil && len(frontMatter.Keyword) > 0 {
		post.Tags = frontMatter.Keyword
	}

	return repo.SavePost(post)
}
