package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/apogee-blog/apogee/internal/db"
	"github.com/apogee-blog/apogee/internal/logger"
)

// parseFuzzyTime attempts to parse a timestamp string using multiple formats.
func parseFuzzyTime(timeStr string) (time.Time, error) {
	timeFormats := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05-07:00",
		time.RFC3339,
		"2006-01-02 15:04:05", // no timezone info
	}

	for _, format := range timeFormats {
		parsed, err := time.Parse(format, timeStr)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse time '%s' with any known format", timeStr)
}

func updateTimestamp(db *sql.DB, id, column string, newTime time.Time) error {
	_, err := db.Exec(fmt.Sprintf("UPDATE posts SET %s = ? WHERE id = ?", column), newTime, id)
	return err
}

// Normalizes the created_at and modified_at columns to UTC RFC 3339,
// for rows written before timestamps were stored consistently.
func main() {
	dbPath := flag.String("db", "", "Path to the sqlite database (defaults to ./database.db)")
	flag.Parse()

	l := logger.New(os.Getenv("LOG_LEVEL"))
	l.Info().Msg("Starting timestamp migration")

	database := db.NewSQLite(*dbPath)
	if err := database.InitDB(); err != nil {
		l.Fatal().Err(err).Msg("Error initializing database")
	}
	defer database.Close()

	sqlDB := database.Get()

	rows, err := sqlDB.Query("SELECT id, created_at, modified_at FROM posts")
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to query posts")
	}
	defer rows.Close()

	type PostTime struct {
		ID         string
		CreatedAt  string
		ModifiedAt string
	}

	var posts []PostTime
	for rows.Next() {
		var p PostTime
		if err := rows.Scan(&p.ID, &p.CreatedAt, &p.ModifiedAt); err != nil {
			l.Error().Err(err).Msg("Failed to scan row")
			continue
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		l.Fatal().Err(err).Msg("Error during row iteration")
	}

	l.Info().Int("posts", len(posts)).Msg("Found posts to process")

	for _, p := range posts {
		for column, raw := range map[string]string{"created_at": p.CreatedAt, "modified_at": p.ModifiedAt} {
			parsed, err := parseFuzzyTime(raw)
			if err != nil {
				l.Warn().Str("id", p.ID).Str("column", column).Str("value", raw).Msg("Could not parse timestamp")
				continue
			}
			if err := updateTimestamp(sqlDB, p.ID, column, parsed); err != nil {
				l.Error().Err(err).Str("id", p.ID).Str("column", column).Msg("Failed to update timestamp")
				continue
			}
			l.Debug().Str("id", p.ID).Str("column", column).Time("value", parsed).Msg("Updated timestamp")
		}
	}

	l.Info().Msg("Timestamp migration complete")
}
