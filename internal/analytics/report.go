package analytics

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/apogee-blog/apogee/internal/db"
	"github.com/apogee-blog/apogee/internal/model"
)

// PostStats summarizes engagement for one post.
type PostStats struct {
	PostID         model.PostID `json:"post_id"`
	Views          int          `json:"views"`
	UniqueVisitors int          `json:"unique_visitors"`
	AvgReadSeconds int          `json:"avg_read_seconds"`
}

// AuthorStats rolls up engagement across an author's posts.
type AuthorStats struct {
	UserID         model.UserID `json:"user_id"`
	TotalPosts     int          `json:"total_posts"`
	TotalViews     int          `json:"total_views"`
	UniqueVisitors int          `json:"unique_visitors"`
	AvgReadSeconds int          `json:"avg_read_seconds"`
	Posts          []PostStats  `json:"posts"`
}

// PopularPost pairs a post with its view count for the platform dashboard.
type PopularPost struct {
	PostID model.PostID `json:"post_id"`
	Title  string       `json:"title"`
	Views  int          `json:"views"`
}

// PlatformStats summarizes engagement across the whole site.
type PlatformStats struct {
	TotalPosts     int           `json:"total_posts"`
	TotalViews     int           `json:"total_views"`
	UniqueVisitors int           `json:"unique_visitors"`
	AvgReadSeconds int           `json:"avg_read_seconds"`
	PopularPosts   []PopularPost `json:"popular_posts"`
}

// Reporter answers dashboard queries over the aggregated analytics tables.
type Reporter struct {
	db  db.DB
	log zerolog.Logger
}

func NewReporter(database db.DB, log zerolog.Logger) *Reporter {
	return &Reporter{db: database, log: log}
}

func (r *Reporter) PostStats(postID model.PostID) (*PostStats, error) {
	stats := &PostStats{PostID: postID}

	row := r.db.Get().QueryRow(
		`SELECT COUNT(*), COUNT(DISTINCT visitor_id) FROM post_views WHERE post_id = ?`, postID)
	if err := row.Scan(&stats.Views, &stats.UniqueVisitors); err != nil {
		return nil, fmt.Errorf("error querying post views: %w", err)
	}

	row = r.db.Get().QueryRow(
		`SELECT COALESCE(ROUND(AVG(seconds)), 0) FROM read_times WHERE post_id = ?`, postID)
	if err := row.Scan(&stats.AvgReadSeconds); err != nil {
		return nil, fmt.Errorf("error querying read times: %w", err)
	}

	return stats, nil
}

func (r *Reporter) AuthorStats(userID model.UserID) (*AuthorStats, error) {
	stats := &AuthorStats{UserID: userID}

	rows, err := r.db.Query(`SELECT id FROM posts WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying author posts: %w", err)
	}
	defer rows.Close()

	var postIDs []model.PostID
	for rows.Next() {
		var id model.PostID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning post id: %w", err)
		}
		postIDs = append(postIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author posts: %w", err)
	}

	stats.TotalPosts = len(postIDs)

	var readTimeSum, readTimeCount int
	for _, postID := range postIDs {
		postStats, err := r.PostStats(postID)
		if err != nil {
			return nil, err
		}
		stats.Posts = append(stats.Posts, *postStats)
		stats.TotalViews += postStats.Views
		stats.UniqueVisitors += postStats.UniqueVisitors
		if postStats.AvgReadSeconds > 0 {
			readTimeSum += postStats.AvgReadSeconds
			readTimeCount++
		}
	}
	if readTimeCount > 0 {
		stats.AvgReadSeconds = readTimeSum / readTimeCount
	}

	return stats, nil
}

func (r *Reporter) PlatformStats(limit int) (*PlatformStats, error) {
	if limit <= 0 {
		limit = 10
	}

	stats := &PlatformStats{}

	row := r.db.Get().QueryRow(`SELECT COUNT(*) FROM posts`)
	if err := row.Scan(&stats.TotalPosts); err != nil {
		return nil, fmt.Errorf("error counting posts: %w", err)
	}

	row = r.db.Get().QueryRow(`SELECT COUNT(*), COUNT(DISTINCT visitor_id) FROM post_views`)
	if err := row.Scan(&stats.TotalViews, &stats.UniqueVisitors); err != nil {
		return nil, fmt.Errorf("error counting views: %w", err)
	}

	row = r.db.Get().QueryRow(`SELECT COALESCE(ROUND(AVG(seconds)), 0) FROM read_times`)
	if err := row.Scan(&stats.AvgReadSeconds); err != nil {
		return nil, fmt.Errorf("error averaging read times: %w", err)
	}

	rows, err := r.db.Query(`
SELECT v.post_id, COALESCE(p.title, ''), COUNT(*) AS views
FROM post_views v
LEFT JOIN posts p ON p.id = v.post_id
GROUP BY v.post_id
ORDER BY views DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying popular posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var popular PopularPost
		if err := rows.Scan(&popular.PostID, &popular.Title, &popular.Views); err != nil {
			return nil, fmt.Errorf("error scanning popular post: %w", err)
		}
		stats.PopularPosts = append(stats.PopularPosts, popular)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating popular posts: %w", err)
	}

	return stats, nil
}
