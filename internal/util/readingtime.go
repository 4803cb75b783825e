package util

import (
	"fmt"
	"regexp"
	"strings"
)

// Average adult reading speed in words per minute, with the slow/fast bounds
// used for the displayed range.
const (
	WordsPerMinute     = 225
	WordsPerMinuteSlow = 200
	WordsPerMinuteFast = 250

	// Seconds a reader spends on each embedded image.
	imageReadingSeconds = 12
)

var (
	htmlTagRe      = regexp.MustCompile(`<[^>]*>`)
	imageRe        = regexp.MustCompile(`<img[\s>]|!\[`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]+`)
	mdDecorationRe = regexp.MustCompile("[#*_`~>]+")
)

// ReadingStats summarizes a post body for the editor sidebar.
type ReadingStats struct {
	WordCount          int    `json:"word_count"`
	CharacterCount     int    `json:"character_count"`
	SentenceCount      int    `json:"sentence_count"`
	ImageCount         int    `json:"image_count"`
	ReadingTimeMinutes int    `json:"reading_time_minutes"`
	ReadingTime        string `json:"reading_time"`
}

func plainText(content string) string {
	text := htmlTagRe.ReplaceAllString(content, " ")
	return mdDecorationRe.ReplaceAllString(text, "")
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime estimates reading time in whole minutes, rounding up. Embedded
// images (markdown or inline HTML) add a fixed allowance each.
func ReadingTime(content string) int {
	words := countWords(plainText(content))
	images := len(imageRe.FindAllString(content, -1))

	seconds := (words*60+WordsPerMinute-1)/WordsPerMinute + images*imageReadingSeconds
	return (seconds + 59) / 60
}

// FormatReadingTime renders a minute count for display.
func FormatReadingTime(minutes int) string {
	switch {
	case minutes < 1:
		return "Less than a minute"
	case minutes == 1:
		return "1 minute read"
	default:
		return fmt.Sprintf("%d min read", minutes)
	}
}

// ReadingTimeRange renders a fast-to-slow reader estimate, collapsing to a
// single figure when the bounds agree.
func ReadingTimeRange(content string) string {
	words := countWords(plainText(content))

	minTime := (words + WordsPerMinuteFast - 1) / WordsPerMinuteFast
	maxTime := (words + WordsPerMinuteSlow - 1) / WordsPerMinuteSlow

	if minTime == maxTime {
		return FormatReadingTime(minTime)
	}
	return fmt.Sprintf("%d-%d min read", minTime, maxTime)
}

// GetReadingStats computes the full per-post breakdown.
func GetReadingStats(content string) ReadingStats {
	text := plainText(content)
	minutes := ReadingTime(content)

	return ReadingStats{
		WordCount:          countWords(text),
		CharacterCount:     len(text),
		SentenceCount:      len(sentenceEndRe.FindAllString(text, -1)),
		ImageCount:         len(imageRe.FindAllString(content, -1)),
		ReadingTimeMinutes: minutes,
		ReadingTime:        FormatReadingTime(minutes),
	}
}
