package utils

import (
	"context"
	"log"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"golang-legal-news-pipeline/pkg/logger"
)

// GoSafe runs fn in a goroutine and recovers from panics so a single bad
// item cannot take down the whole pipeline.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the context is still live, logging when it
// is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Info("Context canceled, stopping work", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}

// TimeNowEastern returns the current time in the Toronto timezone, where the
// covered legal-news sources publish.
func TimeNowEastern() time.Time {
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		return time.Now().UTC()
	}
	return time.Now().In(loc)
}

// CleanToValidUTF8 strips invalid UTF-8 sequences from scraped text.
func CleanToValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

// ContainsString reports whether list contains s.
func ContainsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// CollapseWhitespace trims s and collapses internal runs of whitespace to a
// single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
