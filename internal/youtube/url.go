// Package youtube validates and normalizes YouTube URLs into canonical
// video identities so cache keys are stable across URL spellings.
package youtube

import (
	"fmt"
	"regexp"
	"strings"

	"yt-extract-api/pkg/models"
)

var (
	watchPattern  = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube|youtube-nocookie)\.com/(?:watch\?(?:.*&)?v=|embed/|shorts/|v/)([A-Za-z0-9_-]{11})`)
	shortPattern  = regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu\.be/([A-Za-z0-9_-]{11})`)
	playlistParam = regexp.MustCompile(`[?&]list=([A-Za-z0-9_-]+)`)
)

// ParseVideoURL validates a video URL and returns its canonical identity.
// All spellings of the same video (watch, short link, embed, shorts)
// normalize to the same identity.
func ParseVideoURL(rawURL string) (models.VideoIdentity, error) {
	id, ok := extractVideoID(rawURL)
	if !ok {
		return models.VideoIdentity{}, models.NewInvalidInput("Invalid YouTube URL")
	}

	return models.VideoIdentity{
		ID:  id,
		URL: CanonicalVideoURL(id),
	}, nil
}

// CanonicalVideoURL returns the canonical watch URL for a video ID
func CanonicalVideoURL(id string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
}

// ValidatePlaylistURL reports whether the URL looks like a playlist URL.
// The check is deliberately loose: a "playlist" path or a list= parameter.
func ValidatePlaylistURL(rawURL string) bool {
	if strings.Contains(strings.ToLower(rawURL), "playlist") {
		return true
	}
	return playlistParam.MatchString(rawURL)
}

func extractVideoID(rawURL string) (string, bool) {
	if matches := shortPattern.FindStringSubmatch(rawURL); len(matches) == 2 {
		return matches[1], true
	}
	if matches := watchPattern.FindStringSubmatch(rawURL); len(matches) == 2 {
		return matches[1], true
	}
	return "", false
}
