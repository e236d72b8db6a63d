// Package profile enumerates the client impersonation profiles used to vary
// extraction requests. App clients (android, ios) historically face fewer
// verification challenges than browser-origin requests, so they lead the
// rotation order.
package profile

import (
	"yt-extract-api/pkg/models"
)

// Profile describes one impersonated upstream client
type Profile struct {
	Name         models.ClientName
	PlayerClient string
	UserAgent    string
	Headers      map[string]string
	SkipManifest bool
}

var profiles = map[models.ClientName]Profile{
	models.ClientAndroid: {
		Name:         models.ClientAndroid,
		PlayerClient: "android",
		UserAgent:    "com.google.android.youtube/19.09.37 (Linux; U; Android 11) gzip",
		Headers: map[string]string{
			"X-YouTube-Client-Name":    "3",
			"X-YouTube-Client-Version": "19.09.37",
		},
		SkipManifest: true,
	},
	models.ClientIOS: {
		Name:         models.ClientIOS,
		PlayerClient: "ios",
		UserAgent:    "com.google.ios.youtube/19.09.3 (iPhone14,3; U; CPU iOS 15_6 like Mac OS X)",
		Headers: map[string]string{
			"X-YouTube-Client-Name":    "5",
			"X-YouTube-Client-Version": "19.09.3",
		},
		SkipManifest: true,
	},
	models.ClientWeb: {
		Name:         models.ClientWeb,
		PlayerClient: "web",
		UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Headers: map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
			"Referer":         "https://www.youtube.com/",
		},
		SkipManifest: true,
	},
	models.ClientMobileWeb: {
		Name:         models.ClientMobileWeb,
		PlayerClient: "mweb",
		UserAgent:    "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1",
		Headers: map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
			"Referer":         "https://m.youtube.com/",
		},
		SkipManifest: true,
	},
}

// defaultOrder is the fixed rotation sequence for retry attempts
var defaultOrder = []models.ClientName{
	models.ClientAndroid,
	models.ClientIOS,
	models.ClientWeb,
	models.ClientMobileWeb,
}

// Selector hands out profiles in a fixed, deterministic order
type Selector struct {
	order []models.ClientName
}

// NewSelector creates a selector with the default rotation order
func NewSelector() *Selector {
	return &Selector{order: defaultOrder}
}

// ForAttempt returns the profile for the given attempt index, wrapping
// around the sequence when attempts exceed its length.
func (s *Selector) ForAttempt(attempt int) Profile {
	name := s.order[attempt%len(s.order)]
	return profiles[name]
}

// Pinned returns a single named profile, as used by the fallback methods
func (s *Selector) Pinned(name models.ClientName) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// Order returns the rotation sequence
func (s *Selector) Order() []models.ClientName {
	out := make([]models.ClientName, len(s.order))
	copy(out, s.order)
	return out
}
