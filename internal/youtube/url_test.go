package youtube

import (
	"testing"

	"yt-extract-api/pkg/models"
)

func TestParseVideoURLNormalizesSpellings(t *testing.T) {
	// Different spellings of the same video must yield the same identity
	spellings := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ",
		"http://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?si=abc",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ",
		"www.youtube.com/watch?v=dQw4w9WgXcQ",
	}

	for _, url := range spellings {
		identity, err := ParseVideoURL(url)
		if err != nil {
			t.Errorf("ParseVideoURL(%q): unexpected error %v", url, err)
			continue
		}
		if identity.ID != "dQw4w9WgXcQ" {
			t.Errorf("ParseVideoURL(%q): expected ID dQw4w9WgXcQ, got %s", url, identity.ID)
		}
		if identity.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
			t.Errorf("ParseVideoURL(%q): expected canonical URL, got %s", url, identity.URL)
		}
	}
}

func TestParseVideoURLRejectsInvalid(t *testing.T) {
	invalid := []string{
		"",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://vimeo.com/12345678",
		"not a url",
		"https://www.youtube.com/watch?v=short",
	}

	for _, url := range invalid {
		if _, err := ParseVideoURL(url); err == nil {
			t.Errorf("ParseVideoURL(%q): expected error, got nil", url)
		}
	}
}

func TestParseVideoURLErrorKind(t *testing.T) {
	_, err := ParseVideoURL("https://example.com/video")
	ee, ok := models.AsExtractionError(err)
	if !ok {
		t.Fatal("Expected an ExtractionError")
	}
	if ee.Kind != models.ErrInvalidInput {
		t.Errorf("Expected invalid_input kind, got %s", ee.Kind)
	}
}

func TestValidatePlaylistURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"https://www.youtube.com/playlist?list=PLabc123", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLabc123", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"https://example.com/", false},
	}

	for _, test := range tests {
		if ValidatePlaylistURL(test.url) != test.valid {
			t.Errorf("ValidatePlaylistURL(%q): expected %t", test.url, test.valid)
		}
	}
}
