package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestParseQuality(t *testing.T) {
	tests := []struct {
		input    string
		expected Quality
		ok       bool
	}{
		{"highest", QualityHighest, true},
		{"high", QualityHigh, true},
		{"medium", QualityMedium, true},
		{"low", QualityLow, true},
		{"audio_only", QualityAudioOnly, true},
		{"ultra", "", false},
		{"", "", false},
		{"HIGH", "", false},
	}

	for _, test := range tests {
		q, ok := ParseQuality(test.input)
		if ok != test.ok {
			t.Errorf("ParseQuality(%q): expected ok=%t, got %t", test.input, test.ok, ok)
		}
		if ok && q != test.expected {
			t.Errorf("ParseQuality(%q): expected %s, got %s", test.input, test.expected, q)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		ok       bool
	}{
		{"mp4", FormatMP4, true},
		{"webm", FormatWebM, true},
		{"mkv", FormatMKV, true},
		{"mp3", FormatMP3, true},
		{"avi", "", false},
		{"", "", false},
	}

	for _, test := range tests {
		f, ok := ParseFormat(test.input)
		if ok != test.ok {
			t.Errorf("ParseFormat(%q): expected ok=%t, got %t", test.input, test.ok, ok)
		}
		if ok && f != test.expected {
			t.Errorf("ParseFormat(%q): expected %s, got %s", test.input, test.expected, f)
		}
	}
}

func TestQualitySelectors(t *testing.T) {
	tests := []struct {
		quality  Quality
		selector string
	}{
		{QualityHighest, "best"},
		{QualityHigh, "best[height<=720]"},
		{QualityMedium, "best[height<=480]"},
		{QualityLow, "best[height<=360]"},
		{QualityAudioOnly, "bestaudio/best"},
	}

	for _, test := range tests {
		if QualitySelectors[test.quality] != test.selector {
			t.Errorf("Expected selector %q for quality %s, got %q",
				test.selector, test.quality, QualitySelectors[test.quality])
		}
	}
}

func TestExtractionErrorHTTPStatus(t *testing.T) {
	tests := []struct {
		kind   ErrorKind
		status int
	}{
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrSignInRequired, http.StatusForbidden},
		{ErrPrivateVideo, http.StatusForbidden},
		{ErrUnavailable, http.StatusNotFound},
		{ErrNoDownloadURL, http.StatusServiceUnavailable},
		{ErrOverloaded, http.StatusServiceUnavailable},
		{ErrExtractionFailed, http.StatusBadRequest},
		{ErrInternal, http.StatusInternalServerError},
	}

	for _, test := range tests {
		e := &ExtractionError{Kind: test.kind, Message: "test"}
		if e.HTTPStatus() != test.status {
			t.Errorf("Expected status %d for kind %s, got %d", test.status, test.kind, e.HTTPStatus())
		}
	}
}

func TestExtractionErrorRetriable(t *testing.T) {
	tests := []struct {
		kind      ErrorKind
		retriable bool
	}{
		{ErrSignInRequired, true},
		{ErrExtractionFailed, true},
		{ErrPrivateVideo, false},
		{ErrUnavailable, false},
		{ErrRateLimited, false},
		{ErrNoDownloadURL, false},
	}

	for _, test := range tests {
		e := &ExtractionError{Kind: test.kind}
		if e.Retriable() != test.retriable {
			t.Errorf("Expected retriable=%t for kind %s", test.retriable, test.kind)
		}
	}
}

func TestAsExtractionError(t *testing.T) {
	plain := errors.New("plain error")
	if _, ok := AsExtractionError(plain); ok {
		t.Error("Expected plain error not to unwrap into ExtractionError")
	}

	ee := NewPrivateVideo()
	wrapped := fmt.Errorf("processing video: %w", ee)
	got, ok := AsExtractionError(wrapped)
	if !ok {
		t.Fatal("Expected wrapped ExtractionError to unwrap")
	}
	if got.Kind != ErrPrivateVideo {
		t.Errorf("Expected kind %s, got %s", ErrPrivateVideo, got.Kind)
	}
}

func TestNewRateLimitedCarriesWait(t *testing.T) {
	e := NewRateLimited(1.5)
	if e.RetryAfter != 1.5 {
		t.Errorf("Expected retry_after 1.5, got %f", e.RetryAfter)
	}
	if e.HTTPStatus() != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", e.HTTPStatus())
	}
}

func TestNewSignInRequiredHasSuggestion(t *testing.T) {
	e := NewSignInRequired()
	if e.Suggestion == "" {
		t.Error("Expected sign-in error to carry a fallback suggestion")
	}
}
