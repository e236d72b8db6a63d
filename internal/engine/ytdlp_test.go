package engine

import (
	"errors"
	"testing"

	"yt-extract-api/pkg/models"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		message string
		kind    models.ErrorKind
	}{
		{"ERROR: [youtube] abc: Sign in to confirm you're not a bot.", models.ErrSignInRequired},
		{"ERROR: [youtube] abc: Private video. Sign in if you've been granted access", models.ErrPrivateVideo},
		{"ERROR: [youtube] abc: Video unavailable", models.ErrUnavailable},
		{"ERROR: [youtube] abc: Video unavailable. This video has been removed", models.ErrUnavailable},
		{"network timeout", models.ErrExtractionFailed},
		{"exit status 1", models.ErrExtractionFailed},
	}

	for _, test := range tests {
		got := ClassifyError(errors.New(test.message))
		if got.Kind != test.kind {
			t.Errorf("ClassifyError(%q): expected %s, got %s", test.message, test.kind, got.Kind)
		}
	}
}

func TestClassifyErrorPrivateBeatsSignInMarker(t *testing.T) {
	// "Private video. Sign in if you've been granted access" must classify
	// as private, not sign-in-required; the sign-in marker is the stricter
	// bot-check phrasing.
	got := ClassifyError(errors.New("Private video. Sign in if you've been granted access"))
	if got.Kind != models.ErrPrivateVideo {
		t.Errorf("Expected private_video, got %s", got.Kind)
	}
}

func TestParseOutput(t *testing.T) {
	stdout := `{"id":"dQw4w9WgXcQ","title":"Test","duration":212.0,"uploader":"Rick","url":"https://cdn.example/v.mp4","ext":"mp4","format_id":"22","filesize":null}`

	info, err := parseOutput(stdout)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if info.ID != "dQw4w9WgXcQ" {
		t.Errorf("Expected ID dQw4w9WgXcQ, got %s", info.ID)
	}
	if info.Duration == nil || *info.Duration != 212.0 {
		t.Error("Expected duration 212.0")
	}
	if info.Filesize != nil {
		t.Error("Expected null filesize to stay nil")
	}
}

func TestParseOutputEmpty(t *testing.T) {
	if _, err := parseOutput("   \n"); err == nil {
		t.Error("Expected error for empty output")
	}
}

func TestParseOutputFlatPlaylist(t *testing.T) {
	stdout := `{"id":"PLabc","title":"Mix","entries":[{"id":"aaaaaaaaaaa","title":"One","url":"https://www.youtube.com/watch?v=aaaaaaaaaaa","duration":10.0},{"id":"bbbbbbbbbbb","title":"Two"}]}`

	info, err := parseOutput(stdout)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(info.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(info.Entries))
	}
	if info.Entries[1].Duration != nil {
		t.Error("Expected absent duration to stay nil")
	}
}

func TestFilterFormats(t *testing.T) {
	none := "none"
	h264 := "avc1.64001F"
	aac := "mp4a.40.2"

	formats := []ytdlpFmt{
		{FormatID: "22", Ext: "mp4", VCodec: &h264, ACodec: &aac},
		{FormatID: "140", Ext: "m4a", VCodec: &none, ACodec: &aac},
		{FormatID: "sb0", Ext: "mhtml", VCodec: &none, ACodec: &none},
		{FormatID: "raw", Ext: "mp4"},
	}

	out := filterFormats(formats)
	if len(out) != 2 {
		t.Fatalf("Expected 2 usable formats, got %d", len(out))
	}
	if out[0].FormatID != "22" || out[1].FormatID != "140" {
		t.Errorf("Unexpected formats kept: %v", out)
	}
}
