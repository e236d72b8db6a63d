package cache

import (
	"testing"
	"time"

	"yt-extract-api/pkg/models"
)

func testIdentity() models.VideoIdentity {
	return models.VideoIdentity{
		ID:  "dQw4w9WgXcQ",
		URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}
}

func TestLookupMiss(t *testing.T) {
	s := New(time.Minute, time.Minute)

	if _, found := s.Lookup(MetadataKey(testIdentity())); found {
		t.Error("Expected miss on empty cache")
	}
}

func TestStoreAndLookup(t *testing.T) {
	s := New(time.Minute, time.Minute)
	key := MetadataKey(testIdentity())

	result := &models.ExtractionResult{ID: "dQw4w9WgXcQ", Title: "Test Video"}
	s.Store(key, result)

	got, found := s.Lookup(key)
	if !found {
		t.Fatal("Expected hit after store")
	}
	if got.Title != "Test Video" {
		t.Errorf("Expected title Test Video, got %s", got.Title)
	}
}

func TestExpiredEntryTreatedAsAbsent(t *testing.T) {
	s := New(time.Minute, time.Hour)
	key := MetadataKey(testIdentity())

	s.StoreWithTTL(key, &models.ExtractionResult{ID: "dQw4w9WgXcQ"}, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := s.Lookup(key); found {
		t.Error("Expected expired entry to be treated as absent")
	}
}

func TestStoreOverwrites(t *testing.T) {
	s := New(time.Minute, time.Minute)
	key := MetadataKey(testIdentity())

	s.Store(key, &models.ExtractionResult{ID: "dQw4w9WgXcQ", Title: "First"})
	s.Store(key, &models.ExtractionResult{ID: "dQw4w9WgXcQ", Title: "Second"})

	got, found := s.Lookup(key)
	if !found {
		t.Fatal("Expected hit after overwrite")
	}
	if got.Title != "Second" {
		t.Errorf("Expected overwritten entry, got %s", got.Title)
	}
}

func TestDownloadKeyIncludesQualityAndFormat(t *testing.T) {
	identity := testIdentity()

	a := DownloadKey(identity, models.QualityHigh, models.FormatMP4)
	b := DownloadKey(identity, models.QualityLow, models.FormatMP4)
	c := DownloadKey(identity, models.QualityHigh, models.FormatMP3)

	if a == b || a == c || b == c {
		t.Error("Expected distinct download keys per (quality, format)")
	}

	if MetadataKey(identity) == a {
		t.Error("Expected metadata and download key spaces to be disjoint")
	}
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	s := New(0, time.Minute)
	if s.ttl != DefaultTTL {
		t.Errorf("Expected default TTL %v, got %v", DefaultTTL, s.ttl)
	}
}
