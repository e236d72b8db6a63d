// Package engine wraps the external extraction tool behind a small
// interface. The orchestrator treats it as an opaque function of
// (URL, client profile) that either returns structured metadata or fails
// with a classifiable error.
package engine

import (
	"context"
	"time"

	"yt-extract-api/pkg/models"
)

// Request configures a single extraction attempt
type Request struct {
	URL string

	// Client impersonation
	PlayerClient string
	UserAgent    string
	Headers      map[string]string

	// Output shaping
	FormatSelector string
	ExtractAudio   bool
	IncludeFormats bool

	// Flat listing (metadata only, no stream resolution)
	Flat        bool
	PlaylistEnd int

	Timeout time.Duration
}

// Engine is the external extraction collaborator
type Engine interface {
	// Extract resolves full metadata and a download URL for one video
	Extract(ctx context.Context, req Request) (*models.ExtractionResult, error)

	// FlatList resolves a flattened playlist listing capped at limit
	FlatList(ctx context.Context, url string, limit int) (*models.PlaylistInfo, error)

	// Probe performs a flat, single-attempt accessibility check
	Probe(ctx context.Context, req Request) (*models.ExtractionResult, error)
}
