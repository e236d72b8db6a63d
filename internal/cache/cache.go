// Package cache provides the in-memory TTL store for extraction results.
package cache

import (
	"fmt"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"yt-extract-api/pkg/models"
)

// DefaultTTL is the expiry applied when no TTL is configured
const DefaultTTL = 30 * time.Minute

// Store caches extraction results keyed by canonical video identity.
// Expired entries are treated as absent on lookup and removed by the
// periodic sweep.
type Store struct {
	cache  *gocache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// New creates a store with the given TTL and background sweep interval
func New(ttl, sweepInterval time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		cache:  gocache.New(ttl, sweepInterval),
		ttl:    ttl,
		logger: zerolog.New(os.Stdout).With().Timestamp().Logger(),
	}
}

// Lookup returns the cached result if present and not expired
func (s *Store) Lookup(key string) (*models.ExtractionResult, bool) {
	item, found := s.cache.Get(key)
	if !found {
		return nil, false
	}
	result, ok := item.(*models.ExtractionResult)
	if !ok {
		s.cache.Delete(key)
		return nil, false
	}
	return result, true
}

// Store inserts or overwrites the entry with expiry = now + TTL
func (s *Store) Store(key string, result *models.ExtractionResult) {
	s.StoreWithTTL(key, result, s.ttl)
}

// StoreWithTTL inserts the entry with a custom TTL
func (s *Store) StoreWithTTL(key string, result *models.ExtractionResult, ttl time.Duration) {
	s.cache.Set(key, result, ttl)
	s.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("Cached extraction result")
}

// Delete removes an entry
func (s *Store) Delete(key string) {
	s.cache.Delete(key)
}

// Len returns the number of live entries
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// MetadataKey keys the metadata path by video identity only
func MetadataKey(identity models.VideoIdentity) string {
	return "meta:" + identity.ID
}

// DownloadKey keys the download path by identity, quality and format so a
// cached hit never returns a URL resolved for a different output shape.
func DownloadKey(identity models.VideoIdentity, quality models.Quality, format models.Format) string {
	return fmt.Sprintf("dl:%s:%s:%s", identity.ID, quality, format)
}
