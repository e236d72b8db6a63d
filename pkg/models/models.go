package models

import (
	"time"
)

// Quality represents the requested quality tier
type Quality string

const (
	QualityHighest   Quality = "highest"
	QualityHigh      Quality = "high"
	QualityMedium    Quality = "medium"
	QualityLow       Quality = "low"
	QualityAudioOnly Quality = "audio_only"
)

// Format represents the requested container format
type Format string

const (
	FormatMP4  Format = "mp4"
	FormatWebM Format = "webm"
	FormatMKV  Format = "mkv"
	FormatMP3  Format = "mp3"
)

// ClientName identifies an impersonated upstream client
type ClientName string

const (
	ClientAndroid   ClientName = "android"
	ClientIOS       ClientName = "ios"
	ClientWeb       ClientName = "web"
	ClientMobileWeb ClientName = "mweb"
)

// QualitySelectors maps a quality tier to the engine's format selector
var QualitySelectors = map[Quality]string{
	QualityHighest:   "best",
	QualityHigh:      "best[height<=720]",
	QualityMedium:    "best[height<=480]",
	QualityLow:       "best[height<=360]",
	QualityAudioOnly: "bestaudio/best",
}

// ParseQuality validates a quality query value
func ParseQuality(s string) (Quality, bool) {
	q := Quality(s)
	_, ok := QualitySelectors[q]
	return q, ok
}

// ParseFormat validates a format query value
func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case FormatMP4, FormatWebM, FormatMKV, FormatMP3:
		return f, true
	}
	return "", false
}

// VideoIdentity is the canonical reference to one remote video. Two input
// spellings of the same video must normalize to the same identity.
type VideoIdentity struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ExtractionRequest describes one extraction. Immutable once constructed.
type ExtractionRequest struct {
	Identity       VideoIdentity
	Quality        Quality
	Format         Format
	ForceRefresh   bool
	IncludeFormats bool
}

// FormatInfo is one entry of the upstream format list. Pointer fields keep
// the present-but-null vs absent distinction from the upstream payload.
type FormatInfo struct {
	FormatID string   `json:"format_id"`
	Ext      string   `json:"ext"`
	Quality  *float64 `json:"quality"`
	Filesize *int64   `json:"filesize"`
	VCodec   *string  `json:"vcodec"`
	ACodec   *string  `json:"acodec"`
	FPS      *float64 `json:"fps"`
	Width    *int     `json:"width"`
	Height   *int     `json:"height"`
	URL      string   `json:"url"`
}

// ExtractionResult holds everything the engine resolved for a video.
// Owned by the cache entry or response that holds it after extraction.
type ExtractionResult struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Duration    *float64     `json:"duration"`
	ViewCount   *int64       `json:"view_count"`
	LikeCount   *int64       `json:"like_count"`
	Uploader    *string      `json:"uploader"`
	UploadDate  *string      `json:"upload_date"`
	Thumbnail   *string      `json:"thumbnail"`
	Tags        []string     `json:"tags"`
	Categories  []string     `json:"categories"`
	AgeLimit    *int         `json:"age_limit"`
	WebpageURL  string       `json:"webpage_url"`
	DownloadURL string       `json:"download_url"`
	Ext         string       `json:"ext"`
	FormatID    string       `json:"format_id"`
	Filesize    *int64       `json:"filesize"`
	Formats     []FormatInfo `json:"formats,omitempty"`
	Profile     ClientName   `json:"-"`
	ExtractedAt time.Time    `json:"extracted_at"`
}

// PlaylistVideo is one flattened playlist member
type PlaylistVideo struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Duration *float64 `json:"duration"`
	Uploader *string  `json:"uploader"`
}

// PlaylistInfo is the flattened playlist listing
type PlaylistInfo struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Uploader    *string         `json:"uploader"`
	VideoCount  int             `json:"video_count"`
	Videos      []PlaylistVideo `json:"videos"`
}

// DownloadInfo is the download-endpoint response shape
type DownloadInfo struct {
	Title           string   `json:"title"`
	ID              string   `json:"id"`
	Duration        *float64 `json:"duration"`
	Filesize        *int64   `json:"filesize"`
	Ext             string   `json:"ext"`
	FormatID        string   `json:"format_id"`
	Quality         Quality  `json:"quality"`
	RequestedFormat Format   `json:"requested_format"`
	DownloadURL     string   `json:"download_url"`
	Thumbnail       *string  `json:"thumbnail"`
	Cached          bool     `json:"cached"`
}

// PlaylistDownloadEntry is one member's result-or-error in a batch
type PlaylistDownloadEntry struct {
	VideoInfo    PlaylistVideo `json:"video_info"`
	DownloadInfo *DownloadInfo `json:"download_info,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// PlaylistDownloadResult is the playlist download batch response
type PlaylistDownloadResult struct {
	PlaylistInfo   *PlaylistInfo           `json:"playlist_info"`
	DownloadLinks  []PlaylistDownloadEntry `json:"download_links"`
	TotalProcessed int                     `json:"total_processed"`
}

// StatusResponse is the accessibility probe response; it never raises
type StatusResponse struct {
	Accessible bool     `json:"accessible"`
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	Title      *string  `json:"title,omitempty"`
	Uploader   *string  `json:"uploader,omitempty"`
	Duration   *float64 `json:"duration,omitempty"`
}

// Video accessibility statuses
const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
	StatusRestricted  = "restricted"
	StatusPrivate     = "private"
	StatusError       = "error"
)

// FallbackResult is the verdict of one fallback strategy attempt
type FallbackResult struct {
	Method      string  `json:"method"`
	Available   bool    `json:"available"`
	Title       *string `json:"title,omitempty"`
	Uploader    *string `json:"uploader,omitempty"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
	DownloadURL *string `json:"download_url,omitempty"`
	Ext         *string `json:"ext,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// ExtractionRecord is one persisted extraction outcome
type ExtractionRecord struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	VideoID    string     `json:"video_id" gorm:"index"`
	URL        string     `json:"url"`
	Endpoint   string     `json:"endpoint" gorm:"index"`
	Profile    ClientName `json:"profile"`
	Outcome    string     `json:"outcome" gorm:"index"`
	Cached     bool       `json:"cached"`
	Quality    Quality    `json:"quality"`
	Format     Format     `json:"format"`
	DurationMs int64      `json:"duration_ms"`
	Error      string     `json:"error"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// Stats summarizes extraction history
type Stats struct {
	TotalExtractions int64            `json:"total_extractions"`
	CacheHits        int64            `json:"cache_hits"`
	Successes        int64            `json:"successes"`
	Failures         int64            `json:"failures"`
	SuccessRate      float64          `json:"success_rate"`
	ByOutcome        map[string]int64 `json:"by_outcome"`
}

// Config represents the application configuration
type Config struct {
	Server struct {
		Host         string `mapstructure:"host" yaml:"host"`
		Port         int    `mapstructure:"port" yaml:"port"`
		ReadTimeout  int    `mapstructure:"read_timeout" yaml:"read_timeout"`
		WriteTimeout int    `mapstructure:"write_timeout" yaml:"write_timeout"`
	} `mapstructure:"server" yaml:"server"`

	Extraction struct {
		MaxAttempts    int     `mapstructure:"max_attempts" yaml:"max_attempts"`
		BackoffSeconds float64 `mapstructure:"backoff_seconds" yaml:"backoff_seconds"`
		TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		CacheTTL       int     `mapstructure:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
		CacheSweep     int     `mapstructure:"cache_sweep_minutes" yaml:"cache_sweep_minutes"`
		AutoInstall    bool    `mapstructure:"auto_install" yaml:"auto_install"`
	} `mapstructure:"extraction" yaml:"extraction"`

	RateLimit struct {
		Enabled          bool    `mapstructure:"enabled" yaml:"enabled"`
		InfoInterval     float64 `mapstructure:"info_interval_seconds" yaml:"info_interval_seconds"`
		DownloadInterval float64 `mapstructure:"download_interval_seconds" yaml:"download_interval_seconds"`
		MaxEntries       int     `mapstructure:"max_entries" yaml:"max_entries"`
	} `mapstructure:"rate_limit" yaml:"rate_limit"`

	Workers struct {
		Count      int `mapstructure:"count" yaml:"count"`
		QueueDepth int `mapstructure:"queue_depth" yaml:"queue_depth"`
	} `mapstructure:"workers" yaml:"workers"`

	Playlist struct {
		InfoLimit     int `mapstructure:"info_limit" yaml:"info_limit"`
		DownloadLimit int `mapstructure:"download_limit" yaml:"download_limit"`
		HardCeiling   int `mapstructure:"hard_ceiling" yaml:"hard_ceiling"`
	} `mapstructure:"playlist" yaml:"playlist"`

	Database struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"database" yaml:"database"`

	Proxy struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		URL     string `mapstructure:"url" yaml:"url"`
	} `mapstructure:"proxy" yaml:"proxy"`

	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
		Output string `mapstructure:"output" yaml:"output"`
	} `mapstructure:"log" yaml:"log"`
}
