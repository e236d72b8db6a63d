package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"

	"yt-extract-api/pkg/models"
)

// upstream failure markers, matched against the tool's stderr output
const (
	markerSignIn      = "Sign in to confirm"
	markerBotCheck    = "not a bot"
	markerPrivate     = "Private video"
	markerUnavailable = "Video unavailable"
)

// YtdlpEngine implements Engine on top of the yt-dlp tool
type YtdlpEngine struct {
	proxyURL string
	logger   zerolog.Logger
}

// Config configures the yt-dlp engine
type Config struct {
	// AutoInstall downloads a pinned yt-dlp binary when missing
	AutoInstall bool
	ProxyURL    string
}

// NewYtdlp creates the production engine adapter
func NewYtdlp(ctx context.Context, cfg Config) (*YtdlpEngine, error) {
	if cfg.AutoInstall {
		if _, err := ytdlp.Install(ctx, nil); err != nil {
			return nil, fmt.Errorf("error installing yt-dlp: %w", err)
		}
	}

	return &YtdlpEngine{
		proxyURL: cfg.ProxyURL,
		logger:   zerolog.New(os.Stdout).With().Timestamp().Logger(),
	}, nil
}

// Extract resolves full metadata and a download URL for one video
func (e *YtdlpEngine) Extract(ctx context.Context, req Request) (*models.ExtractionResult, error) {
	info, err := e.run(ctx, req)
	if err != nil {
		return nil, err
	}
	return e.toResult(info, req), nil
}

// Probe performs a flat accessibility check; no stream resolution
func (e *YtdlpEngine) Probe(ctx context.Context, req Request) (*models.ExtractionResult, error) {
	req.Flat = true
	req.FormatSelector = ""
	info, err := e.run(ctx, req)
	if err != nil {
		return nil, err
	}
	return e.toResult(info, req), nil
}

// FlatList resolves a flattened playlist listing capped at limit
func (e *YtdlpEngine) FlatList(ctx context.Context, url string, limit int) (*models.PlaylistInfo, error) {
	info, err := e.run(ctx, Request{URL: url, Flat: true, PlaylistEnd: limit})
	if err != nil {
		return nil, err
	}

	playlist := &models.PlaylistInfo{
		ID:          info.ID,
		Title:       info.Title,
		Description: info.Description,
		Uploader:    info.Uploader,
	}

	for _, entry := range info.Entries {
		if entry.ID == "" {
			continue
		}
		url := entry.URL
		if url == "" {
			url = fmt.Sprintf("https://www.youtube.com/watch?v=%s", entry.ID)
		}
		playlist.Videos = append(playlist.Videos, models.PlaylistVideo{
			ID:       entry.ID,
			Title:    entry.Title,
			URL:      url,
			Duration: entry.Duration,
			Uploader: entry.Uploader,
		})
	}
	playlist.VideoCount = len(playlist.Videos)

	return playlist, nil
}

// run executes the tool and parses its JSON output
func (e *YtdlpEngine) run(ctx context.Context, req Request) (*ytdlpInfo, error) {
	dl := ytdlp.New().
		Quiet().
		NoWarnings().
		SkipDownload().
		PrintJSON()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	dl = dl.SocketTimeout(timeout.Seconds())

	if e.proxyURL != "" {
		dl = dl.Proxy(e.proxyURL)
	}
	if req.Flat {
		dl = dl.FlatPlaylist()
	}
	if req.PlaylistEnd > 0 {
		dl = dl.PlaylistEnd(req.PlaylistEnd)
	}
	if req.FormatSelector != "" {
		dl = dl.Format(req.FormatSelector)
	}
	if req.ExtractAudio {
		dl = dl.ExtractAudio().AudioFormat("mp3").AudioQuality("192")
	}
	if req.UserAgent != "" {
		dl = dl.UserAgent(req.UserAgent)
	}
	for key, value := range req.Headers {
		dl = dl.AddHeaders(key + ":" + value)
	}
	if req.PlayerClient != "" {
		dl = dl.ExtractorArgs(fmt.Sprintf("youtube:player_client=%s;skip=dash,hls", req.PlayerClient))
	}

	e.logger.Debug().
		Str("url", req.URL).
		Str("player_client", req.PlayerClient).
		Bool("flat", req.Flat).
		Msg("Running extraction")

	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		return nil, ClassifyError(err)
	}

	info, err := parseOutput(result.Stdout)
	if err != nil {
		return nil, models.NewExtractionFailed("Error parsing extraction output: %v", err)
	}
	if info == nil || info.ID == "" {
		return nil, models.NewExtractionFailed("Could not extract video information. Video may be private, deleted, or require sign-in.")
	}

	return info, nil
}

// ClassifyError maps a raw engine failure onto the error taxonomy
func ClassifyError(err error) *models.ExtractionError {
	msg := err.Error()
	switch {
	case strings.Contains(msg, markerSignIn) || strings.Contains(msg, markerBotCheck):
		return models.NewSignInRequired()
	case strings.Contains(msg, markerPrivate):
		return models.NewPrivateVideo()
	case strings.Contains(msg, markerUnavailable):
		return models.NewUnavailable()
	default:
		return models.NewExtractionFailed("Error extracting video info: %s", firstLine(msg))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// ytdlpInfo mirrors the subset of the tool's JSON output the service uses
type ytdlpInfo struct {
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
	URL         string       `json:"url"`
	Ext         string       `json:"ext"`
	FormatID    string       `json:"format_id"`
	Filesize    *int64       `json:"filesize"`
	Formats     []ytdlpFmt   `json:"formats"`
	Entries     []ytdlpEntry `json:"entries"`
}

type ytdlpFmt struct {
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

type ytdlpEntry struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Duration *float64 `json:"duration"`
	Uploader *string  `json:"uploader"`
}

// parseOutput decodes the first JSON document on stdout
func parseOutput(stdout string) (*ytdlpInfo, error) {
	stdout = strings.TrimSpace(stdout)
	if stdout == "" {
		return nil, fmt.Errorf("empty output")
	}

	var info ytdlpInfo
	decoder := json.NewDecoder(strings.NewReader(stdout))
	if err := decoder.Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding info JSON: %w", err)
	}
	return &info, nil
}

// toResult converts tool output into the service's result model
func (e *YtdlpEngine) toResult(info *ytdlpInfo, req Request) *models.ExtractionResult {
	result := &models.ExtractionResult{
		ID:          info.ID,
		Title:       info.Title,
		Description: info.Description,
		Duration:    info.Duration,
		ViewCount:   info.ViewCount,
		LikeCount:   info.LikeCount,
		Uploader:    info.Uploader,
		UploadDate:  info.UploadDate,
		Thumbnail:   info.Thumbnail,
		Tags:        info.Tags,
		Categories:  info.Categories,
		AgeLimit:    info.AgeLimit,
		WebpageURL:  info.WebpageURL,
		DownloadURL: info.URL,
		Ext:         info.Ext,
		FormatID:    info.FormatID,
		Filesize:    info.Filesize,
		ExtractedAt: time.Now(),
	}

	if result.WebpageURL == "" {
		result.WebpageURL = req.URL
	}

	if req.IncludeFormats {
		result.Formats = filterFormats(info.Formats)
	}

	return result
}

// filterFormats keeps entries carrying a video or audio stream
func filterFormats(formats []ytdlpFmt) []models.FormatInfo {
	var out []models.FormatInfo
	for _, f := range formats {
		hasVideo := f.VCodec != nil && *f.VCodec != "none"
		hasAudio := f.ACodec != nil && *f.ACodec != "none"
		if !hasVideo && !hasAudio {
			continue
		}
		out = append(out, models.FormatInfo{
			FormatID: f.FormatID,
			Ext:      f.Ext,
			Quality:  f.Quality,
			Filesize: f.Filesize,
			VCodec:   f.VCodec,
			ACodec:   f.ACodec,
			FPS:      f.FPS,
			Width:    f.Width,
			Height:   f.Height,
			URL:      f.URL,
		})
	}
	return out
}
