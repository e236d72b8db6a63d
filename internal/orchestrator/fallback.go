package orchestrator

import (
	"context"
	"strconv"

	"yt-extract-api/internal/engine"
	"yt-extract-api/internal/httpclient"
	"yt-extract-api/internal/youtube"
	"yt-extract-api/pkg/models"
)

// Fallback strategy names
const (
	FallbackEmbed  = "embed"
	FallbackMobile = "mobile"
	FallbackBasic  = "basic"
)

// ValidFallbackMethod reports whether method names a known strategy
func ValidFallbackMethod(method string) bool {
	switch method {
	case FallbackEmbed, FallbackMobile, FallbackBasic:
		return true
	}
	return false
}

// Fallback runs one alternative extraction strategy for videos that fail
// the normal pipeline. Strategies make a single attempt, never rotate
// profiles, and never fail: any error lands in the result verdict.
func (o *Orchestrator) Fallback(ctx context.Context, method string, identity models.VideoIdentity) *models.FallbackResult {
	var result *models.FallbackResult

	switch method {
	case FallbackEmbed:
		result = o.fallbackEmbed(ctx, identity)
	case FallbackMobile:
		result = o.fallbackMobile(ctx, identity)
	case FallbackBasic:
		result = o.fallbackBasic(ctx, identity)
	default:
		result = &models.FallbackResult{
			Method: method,
			Error:  "Unknown fallback method",
		}
	}

	if o.metrics != nil {
		o.metrics.Fallbacks.WithLabelValues(method, strconv.FormatBool(result.Available)).Inc()
	}
	return result
}

// oembedPayload is the subset of the oEmbed response the probe uses
type oembedPayload struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// fallbackEmbed probes the public oEmbed endpoint. It runs outside the
// extraction engine entirely, so it can answer when the engine itself is
// being challenged. Metadata only, no download URL.
func (o *Orchestrator) fallbackEmbed(ctx context.Context, identity models.VideoIdentity) *models.FallbackResult {
	result := &models.FallbackResult{Method: FallbackEmbed}

	if o.http == nil {
		result.Error = "Embed probe is not configured"
		return result
	}

	probeURL := httpclient.BuildURL("https://www.youtube.com/oembed", map[string]string{
		"url":    youtube.CanonicalVideoURL(identity.ID),
		"format": "json",
	})

	var payload oembedPayload
	if err := o.http.GetJSON(ctx, probeURL, nil, &payload); err != nil {
		o.logger.Debug().Err(err).Str("video_id", identity.ID).Msg("Embed fallback probe failed")
		result.Error = "Video not accessible via embed probe"
		return result
	}

	result.Available = true
	if payload.Title != "" {
		result.Title = &payload.Title
	}
	if payload.AuthorName != "" {
		result.Uploader = &payload.AuthorName
	}
	if payload.ThumbnailURL != "" {
		result.Thumbnail = &payload.ThumbnailURL
	}
	return result
}

// fallbackMobile extracts with the iOS client pinned, download URL included
func (o *Orchestrator) fallbackMobile(ctx context.Context, identity models.VideoIdentity) *models.FallbackResult {
	result := &models.FallbackResult{Method: FallbackMobile}

	prof, ok := o.profiles.Pinned(models.ClientIOS)
	if !ok {
		result.Error = "Mobile client profile is not available"
		return result
	}

	ereq := engine.Request{
		URL:            identity.URL,
		PlayerClient:   prof.PlayerClient,
		UserAgent:      prof.UserAgent,
		Headers:        prof.Headers,
		FormatSelector: models.QualitySelectors[models.QualityHighest],
		Timeout:        o.engineTimeout,
	}

	ex, err := o.runFallbackExtract(ctx, ereq)
	if err != nil {
		result.Error = fallbackError(err)
		return result
	}

	result.Available = true
	fillFallbackMetadata(result, ex)
	if ex.DownloadURL != "" {
		url := ex.DownloadURL
		result.DownloadURL = &url
		if ex.Ext != "" {
			ext := ex.Ext
			result.Ext = &ext
		}
	}
	return result
}

// fallbackBasic extracts with the android client and a minimal request;
// it reports accessibility and title-level metadata only.
func (o *Orchestrator) fallbackBasic(ctx context.Context, identity models.VideoIdentity) *models.FallbackResult {
	result := &models.FallbackResult{Method: FallbackBasic}

	prof, ok := o.profiles.Pinned(models.ClientAndroid)
	if !ok {
		result.Error = "Basic client profile is not available"
		return result
	}

	ereq := engine.Request{
		URL:          identity.URL,
		PlayerClient: prof.PlayerClient,
		Timeout:      o.engineTimeout,
	}

	ex, err := o.runFallbackExtract(ctx, ereq)
	if err != nil {
		result.Error = fallbackError(err)
		return result
	}

	result.Available = true
	fillFallbackMetadata(result, ex)
	return result
}

func (o *Orchestrator) runFallbackExtract(ctx context.Context, ereq engine.Request) (*models.ExtractionResult, error) {
	var ex *models.ExtractionResult
	var err error
	if perr := o.submit(ctx, func() { ex, err = o.engine.Extract(ctx, ereq) }); perr != nil {
		return nil, perr
	}
	return ex, err
}

func fillFallbackMetadata(result *models.FallbackResult, ex *models.ExtractionResult) {
	if ex.Title != "" {
		title := ex.Title
		result.Title = &title
	}
	result.Uploader = ex.Uploader
	result.Thumbnail = ex.Thumbnail
}

func fallbackError(err error) string {
	if ee, ok := models.AsExtractionError(err); ok {
		return ee.Message
	}
	return err.Error()
}
