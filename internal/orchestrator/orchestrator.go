// Package orchestrator coordinates the extraction pipeline: cache lookup,
// per-caller rate gating, profile-rotated engine attempts, failure
// classification and result caching.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"yt-extract-api/internal/cache"
	"yt-extract-api/internal/engine"
	"yt-extract-api/internal/httpclient"
	"yt-extract-api/internal/monitor"
	"yt-extract-api/internal/profile"
	"yt-extract-api/internal/ratelimit"
	"yt-extract-api/internal/worker"
	"yt-extract-api/pkg/models"
)

// Endpoint labels used for metrics and the persisted history
const (
	endpointInfo     = "info"
	endpointDownload = "download"
	endpointStatus   = "status"
	endpointPlaylist = "playlist"
)

const outcomeSuccess = "success"

// DefaultEngineTimeout bounds one upstream attempt
const DefaultEngineTimeout = 30 * time.Second

// Options wires the orchestrator's collaborators. Cache, gates, pool,
// storage, metrics and HTTP client are optional; a nil collaborator
// disables that concern.
type Options struct {
	Engine       engine.Engine
	Cache        *cache.Store
	Profiles     *profile.Selector
	InfoGate     *ratelimit.Limiter
	DownloadGate *ratelimit.Limiter
	Pool         *worker.Pool
	Storage      models.Storage
	Metrics      *monitor.Metrics
	HTTP         *httpclient.Client

	Policy        RetryPolicy
	EngineTimeout time.Duration

	PlaylistInfoLimit     int
	PlaylistDownloadLimit int
	PlaylistHardCeiling   int

	Logger zerolog.Logger
}

// Orchestrator is the service core shared by the HTTP server and the CLI
type Orchestrator struct {
	engine        engine.Engine
	cache         *cache.Store
	profiles      *profile.Selector
	infoGate      *ratelimit.Limiter
	downloadGate  *ratelimit.Limiter
	pool          *worker.Pool
	storage       models.Storage
	metrics       *monitor.Metrics
	http          *httpclient.Client
	policy        RetryPolicy
	engineTimeout time.Duration
	infoLimit     int
	downloadLimit int
	hardCeiling   int
	logger        zerolog.Logger
}

// New creates an orchestrator from the given options
func New(opts Options) *Orchestrator {
	if opts.Policy.MaxAttempts <= 0 {
		opts.Policy = DefaultRetryPolicy()
	}
	if opts.EngineTimeout <= 0 {
		opts.EngineTimeout = DefaultEngineTimeout
	}
	if opts.Profiles == nil {
		opts.Profiles = profile.NewSelector()
	}
	if opts.PlaylistInfoLimit <= 0 {
		opts.PlaylistInfoLimit = 50
	}
	if opts.PlaylistDownloadLimit <= 0 {
		opts.PlaylistDownloadLimit = 10
	}
	if opts.PlaylistHardCeiling <= 0 {
		opts.PlaylistHardCeiling = 100
	}
	return &Orchestrator{
		engine:        opts.Engine,
		cache:         opts.Cache,
		profiles:      opts.Profiles,
		infoGate:      opts.InfoGate,
		downloadGate:  opts.DownloadGate,
		pool:          opts.Pool,
		storage:       opts.Storage,
		metrics:       opts.Metrics,
		http:          opts.HTTP,
		policy:        opts.Policy,
		engineTimeout: opts.EngineTimeout,
		infoLimit:     opts.PlaylistInfoLimit,
		downloadLimit: opts.PlaylistDownloadLimit,
		hardCeiling:   opts.PlaylistHardCeiling,
		logger:        opts.Logger,
	}
}

// Info resolves metadata for one video. The second return reports whether
// the result came from cache.
func (o *Orchestrator) Info(ctx context.Context, callerID string, req models.ExtractionRequest) (*models.ExtractionResult, bool, error) {
	return o.resolve(ctx, callerID, req, endpointInfo, o.infoGate)
}

// Download resolves a direct download URL for one video at the requested
// quality and format.
func (o *Orchestrator) Download(ctx context.Context, callerID string, req models.ExtractionRequest) (*models.DownloadInfo, error) {
	result, cached, err := o.resolve(ctx, callerID, req, endpointDownload, o.downloadGate)
	if err != nil {
		return nil, err
	}
	return buildDownloadInfo(req, result, cached), nil
}

// Status probes accessibility with a single flat attempt. It never fails;
// every engine error maps onto a status verdict.
func (o *Orchestrator) Status(ctx context.Context, identity models.VideoIdentity) *models.StatusResponse {
	prof, _ := o.profiles.Pinned(models.ClientAndroid)
	ereq := engine.Request{
		URL:          identity.URL,
		PlayerClient: prof.PlayerClient,
		UserAgent:    prof.UserAgent,
		Headers:      prof.Headers,
		Timeout:      o.engineTimeout,
	}

	var result *models.ExtractionResult
	var err error
	if perr := o.submit(ctx, func() { result, err = o.engine.Probe(ctx, ereq) }); perr != nil {
		return &models.StatusResponse{
			Accessible: false,
			Status:     models.StatusError,
			Message:    "Status check could not run, the service may be busy.",
		}
	}

	if err != nil {
		return statusFromError(err)
	}

	resp := &models.StatusResponse{
		Accessible: true,
		Status:     models.StatusAvailable,
		Message:    "Video is accessible",
		Duration:   result.Duration,
		Uploader:   result.Uploader,
	}
	if result.Title != "" {
		title := result.Title
		resp.Title = &title
	}
	return resp
}

func statusFromError(err error) *models.StatusResponse {
	ee, ok := models.AsExtractionError(err)
	if !ok {
		return &models.StatusResponse{
			Accessible: false,
			Status:     models.StatusError,
			Message:    "Could not determine video status",
		}
	}

	switch ee.Kind {
	case models.ErrSignInRequired:
		return &models.StatusResponse{
			Accessible: false,
			Status:     models.StatusRestricted,
			Message:    "Video requires sign-in verification",
		}
	case models.ErrPrivateVideo:
		return &models.StatusResponse{
			Accessible: false,
			Status:     models.StatusPrivate,
			Message:    "Video is private",
		}
	case models.ErrUnavailable:
		return &models.StatusResponse{
			Accessible: false,
			Status:     models.StatusUnavailable,
			Message:    "Video is unavailable or has been deleted",
		}
	default:
		return &models.StatusResponse{
			Accessible: false,
			Status:     models.StatusError,
			Message:    ee.Message,
		}
	}
}

// resolve is the shared info/download pipeline: cache, gate, attempt loop
func (o *Orchestrator) resolve(ctx context.Context, callerID string, req models.ExtractionRequest, ep string, gate *ratelimit.Limiter) (*models.ExtractionResult, bool, error) {
	start := time.Now()
	key := o.cacheKey(ep, req)

	if o.cache != nil && !req.ForceRefresh {
		if result, ok := o.cache.Lookup(key); ok {
			if o.metrics != nil {
				o.metrics.CacheHits.Inc()
			}
			o.finish(ep, req, result.Profile, outcomeSuccess, true, start, nil)
			return result, true, nil
		}
	}
	if o.metrics != nil {
		o.metrics.CacheMisses.Inc()
	}

	if gate != nil && callerID != "" {
		if ok, retryAfter := gate.Admit(callerID); !ok {
			if o.metrics != nil {
				o.metrics.RateLimited.WithLabelValues(ep).Inc()
			}
			err := models.NewRateLimited(retryAfter)
			o.finish(ep, req, "", string(err.Kind), false, start, err)
			return nil, false, err
		}
	}

	result, err := o.attempt(ctx, req, ep)
	if err != nil {
		ee, _ := models.AsExtractionError(err)
		outcome := string(models.ErrInternal)
		if ee != nil {
			outcome = string(ee.Kind)
		}
		o.finish(ep, req, "", outcome, false, start, err)
		return nil, false, err
	}

	if o.cache != nil {
		o.cache.Store(key, result)
	}
	o.finish(ep, req, result.Profile, outcomeSuccess, false, start, nil)
	return result, false, nil
}

// attempt runs the profile-rotated retry loop
func (o *Orchestrator) attempt(ctx context.Context, req models.ExtractionRequest, ep string) (*models.ExtractionResult, error) {
	var lastErr *models.ExtractionError

	for i := 0; i < o.policy.MaxAttempts; i++ {
		prof := o.profiles.ForAttempt(i)
		if o.metrics != nil {
			o.metrics.ExtractionAttempts.WithLabelValues(string(prof.Name)).Inc()
		}

		result, err := o.extractWith(ctx, req, ep, prof)
		if err == nil {
			result.Profile = prof.Name
			return result, nil
		}

		ee, ok := models.AsExtractionError(err)
		if !ok {
			ee = models.NewExtractionFailed("Error extracting video info: %v", err)
		}
		lastErr = ee

		// Shed and cancellation cut the loop short; rotation cannot help
		if ee.Kind == models.ErrOverloaded || ctx.Err() != nil {
			return nil, ee
		}

		switch o.policy.ActionFor(ee, i) {
		case ActionFail:
			return nil, ee
		case ActionBackoffAdvance:
			o.logger.Warn().
				Str("video_id", req.Identity.ID).
				Str("profile", string(prof.Name)).
				Str("kind", string(ee.Kind)).
				Int("attempt", i+1).
				Msg("Extraction attempt failed, backing off before next profile")
			select {
			case <-time.After(o.policy.Backoff):
			case <-ctx.Done():
				return nil, ee
			}
		case ActionAdvance:
			o.logger.Warn().
				Str("video_id", req.Identity.ID).
				Str("profile", string(prof.Name)).
				Str("kind", string(ee.Kind)).
				Int("attempt", i+1).
				Msg("Extraction attempt failed, rotating client profile")
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, models.NewExtractionFailed("Failed to extract video info after retries.")
}

// extractWith runs one engine attempt under the given profile
func (o *Orchestrator) extractWith(ctx context.Context, req models.ExtractionRequest, ep string, prof profile.Profile) (*models.ExtractionResult, error) {
	ereq := engine.Request{
		URL:            req.Identity.URL,
		PlayerClient:   prof.PlayerClient,
		UserAgent:      prof.UserAgent,
		Headers:        prof.Headers,
		IncludeFormats: req.IncludeFormats,
		Timeout:        o.engineTimeout,
	}
	if ep == endpointDownload {
		ereq.FormatSelector = models.QualitySelectors[req.Quality]
		if req.Format == models.FormatMP3 {
			ereq.FormatSelector = models.QualitySelectors[models.QualityAudioOnly]
			ereq.ExtractAudio = true
		}
	}

	var result *models.ExtractionResult
	var err error
	if perr := o.submit(ctx, func() { result, err = o.engine.Extract(ctx, ereq) }); perr != nil {
		return nil, perr
	}
	if err != nil {
		return nil, err
	}

	if ep == endpointDownload {
		if result.DownloadURL == "" {
			return nil, models.NewNoDownloadURL()
		}
		// Audio re-encode changes the container the caller receives
		if req.Format == models.FormatMP3 {
			result.Ext = "mp3"
		}
	}
	return result, nil
}

// submit runs fn on the worker pool, or inline when no pool is wired
func (o *Orchestrator) submit(ctx context.Context, fn func()) error {
	if o.pool == nil {
		fn()
		return nil
	}

	err := o.pool.Do(ctx, fn)
	if o.metrics != nil {
		o.metrics.QueueDepth.Set(float64(o.pool.QueueLen()))
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, worker.ErrQueueFull) {
		if o.metrics != nil {
			o.metrics.ShedRequests.Inc()
		}
		return models.NewOverloaded()
	}
	if errors.Is(err, worker.ErrStopped) {
		return models.NewOverloaded()
	}
	return models.NewExtractionFailed("Extraction aborted: %v", err)
}

// finish records the terminal outcome of one request in metrics and history
func (o *Orchestrator) finish(ep string, req models.ExtractionRequest, prof models.ClientName, outcome string, cached bool, start time.Time, err error) {
	elapsed := time.Since(start)

	if o.metrics != nil {
		o.metrics.Extractions.WithLabelValues(ep, outcome).Inc()
		o.metrics.ExtractionDuration.WithLabelValues(ep).Observe(elapsed.Seconds())
	}

	if o.storage == nil {
		return
	}
	rec := &models.ExtractionRecord{
		VideoID:    req.Identity.ID,
		URL:        req.Identity.URL,
		Endpoint:   ep,
		Profile:    prof,
		Outcome:    outcome,
		Cached:     cached,
		Quality:    req.Quality,
		Format:     req.Format,
		DurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if serr := o.storage.SaveRecord(rec); serr != nil {
		o.logger.Error().Err(serr).Str("video_id", req.Identity.ID).Msg("Error saving extraction record")
	}
}

// cacheKey keys the metadata path by identity alone and the download path
// by identity, quality and format.
func (o *Orchestrator) cacheKey(ep string, req models.ExtractionRequest) string {
	if ep == endpointDownload {
		return cache.DownloadKey(req.Identity, req.Quality, req.Format)
	}
	return cache.MetadataKey(req.Identity)
}

func buildDownloadInfo(req models.ExtractionRequest, r *models.ExtractionResult, cached bool) *models.DownloadInfo {
	return &models.DownloadInfo{
		Title:           r.Title,
		ID:              r.ID,
		Duration:        r.Duration,
		Filesize:        r.Filesize,
		Ext:             r.Ext,
		FormatID:        r.FormatID,
		Quality:         req.Quality,
		RequestedFormat: req.Format,
		DownloadURL:     r.DownloadURL,
		Thumbnail:       r.Thumbnail,
		Cached:          cached,
	}
}
