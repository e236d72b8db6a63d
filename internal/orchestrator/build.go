package orchestrator

import (
	"context"
	"fmt"
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

// FromConfig assembles a production orchestrator from configuration.
// The returned cleanup stops the worker pool and releases the HTTP
// client; callers run it on shutdown.
func FromConfig(ctx context.Context, cfg *models.Config, history models.Storage, metrics *monitor.Metrics, logger zerolog.Logger) (*Orchestrator, func(), error) {
	proxyURL := ""
	if cfg.Proxy.Enabled {
		proxyURL = cfg.Proxy.URL
	}

	eng, err := engine.NewYtdlp(ctx, engine.Config{
		AutoInstall: cfg.Extraction.AutoInstall,
		ProxyURL:    proxyURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error creating extraction engine: %w", err)
	}

	resultCache := cache.New(
		time.Duration(cfg.Extraction.CacheTTL)*time.Minute,
		time.Duration(cfg.Extraction.CacheSweep)*time.Minute,
	)

	var infoGate, downloadGate *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		infoGate = ratelimit.NewLimiter(seconds(cfg.RateLimit.InfoInterval), cfg.RateLimit.MaxEntries)
		downloadGate = ratelimit.NewLimiter(seconds(cfg.RateLimit.DownloadInterval), cfg.RateLimit.MaxEntries)
	}

	pool := worker.New(cfg.Workers.Count, cfg.Workers.QueueDepth)
	pool.Start()

	engineTimeout := time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second
	httpClient := httpclient.New(httpclient.Config{
		Timeout:  engineTimeout,
		ProxyURL: proxyURL,
	}, logger)

	orch := New(Options{
		Engine:       eng,
		Cache:        resultCache,
		Profiles:     profile.NewSelector(),
		InfoGate:     infoGate,
		DownloadGate: downloadGate,
		Pool:         pool,
		Storage:      history,
		Metrics:      metrics,
		HTTP:         httpClient,
		Policy: RetryPolicy{
			MaxAttempts: cfg.Extraction.MaxAttempts,
			Backoff:     seconds(cfg.Extraction.BackoffSeconds),
		},
		EngineTimeout:         engineTimeout,
		PlaylistInfoLimit:     cfg.Playlist.InfoLimit,
		PlaylistDownloadLimit: cfg.Playlist.DownloadLimit,
		PlaylistHardCeiling:   cfg.Playlist.HardCeiling,
		Logger:                logger,
	})

	cleanup := func() {
		pool.Stop()
		httpClient.Close()
	}
	return orch, cleanup, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
