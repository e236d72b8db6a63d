package orchestrator

import (
	"context"
	"time"

	"yt-extract-api/internal/youtube"
	"yt-extract-api/pkg/models"
)

// PlaylistInfo resolves a flattened playlist listing capped at limit.
// A non-positive limit selects the configured default.
func (o *Orchestrator) PlaylistInfo(ctx context.Context, url string, limit int) (*models.PlaylistInfo, error) {
	limit = o.clampLimit(limit, o.infoLimit)

	var info *models.PlaylistInfo
	var err error
	if perr := o.submit(ctx, func() { info, err = o.engine.FlatList(ctx, url, limit) }); perr != nil {
		return nil, perr
	}
	if err != nil {
		if ee, ok := models.AsExtractionError(err); ok {
			return nil, ee
		}
		return nil, models.NewExtractionFailed("Error extracting playlist info: %v", err)
	}

	if len(info.Videos) == 0 {
		return nil, models.NewInvalidInput("No videos found in playlist")
	}
	return info, nil
}

// PlaylistDownload resolves download URLs for the first limit playlist
// members. The rate gate is consulted once for the whole batch; member
// extractions bypass it so one batch counts as one call against the
// caller's budget. A failing member never aborts the batch.
func (o *Orchestrator) PlaylistDownload(ctx context.Context, callerID, url string, quality models.Quality, format models.Format, limit int) (*models.PlaylistDownloadResult, error) {
	limit = o.clampLimit(limit, o.downloadLimit)

	if o.downloadGate != nil && callerID != "" {
		if ok, retryAfter := o.downloadGate.Admit(callerID); !ok {
			if o.metrics != nil {
				o.metrics.RateLimited.WithLabelValues(endpointPlaylist).Inc()
			}
			return nil, models.NewRateLimited(retryAfter)
		}
	}

	info, err := o.PlaylistInfo(ctx, url, limit)
	if err != nil {
		return nil, err
	}

	result := &models.PlaylistDownloadResult{
		PlaylistInfo:  info,
		DownloadLinks: make([]models.PlaylistDownloadEntry, 0, len(info.Videos)),
	}

	start := time.Now()
	for _, video := range info.Videos {
		entry := models.PlaylistDownloadEntry{VideoInfo: video}

		req := models.ExtractionRequest{
			Identity: models.VideoIdentity{
				ID:  video.ID,
				URL: youtube.CanonicalVideoURL(video.ID),
			},
			Quality: quality,
			Format:  format,
		}

		dl, cached, derr := o.resolve(ctx, "", req, endpointDownload, nil)
		if derr != nil {
			entry.Error = memberError(derr)
		} else {
			entry.DownloadInfo = buildDownloadInfo(req, dl, cached)
		}
		result.DownloadLinks = append(result.DownloadLinks, entry)

		if ctx.Err() != nil {
			break
		}
	}
	result.TotalProcessed = len(result.DownloadLinks)

	o.logger.Info().
		Str("playlist", info.ID).
		Int("processed", result.TotalProcessed).
		Dur("elapsed", time.Since(start)).
		Msg("Playlist download batch finished")

	return result, nil
}

// clampLimit applies the default and the hard ceiling
func (o *Orchestrator) clampLimit(limit, def int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > o.hardCeiling {
		limit = o.hardCeiling
	}
	return limit
}

func memberError(err error) string {
	if ee, ok := models.AsExtractionError(err); ok {
		return ee.Message
	}
	return err.Error()
}
