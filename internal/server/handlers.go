package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"yt-extract-api/internal/export"
	"yt-extract-api/internal/orchestrator"
	"yt-extract-api/internal/youtube"
	"yt-extract-api/pkg/models"
)

// respondError writes the classified error envelope
func respondError(c *gin.Context, err error) {
	ee, ok := models.AsExtractionError(err)
	if !ok {
		ee = models.NewInternal()
	}

	status := ee.HTTPStatus()
	body := gin.H{
		"error":       ee.Message,
		"status_code": status,
	}
	if ee.RetryAfter > 0 {
		body["retry_after"] = ee.RetryAfter
		c.Header("Retry-After", strconv.Itoa(int(ee.RetryAfter)+1))
	}
	if ee.Suggestion != "" {
		body["suggestion"] = ee.Suggestion
	}

	c.JSON(status, body)
}

func boolQuery(c *gin.Context, name string) bool {
	v := c.Query(name)
	return v == "true" || v == "1"
}

// forceExtract reads the cache-bypass flag; force_refresh is accepted as
// an alias.
func forceExtract(c *gin.Context) bool {
	return boolQuery(c, "force_extract") || boolQuery(c, "force_refresh")
}

// Index handler
func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "yt-extract-api",
		"version": Version,
		"endpoints": gin.H{
			"video_info":        "/video/info?url=<video_url>",
			"video_status":      "/video/status?url=<video_url>",
			"video_download":    "/video/download?url=<video_url>&quality=<quality>&format=<format>",
			"video_fallback":    "/video/fallback?url=<video_url>&method=<embed|mobile|basic>",
			"playlist_info":     "/playlist/info?url=<playlist_url>&limit=<n>",
			"playlist_download": "/playlist/download?url=<playlist_url>&quality=<quality>&limit=<n>",
			"stats":             "/stats",
			"stats_export":      "/stats/export?format=<csv|xlsx|json>",
			"health":            "/health",
			"metrics":           "/metrics",
		},
	})
}

// Health check handler
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Service is running",
		"timestamp": time.Now().Unix(),
		"version":   Version,
	})
}

// parseVideoQuery validates the url query parameter
func parseVideoQuery(c *gin.Context) (models.VideoIdentity, bool) {
	rawURL := c.Query("url")
	if rawURL == "" {
		respondError(c, models.NewInvalidInput("url query parameter is required"))
		return models.VideoIdentity{}, false
	}

	identity, err := youtube.ParseVideoURL(rawURL)
	if err != nil {
		respondError(c, err)
		return models.VideoIdentity{}, false
	}
	return identity, true
}

type infoResponse struct {
	*models.ExtractionResult
	Cached bool `json:"cached"`
}

// Video info handler
func (s *Server) videoInfo(c *gin.Context) {
	identity, ok := parseVideoQuery(c)
	if !ok {
		return
	}

	req := models.ExtractionRequest{
		Identity:       identity,
		ForceRefresh:   forceExtract(c),
		IncludeFormats: boolQuery(c, "include_formats"),
	}

	result, cached, err := s.orch.Info(c.Request.Context(), callerID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, infoResponse{ExtractionResult: result, Cached: cached})
}

// Video status handler
func (s *Server) videoStatus(c *gin.Context) {
	identity, ok := parseVideoQuery(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, s.orch.Status(c.Request.Context(), identity))
}

// parseShape validates the quality and format query parameters
func parseShape(c *gin.Context) (models.Quality, models.Format, bool) {
	quality, ok := models.ParseQuality(c.DefaultQuery("quality", string(models.QualityHighest)))
	if !ok {
		respondError(c, models.NewInvalidInput("Invalid quality. Options: highest, high, medium, low, audio_only"))
		return "", "", false
	}

	format, ok := models.ParseFormat(c.DefaultQuery("format", string(models.FormatMP4)))
	if !ok {
		respondError(c, models.NewInvalidInput("Invalid format. Options: mp4, webm, mkv, mp3"))
		return "", "", false
	}

	return quality, format, true
}

// Video download handler
func (s *Server) videoDownload(c *gin.Context) {
	identity, ok := parseVideoQuery(c)
	if !ok {
		return
	}

	quality, format, ok := parseShape(c)
	if !ok {
		return
	}

	req := models.ExtractionRequest{
		Identity:     identity,
		Quality:      quality,
		Format:       format,
		ForceRefresh: forceExtract(c),
	}

	info, err := s.orch.Download(c.Request.Context(), callerID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// Video fallback handler
func (s *Server) videoFallback(c *gin.Context) {
	identity, ok := parseVideoQuery(c)
	if !ok {
		return
	}

	method := c.DefaultQuery("method", orchestrator.FallbackEmbed)
	if !orchestrator.ValidFallbackMethod(method) {
		respondError(c, models.NewInvalidInput("Invalid method. Options: embed, mobile, basic"))
		return
	}

	c.JSON(http.StatusOK, s.orch.Fallback(c.Request.Context(), method, identity))
}

// parseLimit validates the playlist member limit against bounds;
// max_videos is accepted as an alias for limit.
func parseLimit(c *gin.Context, def, max int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		raw = c.Query("max_videos")
	}
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		respondError(c, models.NewInvalidInput("limit must be between 1 and %d", max))
		return 0, false
	}
	return n, true
}

// Playlist info handler
func (s *Server) playlistInfo(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		respondError(c, models.NewInvalidInput("url query parameter is required"))
		return
	}
	if !youtube.ValidatePlaylistURL(rawURL) {
		respondError(c, models.NewInvalidInput("Invalid YouTube playlist URL"))
		return
	}

	limit, ok := parseLimit(c, 50, 100)
	if !ok {
		return
	}

	info, err := s.orch.PlaylistInfo(c.Request.Context(), rawURL, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// Playlist download handler
func (s *Server) playlistDownload(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		respondError(c, models.NewInvalidInput("url query parameter is required"))
		return
	}
	if !youtube.ValidatePlaylistURL(rawURL) {
		respondError(c, models.NewInvalidInput("Invalid YouTube playlist URL"))
		return
	}

	limit, ok := parseLimit(c, 10, 50)
	if !ok {
		return
	}

	quality, format, ok := parseShape(c)
	if !ok {
		return
	}

	result, err := s.orch.PlaylistDownload(c.Request.Context(), callerID(c), rawURL, quality, format, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Stats handler
func (s *Server) getStats(c *gin.Context) {
	if s.storage == nil {
		respondError(c, models.NewInvalidInput("Extraction history is not enabled"))
		return
	}

	stats, err := s.storage.GetStats()
	if err != nil {
		respondError(c, err)
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	recent, err := s.storage.RecentRecords(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":  stats,
		"recent": recent,
	})
}

// Stats export handler
func (s *Server) exportStats(c *gin.Context) {
	if s.storage == nil {
		respondError(c, models.NewInvalidInput("Extraction history is not enabled"))
		return
	}

	format, ok := export.ParseFormat(c.DefaultQuery("format", string(export.FormatCSV)))
	if !ok {
		respondError(c, models.NewInvalidInput("Invalid export format. Options: %s", export.FormatOptions()))
		return
	}

	limit := 1000
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 10000 {
			limit = n
		}
	}

	records, err := s.storage.ListRecords(limit, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("extractions-%s.%s", time.Now().Format("20060102-150405"), format)
	c.Header("Content-Type", export.ContentType(format))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if err := s.exporter.Export(c.Writer, format, records); err != nil {
		s.logger.Error().Err(err).Msg("Error exporting extraction history")
	}
}
