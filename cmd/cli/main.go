package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"yt-extract-api/internal/config"
	"yt-extract-api/internal/export"
	"yt-extract-api/internal/monitor"
	"yt-extract-api/internal/orchestrator"
	"yt-extract-api/internal/server"
	"yt-extract-api/internal/storage"
	"yt-extract-api/internal/youtube"
	"yt-extract-api/pkg/models"
)

var (
	configPath string
	quality    string
	format     string
	exportAs   string
	method     string
	maxVideos  int
	asJSON     bool
)

var rootCmd = &cobra.Command{
	Use:   "yt-extract",
	Short: "Resilient YouTube metadata and download URL extraction",
	Long: `yt-extract resolves video metadata and direct download URLs while
rotating client profiles to survive upstream bot verification challenges.

It can run as a one-shot CLI or serve the same pipeline over HTTP.`,
	Version: server.Version,
}

// app bundles the assembled pipeline for one CLI invocation
type app struct {
	cfg     *models.Config
	orch    *orchestrator.Orchestrator
	history *storage.SQLite
	cleanup func()
}

func buildApp(withMetrics bool) (*app, error) {
	configManager := config.NewManager()
	cfg, err := configManager.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	logger := configManager.GetLogger()

	history, err := storage.NewSQLite(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("error initializing storage: %w", err)
	}

	var metrics *monitor.Metrics
	if withMetrics {
		metrics = monitor.NewMetrics()
	}

	orch, stop, err := orchestrator.FromConfig(context.Background(), cfg, history, metrics, logger)
	if err != nil {
		history.Close()
		return nil, fmt.Errorf("error assembling orchestrator: %w", err)
	}

	return &app{
		cfg:     cfg,
		orch:    orch,
		history: history,
		cleanup: func() {
			stop()
			history.Close()
		},
	}, nil
}

func parseIdentity(rawURL string) (models.VideoIdentity, error) {
	identity, err := youtube.ParseVideoURL(rawURL)
	if err != nil {
		return models.VideoIdentity{}, fmt.Errorf("invalid YouTube URL: %s", rawURL)
	}
	return identity, nil
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

var infoCmd = &cobra.Command{
	Use:   "info [url]",
	Short: "Resolve video metadata without a download URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := parseIdentity(args[0])
		if err != nil {
			return err
		}

		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.cleanup()

		result, cached, err := a.orch.Info(cmd.Context(), "", models.ExtractionRequest{Identity: identity})
		if err != nil {
			return fmt.Errorf("error extracting video info: %w", err)
		}

		if asJSON {
			return printJSON(result)
		}

		fmt.Printf("📹 Video Information\n")
		fmt.Printf("   Title: %s\n", result.Title)
		fmt.Printf("   ID: %s\n", result.ID)
		if result.Uploader != nil {
			fmt.Printf("   Uploader: %s\n", *result.Uploader)
		}
		if result.Duration != nil {
			fmt.Printf("   Duration: %s\n", time.Duration(*result.Duration*float64(time.Second)).Round(time.Second))
		}
		if result.ViewCount != nil {
			fmt.Printf("   Views: %d\n", *result.ViewCount)
		}
		fmt.Printf("   Profile: %s\n", result.Profile)
		fmt.Printf("   Cached: %v\n", cached)

		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Resolve a direct download URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := parseIdentity(args[0])
		if err != nil {
			return err
		}

		q, ok := models.ParseQuality(quality)
		if !ok {
			return fmt.Errorf("invalid quality %q (options: highest, high, medium, low, audio_only)", quality)
		}
		f, ok := models.ParseFormat(format)
		if !ok {
			return fmt.Errorf("invalid format %q (options: mp4, webm, mkv, mp3)", format)
		}

		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.cleanup()

		info, err := a.orch.Download(cmd.Context(), "", models.ExtractionRequest{
			Identity: identity,
			Quality:  q,
			Format:   f,
		})
		if err != nil {
			return fmt.Errorf("error resolving download URL: %w", err)
		}

		if asJSON {
			return printJSON(info)
		}

		fmt.Printf("✅ Download URL resolved\n")
		fmt.Printf("   Title: %s\n", info.Title)
		fmt.Printf("   Quality: %s | Format: %s | Ext: %s\n", info.Quality, info.RequestedFormat, info.Ext)
		if info.Filesize != nil {
			fmt.Printf("   Size: %d bytes\n", *info.Filesize)
		}
		fmt.Printf("   URL: %s\n", info.DownloadURL)

		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [url]",
	Short: "Check whether a video is accessible",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := parseIdentity(args[0])
		if err != nil {
			return err
		}

		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.cleanup()

		resp := a.orch.Status(cmd.Context(), identity)
		if asJSON {
			return printJSON(resp)
		}

		marker := "❌"
		if resp.Accessible {
			marker = "✅"
		}
		fmt.Printf("%s %s: %s\n", marker, resp.Status, resp.Message)
		if resp.Title != nil {
			fmt.Printf("   Title: %s\n", *resp.Title)
		}

		return nil
	},
}

var fallbackCmd = &cobra.Command{
	Use:   "fallback [url]",
	Short: "Try an alternative extraction strategy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := parseIdentity(args[0])
		if err != nil {
			return err
		}
		if !orchestrator.ValidFallbackMethod(method) {
			return fmt.Errorf("invalid method %q (options: embed, mobile, basic)", method)
		}

		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.cleanup()

		result := a.orch.Fallback(cmd.Context(), method, identity)
		if asJSON {
			return printJSON(result)
		}

		if result.Available {
			fmt.Printf("✅ Video available via %s fallback\n", result.Method)
			if result.Title != nil {
				fmt.Printf("   Title: %s\n", *result.Title)
			}
			if result.DownloadURL != nil {
				fmt.Printf("   URL: %s\n", *result.DownloadURL)
			}
		} else {
			fmt.Printf("❌ %s fallback failed: %s\n", result.Method, result.Error)
		}

		return nil
	},
}

var playlistCmd = &cobra.Command{
	Use:   "playlist [url]",
	Short: "List the videos of a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawURL := args[0]
		if !youtube.ValidatePlaylistURL(rawURL) {
			return fmt.Errorf("invalid YouTube playlist URL: %s", rawURL)
		}

		a, err := buildApp(false)
		if err != nil {
			return err
		}
		defer a.cleanup()

		info, err := a.orch.PlaylistInfo(cmd.Context(), rawURL, maxVideos)
		if err != nil {
			return fmt.Errorf("error extracting playlist info: %w", err)
		}

		if asJSON {
			return printJSON(info)
		}

		fmt.Printf("📚 %s (%d videos)\n", info.Title, info.VideoCount)
		for i, video := range info.Videos {
			fmt.Printf("%3d. %s (%s)\n", i+1, video.Title, video.ID)
		}

		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show extraction history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		configManager := config.NewManager()
		cfg, err := configManager.Load(configPath)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}

		history, err := storage.NewSQLite(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("error opening storage: %w", err)
		}
		defer history.Close()

		stats, err := history.GetStats()
		if err != nil {
			return fmt.Errorf("error reading stats: %w", err)
		}

		if asJSON {
			return printJSON(stats)
		}

		fmt.Printf("📊 Extraction Statistics\n")
		fmt.Printf("   Total: %d\n", stats.TotalExtractions)
		fmt.Printf("   Successes: %d | Failures: %d\n", stats.Successes, stats.Failures)
		fmt.Printf("   Cache hits: %d\n", stats.CacheHits)
		fmt.Printf("   Success rate: %.1f%%\n", stats.SuccessRate)
		for outcome, count := range stats.ByOutcome {
			fmt.Printf("   %s: %d\n", outcome, count)
		}

		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export extraction history to csv, xlsx or json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outFile := args[0]

		exportFormat, ok := export.ParseFormat(exportAs)
		if !ok {
			return fmt.Errorf("invalid export format %q (options: %s)", exportAs, export.FormatOptions())
		}

		configManager := config.NewManager()
		cfg, err := configManager.Load(configPath)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}

		history, err := storage.NewSQLite(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("error opening storage: %w", err)
		}
		defer history.Close()

		records, err := history.ListRecords(10000, 0)
		if err != nil {
			return fmt.Errorf("error reading history: %w", err)
		}

		file, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("error creating output file: %w", err)
		}
		defer file.Close()

		if err := export.NewExporter().Export(file, exportFormat, records); err != nil {
			return fmt.Errorf("error exporting history: %w", err)
		}

		fmt.Printf("✅ Exported %d records to %s\n", len(records), outFile)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

		configManager := config.NewManager()
		cfg, err := configManager.Load(configPath)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}
		logger := configManager.GetLogger()

		history, err := storage.NewSQLite(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("error initializing storage: %w", err)
		}
		defer history.Close()

		mon := monitor.NewMonitor()

		orch, cleanup, err := orchestrator.FromConfig(cmd.Context(), cfg, history, mon.Metrics(), logger)
		if err != nil {
			return fmt.Errorf("error assembling orchestrator: %w", err)
		}
		defer cleanup()

		srv := server.NewServer(cfg, orch, history, mon, logger)
		if err := srv.Run(); err != nil {
			return fmt.Errorf("error running server: %w", err)
		}

		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		configManager := config.NewManager()
		cfg, err := configManager.Load(configPath)
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}

		fmt.Printf("📋 Current Configuration\n")
		fmt.Printf("   Server: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
		fmt.Printf("   Max Attempts: %d\n", cfg.Extraction.MaxAttempts)
		fmt.Printf("   Cache TTL: %d minutes\n", cfg.Extraction.CacheTTL)
		fmt.Printf("   Rate Limit: info %.1fs, download %.1fs\n", cfg.RateLimit.InfoInterval, cfg.RateLimit.DownloadInterval)
		fmt.Printf("   Workers: %d (queue %d)\n", cfg.Workers.Count, cfg.Workers.QueueDepth)
		fmt.Printf("   Database: %s\n", cfg.Database.Path)
		fmt.Printf("   Proxy Enabled: %v\n", cfg.Proxy.Enabled)
		fmt.Printf("   Log Level: %s\n", cfg.Log.Level)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Emit JSON output")

	downloadCmd.Flags().StringVarP(&quality, "quality", "q", "highest", "Quality tier (highest, high, medium, low, audio_only)")
	downloadCmd.Flags().StringVarP(&format, "format", "f", "mp4", "Container format (mp4, webm, mkv, mp3)")
	fallbackCmd.Flags().StringVarP(&method, "method", "m", "embed", "Fallback method (embed, mobile, basic)")
	playlistCmd.Flags().IntVarP(&maxVideos, "max-videos", "n", 50, "Maximum playlist members to list")
	exportCmd.Flags().StringVarP(&exportAs, "format", "f", "csv", "Export format (csv, xlsx, json)")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(fallbackCmd)
	rootCmd.AddCommand(playlistCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(showConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
