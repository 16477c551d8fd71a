package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jscyril/musicvfs/api"
	"github.com/jscyril/musicvfs/internal/audio"
	"github.com/jscyril/musicvfs/internal/config"
	"github.com/jscyril/musicvfs/internal/jumptrack"
	"github.com/jscyril/musicvfs/internal/library"
	"github.com/jscyril/musicvfs/internal/metrics"
	"github.com/jscyril/musicvfs/internal/playlist"
	"github.com/jscyril/musicvfs/internal/ui"
	"github.com/jscyril/musicvfs/internal/vfs"
	"github.com/jscyril/musicvfs/pkg/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: load .env: %v\n", err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:  "player",
		Usage: "jump to a track in a playlist or music library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				EnvVars: []string{"MUSIC_PLAYER_CONFIG"},
				Value:   config.GetConfigPath(),
			},
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "playlist path or URI to jump in (default: whole library)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "zerolog level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "address to serve Prometheus /metrics on",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	// Load configuration
	cfg, err := config.LoadOrCreate(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := c.String("playlist"); v != "" {
		cfg.Playlist = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := c.String("metrics-addr"); v != "" {
		cfg.MetricsAddr = v
	}

	// Create data directory
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logFile.Close()

	// Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Metrics
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	vfsMetrics := metrics.NewVFS(promReg)
	if cfg.MetricsAddr != "" {
		srv := metrics.NewServer(cfg.MetricsAddr, promReg)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			srv.Shutdown(shutdownCtx)
		}()
	}

	reg := newRegistry(cfg, vfsMetrics)

	// Load persisted library (or create empty)
	libraryURI := filepath.Join(cfg.DataDir, "library.json")
	lib, err := library.LoadLibrary(reg, libraryURI, cfg.ScanWorkers)
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}
	fmt.Printf("Loaded %d tracks from library\n", lib.TotalTracks)

	// Scan only if library is empty and directories are configured
	if lib.TotalTracks == 0 && len(cfg.MusicDirectories) > 0 {
		fmt.Println("Library empty, scanning music directories...")
		if err := lib.Scan(ctx, cfg.MusicDirectories); err != nil {
			log.Warn().Err(err).Msg("scan finished with errors")
		}
		fmt.Printf("Found %d tracks\n", lib.TotalTracks)
		if err := lib.Save(libraryURI); err != nil {
			log.Warn().Err(err).Msg("save library")
		}
	}

	libraryTracks := lib.TotalTracks

	plManager := playlist.NewManager(reg, filepath.Join(cfg.DataDir, "playlists"), cfg.VFS.LineCapacity)
	if err := plManager.LoadAll(); err != nil {
		log.Warn().Err(err).Msg("load playlists")
	}

	tracks, err := sessionTracks(cfg, lib, plManager)
	if err != nil {
		return err
	}
	if lib.TotalTracks != libraryTracks {
		if err := lib.Save(libraryURI); err != nil {
			log.Warn().Err(err).Msg("save library")
		}
	}
	if len(tracks) == 0 {
		fmt.Println("Nothing to jump to: the playlist is empty")
		return nil
	}

	queue := playlist.NewQueue()
	queue.Set(tracks)

	bus := events.NewEventBus()
	defer bus.Close()
	go logEvents(bus.SubscribeAll())

	session := ui.NewSession(queue, cfg.JumpToTrack, cfg.KeyBindings, bus)
	res, err := ui.Run(ctx, session)
	if err != nil {
		return err
	}

	if !res.Jumped {
		fmt.Println("No track selected")
		return nil
	}
	return describe(reg, res, queue)
}

// setupLogging sends logs to a rotated file in the data directory so
// they do not draw over the terminal UI
func setupLogging(cfg *config.Config) (io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	out := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.DataDir, "player.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	return out, nil
}

func newRegistry(cfg *config.Config, obs vfs.Observer) *vfs.Registry {
	client := &http.Client{Timeout: cfg.VFS.HTTPTimeout}
	return vfs.NewRegistry(
		vfs.WithObserver(obs),
		vfs.WithMaxContentsSize(cfg.VFS.MaxContentsSize),
		vfs.WithBackend("http", vfs.NewHTTPBackend(client)),
		vfs.WithBackend("https", vfs.NewHTTPBackend(client)),
		vfs.WithBackend("mem", vfs.NewMemoryBackend()),
	)
}

// sessionTracks returns the configured playlist, or the whole library
// when none is set. Playlist entries missing from the library are
// scanned into it.
func sessionTracks(cfg *config.Config, lib *library.Library, plManager *playlist.Manager) ([]*api.Track, error) {
	if cfg.Playlist == "" {
		return lib.GetAllTracks(), nil
	}

	pl, err := plManager.Load(cfg.Playlist)
	if errors.Is(err, vfs.ErrNotFound) {
		return nil, fmt.Errorf("playlist %s does not exist", cfg.Playlist)
	}
	if err != nil {
		return nil, fmt.Errorf("load playlist: %w", err)
	}

	tracks, added := lib.Resolve(pl.Tracks)
	if added > 0 {
		log.Info().Int("tracks", added).Str("playlist", cfg.Playlist).Msg("added playlist entries to library")
	}
	return tracks, nil
}

func logEvents(ch <-chan api.SessionEvent) {
	logger := log.With().Str("component", "jump-session").Logger()
	for ev := range ch {
		e := logger.Info().Str("event", ev.Type.String()).Bool("close_on_jump", ev.CloseOnJump)
		if ev.Position > 0 {
			e = e.Int("position", ev.Position)
		}
		if ev.Track != nil {
			e = e.Str("uri", ev.Track.FilePath)
		}
		if ev.Type == api.EventQueueToggled {
			e = e.Bool("queued", ev.Queued)
		}
		e.Msg("session event")
	}
}

func describe(reg *vfs.Registry, res ui.Result, queue *playlist.Queue) error {
	t := res.Track
	fmt.Printf("Jumped to %d. %s\n", res.Position, jumptrack.Describe(t))
	if t.Artist != "" {
		fmt.Printf("  Artist: %s\n", t.Artist)
	}
	fmt.Printf("  Location: %s\n", t.FilePath)

	info, err := audio.Probe(reg, t.FilePath)
	if err != nil {
		log.Warn().Err(err).Str("uri", t.FilePath).Msg("probe failed")
		fmt.Println("  Format: unknown")
	} else {
		fmt.Printf("  Format: %s, %d Hz, %d channels, %s\n",
			info.Format, info.SampleRate, info.Channels, info.Duration.Round(time.Second))
	}

	if art, err := library.NewMetadataReader(reg).ReadCoverArt(t.FilePath); err != nil {
		log.Debug().Err(err).Str("uri", t.FilePath).Msg("no cover art")
	} else if len(art) > 0 {
		fmt.Printf("  Cover art: %s, %d bytes\n", http.DetectContentType(art), len(art))
	}

	if queued := queue.Queued(); len(queued) > 0 {
		fmt.Println("  Up next:")
		for _, q := range queued {
			fmt.Printf("    %s\n", jumptrack.Describe(q))
		}
	}
	return nil
}
