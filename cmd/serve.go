package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jishaal/old.jishaal.com/internal/site"
)

const (
	debounceDuration = 500 * time.Millisecond

	readHeaderTimeout      = 15 * time.Second
	serverShutdownDeadline = 5 * time.Second
)

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and watches for changes",
	Long: `The serve command performs an initial build of your site, then starts a local
web server to serve your output directory. It also watches your content, layouts,
and static directories for changes and automatically rebuilds the site.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	builder := site.NewBuilder(appConfig, log.Logger)

	log.Info().Msg("Performing initial build")
	if _, err := builder.Build(ctx); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	rb := newRebuilder(debounceDuration, func() error {
		_, err := builder.Build(ctx)
		return err
	}, log.Logger)
	defer rb.stop()

	go watch(ctx, watcher, rb)

	for _, root := range []string{appConfig.ContentDir, appConfig.LayoutsDir, appConfig.StaticDir} {
		addRecursive(watcher, root)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", serverPort),
		Handler:           newSiteHandler(appConfig.OutputDir),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("dir", appConfig.OutputDir).
			Str("url", fmt.Sprintf("http://localhost:%d", serverPort)).
			Msg("Serving site, press Ctrl+C to stop")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownDeadline)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// watch forwards relevant file system events to rb until ctx is done or the
// watcher is closed.
func watch(ctx context.Context, watcher *fsnotify.Watcher, rb *rebuilder) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Change detected")

			// New subdirectories are not watched automatically.
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				addRecursive(watcher, event.Name)
			}
			rb.trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// addRecursive watches root and every directory below it.
func addRecursive(watcher *fsnotify.Watcher, root string) {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("dir", root).Msg("Directory not found, not watching")
		return
	}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("Error walking directory")
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(p); err != nil {
				log.Warn().Err(err).Str("dir", p).Msg("Failed to watch directory")
			}
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("dir", root).Msg("Error setting up watch")
	}
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// rebuilder coalesces bursts of triggers into a single rebuild that runs
// once no trigger has arrived for the debounce duration.
type rebuilder struct {
	mu       sync.Mutex
	building sync.Mutex
	timer    *time.Timer
	debounce time.Duration
	build    func() error
	logger   zerolog.Logger
}

func newRebuilder(debounce time.Duration, build func() error, logger zerolog.Logger) *rebuilder {
	return &rebuilder{debounce: debounce, build: build, logger: logger}
}

func (r *rebuilder) trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.run)
}

func (r *rebuilder) run() {
	r.building.Lock()
	defer r.building.Unlock()

	r.logger.Info().Msg("Rebuilding site due to changes")
	if err := r.build(); err != nil {
		r.logger.Error().Err(err).Msg("Rebuild failed")
		return
	}
	r.logger.Info().Msg("Site rebuilt")
}

func (r *rebuilder) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
}

// newSiteHandler serves dir gzip-compressed, with caching disabled.
// Directories without an index.html are not listed.
func newSiteHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))

	return gzhttp.GzipHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
			if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(r.URL.Path), "index.html")); err != nil {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		files.ServeHTTP(w, r)
	}))
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
