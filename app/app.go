// Package app wires configuration, telemetry, templates and routes into a
// running server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ttacon/chalk"

	"github.com/freekieb7/werver/config"
	"github.com/freekieb7/werver/filesystem"
	"github.com/freekieb7/werver/http"
	"github.com/freekieb7/werver/routes"
	"github.com/freekieb7/werver/telemetry"
)

var logger = telemetry.Logger("github.com/freekieb7/werver/app")

// requiredPages are rendered by the fallbacks, so the server refuses to
// start without them.
var requiredPages = []string{routes.NotFoundTemplate, routes.ErrorTemplate}

// Pages is an opened template store together with what Banner reports
// about it.
type Pages struct {
	Store filesystem.Filesystem
	Dir   string
	Files []string
}

// OpenPages opens the template store rooted at dir and checks that every
// fallback page is present.
func OpenPages(dir string) (*Pages, error) {
	store := filesystem.NewLocalFileSystem(dir)

	for _, page := range requiredPages {
		exists, err := store.FileExists(page)
		if err != nil {
			return nil, fmt.Errorf("app: pages: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("app: pages: %w: %s", filesystem.ErrFileNotFound, page)
		}
	}

	files, err := store.ListDirectory(".")
	if err != nil {
		return nil, fmt.Errorf("app: pages: %w", err)
	}

	abs, err := store.GetAbsolutePath(".")
	if err != nil {
		return nil, fmt.Errorf("app: pages: %w", err)
	}

	return &Pages{Store: store, Dir: abs, Files: files}, nil
}

// NewServer builds the example server rendering from pages.
func NewServer(cfg *config.Config, pages *Pages) *http.Server {
	srv := http.NewServer(cfg.Telemetry.ServiceName, routes.Build(), pages.Store)
	srv.NotFound = routes.NotFound
	srv.OnError = routes.OnError
	srv.Workers = cfg.Server.Workers
	srv.QueueSize = cfg.Server.QueueSize
	return srv
}

func Banner(w io.Writer, cfg *config.Config, routeCount int, pages *Pages) {
	fmt.Fprintf(w, "%s %s\n",
		chalk.Bold.TextStyle(chalk.Magenta.Color(cfg.Telemetry.ServiceName)),
		chalk.Cyan.Color("http://"+cfg.ServerAddress()))
	fmt.Fprintf(w, "  workers: %d, queue: %d, routes: %d, pages: %d in %s\n",
		cfg.Server.Workers, cfg.Server.QueueSize, routeCount, len(pages.Files), pages.Dir)
}

// Run serves until ctx is done. Telemetry is flushed before returning.
func Run(ctx context.Context, cfg *config.Config, out io.Writer) (err error) {
	pages, err := OpenPages(cfg.Pages.Dir)
	if err != nil {
		return err
	}

	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.Endpoint,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, shutdown(flushCtx))
	}()

	srv := NewServer(cfg, pages)
	Banner(out, cfg, srv.Routes.Len(), pages)

	if err := srv.ListenAndServe(ctx, cfg.ServerAddress()); err != nil {
		return err
	}

	logger.Info("server stopped", "server", srv.Name)
	return nil
}
