package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/streamweave/console/pkg/session"
	"github.com/streamweave/console/pkg/tokenstore"
)

func newWatchCommand() *Command {
	return &Command{
		Name:        "watch",
		Description: "Follow session state as the credential changes on disk",
		Flags:       flag.NewFlagSet("watch", flag.ExitOnError),
		Run:         runWatch,
	}
}

// runWatch mirrors what a long-lived console does: the token file is watched,
// and every external login or logout re-derives the session. Useful when
// several terminals share one credential.
func runWatch(args []string) error {
	cmd := newWatchCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.Config.Observability.MetricsEnabled {
		metricsSrv := &http.Server{
			Addr:    app.Config.Observability.MetricsAddr,
			Handler: app.Metrics.Handler(),
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.Logger.WithError(err).Error("metrics listener failed")
			}
		}()
		defer metricsSrv.Close()
	}

	snap := app.Machine.Bootstrap(ctx)
	fmt.Printf("session: %s\n", snap.State)

	watcher, err := tokenstore.NewWatcher(app.Store)
	if err != nil {
		return fmt.Errorf("failed to watch token file: %w", err)
	}
	defer watcher.Close()

	updates, cancel := app.Machine.Subscribe()
	defer cancel()

	return app.watchSession(ctx, watcher.Changes(), updates, os.Stdout)
}

// watchSession consumes token-file changes and session transitions until ctx
// is done. A transition means the session changed hands, so every cached
// collection is dropped before the new state is reported: data fetched under
// one identity must not survive into the next.
func (a *App) watchSession(ctx context.Context, changes <-chan struct{}, updates <-chan session.Snapshot, out io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			a.Machine.Resync(ctx)
		case snap := <-updates:
			a.Resources.InvalidateAll()
			if snap.Identity != nil {
				fmt.Fprintf(out, "session: %s (%s)\n", snap.State, snap.Identity.Email)
			} else {
				fmt.Fprintf(out, "session: %s\n", snap.State)
			}
		}
	}
}
