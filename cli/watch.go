package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/flightning/quadviz/logging"
)

// watchDelay collapses the bursts of events an editor produces when saving.
const watchDelay = 250 * time.Millisecond

// watchFiles calls fn once and again after every change to one of paths, until ctx is done.
// Errors from fn are logged, not returned, so a bad edit does not end the session.
func watchFiles(
	ctx context.Context,
	paths []string,
	delay time.Duration,
	logger logging.Logger,
	fn func(context.Context) error,
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "cannot watch inputs")
	}
	defer utils.UncheckedErrorFunc(watcher.Close)

	// directories are watched because editors often replace files instead of writing them.
	targets := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
		if dir := filepath.Dir(abs); !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return errors.Wrapf(err, "cannot watch %q", dir)
			}
			dirs[dir] = true
		}
	}

	run := func() {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			logger.Errorw("render failed", "error", err)
		}
	}
	run()

	changed := make(chan struct{}, 1)
	debounced := debounce.New(delay)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			logger.Debugw("input changed", "path", event.Name, "op", event.Op.String())
			debounced(func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("watch error", "error", err)
		case <-changed:
			logger.Infow("inputs changed, rendering again")
			run()
		}
	}
}
