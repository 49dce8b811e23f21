package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"convert-generator/internal/gen"
)

// DefaultDebounce is how long Watch waits for more events before rerunning.
const DefaultDebounce = 200 * time.Millisecond

// Watch runs Generate once, then again after every burst of changes to Go
// source files in the loaded package directories, until ctx is cancelled.
// report is called with the outcome of every run. Errors of a run are
// passed to report and do not stop watching.
func (r *Runner) Watch(
	ctx context.Context,
	debounce time.Duration,
	report func(*Result, error),
	patterns ...string,
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)

	run := func() {
		res, err := r.Generate(ctx, patterns...)
		report(res, err)

		if res == nil {
			return
		}

		for _, dir := range res.Dirs {
			if watched[dir] {
				continue
			}

			if err := watcher.Add(dir); err != nil {
				r.log.Error().Err(err).Str("dir", dir).Msg("watch directory")

				continue
			}

			watched[dir] = true
			r.log.Debug().Str("dir", dir).Msg("watching")
		}
	}

	run()

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !r.relevant(event) {
				continue
			}

			r.log.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("source changed")

			timer.Reset(debounce)
		case <-timer.C:
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			r.log.Error().Err(err).Msg("file watcher error")
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}

			return ctx.Err()
		}
	}
}

// relevant reports whether event touches a hand-written Go source file.
func (r *Runner) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	name := filepath.Base(event.Name)

	switch {
	case !strings.HasSuffix(name, ".go"),
		strings.HasSuffix(name, "_test.go"),
		strings.HasSuffix(name, r.cfg.FileSuffix),
		name == gen.SupportFilename:
		return false
	}

	return true
}
