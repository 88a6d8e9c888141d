package script

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives each evaluation of a watched script. err is set when the script failed to evaluate.
type ReloadFunc func(res *Result, err error)

// Watch evaluates the script at path, then re-evaluates it every time the file is written, until ctx is done.
// The parent directory is watched so editors that replace the file on save are followed.
//
// Parameters:
//   - ctx: cancels the watch
//   - path: the script file
//   - onReload: called with every evaluation, including the first
//   - options: functional options for every evaluation
//
// Returns:
//   - error: ctx.Err() once cancelled, or the watcher error that ended the watch
func Watch(ctx context.Context, path string, onReload ReloadFunc, options ...EvalBuilderOption) error {
	e := newEvaluator(options)

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("script: watch %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("script: watch %s: %w", path, err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("script: watch %s: %w", path, err)
	}

	onReload(e.evalFile(abs))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				pending = time.After(e.debounce)
			}

		case <-pending:
			pending = nil
			res, err := e.evalFile(abs)
			if err != nil {
				e.logger.Warningf("reload %s: %v", path, err)
			} else {
				e.logger.Infof("reloaded %s", path)
			}
			onReload(res, err)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Errorf("watch %s: %v", path, err)
		}
	}
}
