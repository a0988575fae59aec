// Package watch keeps an output tree in step with its Java input tree by
// reconverting files as they change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/honghai9112k/tool-java2ts/internal/batch"
	"github.com/honghai9112k/tool-java2ts/internal/importfix"
	"github.com/honghai9112k/tool-java2ts/internal/logging"
)

// DefaultDebounce is the quiet period that ends a burst of changes.
const DefaultDebounce = 300 * time.Millisecond

// Cycle is the work done for one burst of changes.
type Cycle struct {
	Results []batch.FileResult
	// Removed lists the relative paths of deleted inputs whose output was
	// removed.
	Removed []string
	// Imports is set when imports were updated after the conversions.
	Imports *importfix.Report
}

// Options configures a Watcher.
type Options struct {
	Mode          batch.Mode
	Debounce      time.Duration
	UpdateImports bool
	// OnCycle is called after every cycle from the watch loop.
	OnCycle func(Cycle)
}

// Watcher reconverts changed inputs of a batch runner.
type Watcher struct {
	runner *batch.Runner
	opts   Options
	root   string
	filter batch.WalkOptions
	fsw    *fsnotify.Watcher
	log    *zap.SugaredLogger

	changed map[string]struct{}
	removed map[string]struct{}
}

// New watches every directory under the runner's input root. Changes made
// after New returns are picked up by Run.
func New(runner *batch.Runner, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	w := &Watcher{
		runner:  runner,
		opts:    opts,
		root:    runner.Options().InputDir,
		filter:  runner.WalkOptions(),
		fsw:     fsw,
		log:     logging.Named("watch"),
		changed: make(map[string]struct{}),
		removed: make(map[string]struct{}),
	}
	if err := w.addTree(w.root, false); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes change events until ctx is done. It closes the underlying
// watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	w.log.Infow("Watching for changes", "input", w.root, "mode", w.opts.Mode.Name)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.opts.Debounce)
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", "error", err)

		case <-fire:
			fire = nil
			w.flush(ctx)
		}
	}
}

// handle records an event and reports whether work is pending.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// Files may land in a new directory before it is watched.
			if err := w.addTree(event.Name, true); err != nil {
				w.log.Warnw("Cannot watch new directory", "dir", event.Name, "error", err)
			}
			return len(w.changed) > 0
		}
	}
	if !w.filter.Accepts(filepath.Base(event.Name)) {
		return false
	}
	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		delete(w.changed, event.Name)
		w.removed[event.Name] = struct{}{}
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		delete(w.removed, event.Name)
		w.changed[event.Name] = struct{}{}
	default:
		return false
	}
	return true
}

// addTree watches dir and its subdirectories. With queue set, inputs already
// present are queued for conversion.
func (w *Watcher) addTree(dir string, queue bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				return errors.Wrapf(err, "watching %s", path)
			}
			return nil
		}
		if queue && w.filter.Accepts(d.Name()) {
			w.changed[path] = struct{}{}
		}
		return nil
	})
}

// flush converts queued inputs, removes outputs of deleted inputs and
// optionally updates imports.
func (w *Watcher) flush(ctx context.Context) {
	var cycle Cycle

	for _, path := range sortedKeys(w.removed) {
		f, err := batch.NewFile(w.root, path)
		if err != nil {
			continue
		}
		out := w.runner.OutputPath(f)
		if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
			w.log.Warnw("Cannot remove output", "output", out, "error", err)
			continue
		}
		cycle.Removed = append(cycle.Removed, f.RelativePath)
	}

	converted := 0
	for _, path := range sortedKeys(w.changed) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		f, err := batch.NewFile(w.root, path)
		if err != nil {
			continue
		}
		res := w.runner.ConvertFile(ctx, f, w.opts.Mode)
		if res.Success {
			converted++
		} else {
			w.log.Debugw("Not converted", "file", res.InputFile, "reason", res.Error)
		}
		cycle.Results = append(cycle.Results, res)
	}
	clear(w.changed)
	clear(w.removed)

	if w.opts.UpdateImports && converted > 0 {
		report, err := importfix.Run(ctx, w.runner.Options().OutputDir)
		if err != nil && !errors.Is(err, importfix.ErrNoOutputs) {
			w.log.Warnw("Import update failed", "error", err)
		}
		cycle.Imports = report
	}

	w.log.Infow("Changes processed",
		"converted", converted,
		"failed", len(cycle.Results)-converted,
		"removed", len(cycle.Removed))
	if w.opts.OnCycle != nil {
		w.opts.OnCycle(cycle)
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
