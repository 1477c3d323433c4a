package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/urdf2iv/internal/config"
	"github.com/Faultbox/urdf2iv/internal/logger"
	"github.com/Faultbox/urdf2iv/internal/meshconv"
)

// WatchDelay is how long Watch waits for further changes before it reruns.
var WatchDelay = 300 * time.Millisecond

// Watch runs the conversion once and then again whenever the robot
// description or a file below one of its package directories changes. It
// returns when ctx is done. Every run, failed or not, is handed to done.
func Watch(ctx context.Context, cfg *config.Config, conv meshconv.Converter, done func(*Report, error)) error {
	log := logger.Named("watch")

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	outDir, _ := filepath.Abs(cfg.Output.Dir)
	dirs, err := watchDirs(cfg, outDir)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	log.Info("watching", zap.Strings("dirs", dirs))

	done(RunWith(cfg, conv))

	var rerun <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, outDir) {
				continue
			}
			log.Debug("change", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			rerun = time.After(WatchDelay)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		case <-rerun:
			rerun = nil
			done(RunWith(cfg, conv))
		}
	}
}

// watchDirs returns the directory of the robot description and every
// directory below the package directories, minus the output tree.
func watchDirs(cfg *config.Config, outDir string) ([]string, error) {
	source, err := filepath.Abs(cfg.Convert.URDF)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{filepath.Dir(source): true}

	for _, root := range cfg.Convert.Packages {
		root, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(root); err != nil {
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if within(p, outDir) || (p != root && strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			seen[p] = true
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
	}

	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// relevant reports whether ev should trigger a rerun. Changes inside the
// output tree and chmod-only events are ignored.
func relevant(ev fsnotify.Event, outDir string) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return !within(ev.Name, outDir)
}

// within reports whether p is dir or lies below it.
func within(p, dir string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, p)
	return err == nil && (rel == "." || filepath.IsLocal(rel))
}
