package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// watchDebounce collapses editor write bursts into one reload.
const watchDebounce = 250 * time.Millisecond

// Watcher re-reads the config file when it changes and applies the
// logging level to the running process. It watches the parent
// directory, not the file, because editors replace files by rename.
//
// Registered as an optional subsystem: a platform without inotify
// degrades to a fixed level instead of blocking startup.
type Watcher struct {
	path  string
	level zap.AtomicLevel
	log   *zap.Logger

	fw   *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(path string, level zap.AtomicLevel, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{path: path, level: level, log: log}
}

func (w *Watcher) Name() string { return "config-watcher" }

func (w *Watcher) StartUp() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.fw = fw
	w.done = make(chan struct{})
	w.wg.Add(1)
	go w.loop()
	w.log.Debug("watching config", zap.String("path", w.path))
	return nil
}

func (w *Watcher) ShutDown() {
	if w.fw == nil {
		return
	}
	close(w.done)
	w.fw.Close()
	w.wg.Wait()
	w.fw = nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	debounce := time.NewTimer(time.Hour)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(watchDebounce)
		case <-debounce.C:
			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watch error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// reload applies the file's logging level. Parse failures keep the
// current level; a half-written file must never flip settings.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config reload failed", zap.Error(err))
		return
	}
	lvl, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		w.log.Warn("config reload: bad level", zap.String("level", cfg.Logging.Level))
		return
	}
	if w.level.Level() != lvl {
		w.level.SetLevel(lvl)
		w.log.Info("log level changed", zap.String("level", lvl.String()))
	}
}
