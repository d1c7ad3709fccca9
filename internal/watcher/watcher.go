// Package watcher monitors the score library for file changes and triggers
// a rescan once the tree settles.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// settleDelay batches bursts of filesystem events (e.g. a folder of parts
// being filed in) into one rescan.
const settleDelay = 2 * time.Second

// Watcher watches a library tree recursively and invokes a callback after
// score or recording files change.
type Watcher struct {
	root     string
	onChange func()
	logger   *logrus.Logger

	fs   *fsnotify.Watcher
	done chan struct{}
}

// NewWatcher creates a watcher over the library root. onChange runs on the
// watcher's goroutine after events settle.
func NewWatcher(root string, onChange func()) *Watcher {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &Watcher{
		root:     root,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// SetLogger replaces the watcher's logger.
func (w *Watcher) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// Start begins watching the library tree. All existing subdirectories are
// registered; directories created later are picked up from their events.
func (w *Watcher) Start() error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fs = fs

	go w.watchFiles()

	if err := w.addDirectoryTree(w.root); err != nil {
		fs.Close()
		return err
	}

	w.logger.WithField("library_path", w.root).Info("Library watcher started")
	return nil
}

// Stop shuts the watcher down (idempotent).
func (w *Watcher) Stop() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	if w.fs != nil {
		w.fs.Close()
	}
}

// addDirectoryTree recursively registers directories with the watcher.
func (w *Watcher) addDirectoryTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}

// watchFiles selects on watcher channels, batching relevant events into a
// single onChange call once the tree goes quiet.
func (w *Watcher) watchFiles() {
	var settle *time.Timer
	var settleC <-chan time.Time

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(settleDelay)
				settleC = settle.C
			} else {
				settle.Reset(settleDelay)
			}

		case <-settleC:
			settle = nil
			settleC = nil
			w.logger.Debug("Library changed, rescanning")
			w.onChange()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Error("Library watcher error")

		case <-w.done:
			return
		}
	}
}

// relevant filters events down to score/recording changes and new
// directories, which also get added to the watch set.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".pdf" || ext == ".wav" {
		return true
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.fs.Add(event.Name)
			w.logger.WithField("directory", event.Name).Info("Watching new directory")
		}
	}
	return false
}
