package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads config.json when it changes on disk, debouncing
// the editor write/rename bursts fsnotify surfaces into a single
// reload callback.
type Watcher struct {
	mu         sync.Mutex
	watcher    *fsnotify.Watcher
	done       chan struct{}
	configPath string
	onReload   func(ServerConfig)
}

// NewWatcher starts watching configPath's directory for config.json
// changes, invoking onReload with the newly loaded ServerConfig after
// each debounced write.
func NewWatcher(configPath string, onReload func(ServerConfig)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create file watcher: %w", err)
	}
	if err := fsw.Add(configPath); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", configPath, err)
	}

	w := &Watcher{
		watcher:    fsw,
		done:       make(chan struct{}),
		configPath: configPath,
		onReload:   onReload,
	}
	go w.loop()
	log.Printf("INFO: config: watching %s for config.json changes", configPath)
	return w, nil
}

// Stop closes the underlying filesystem watcher and its goroutine.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return
	}
	close(w.done)
	w.watcher.Close()
	w.watcher = nil
}

func (w *Watcher) loop() {
	const debounce = 500 * time.Millisecond
	var timer *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != "config.json" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("ERROR: config: file watcher error: %v", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.configPath)
	if err != nil {
		log.Printf("ERROR: config: reload failed: %v", err)
		return
	}
	log.Printf("INFO: config: reloaded %s", strings.TrimSuffix(w.configPath, "/"))
	w.onReload(cfg)
}
