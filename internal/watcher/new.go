package watcher

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/jchen-labs/media-summary/internal/logger"
)

// New creates a watcher on inboxDir dispatching to handler.
func New(inboxDir string, handler EventHandler, log logger.Logger) (Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fsw.Add(inboxDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", inboxDir, err)
	}

	return &implWatcher{
		inboxDir: inboxDir,
		handler:  handler,
		logger:   log,
		watcher:  fsw,
	}, nil
}
