// Package watcher submits audio files dropped into an inbox directory
// as pipeline jobs.
package watcher

import "context"

// Watcher monitors the inbox directory until its context is cancelled.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler receives the path of each newly dropped audio file.
type EventHandler func(ctx context.Context, filePath string) error
