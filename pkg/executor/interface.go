// Package executor shells out to the external media tools the pipeline
// depends on.
package executor

import "context"

// Executor runs an external command and returns its stdout.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
}
