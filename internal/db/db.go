// Package db defines the geodb access contract used by the gateway.
package db

import (
	"context"
	"time"
)

// Store executes admin command lines against the geospatial database.
type Store interface {
	// Execute runs one command line and returns the geodb's JSON reply
	// ({"ok":true,...} or {"ok":false,"err":...}).
	Execute(ctx context.Context, command string) ([]byte, error)
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}
