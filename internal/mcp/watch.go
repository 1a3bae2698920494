package mcp

import (
	"context"
	"os"
	"time"

	"texcheck/internal/logging"
)

// WatchParent cancels the server when the parent process dies (the editor
// disconnected), so stdio servers never linger as orphans.
//
// Must NOT read from stdin: the SDK's StdioTransport owns it exclusively.
func WatchParent(ctx context.Context, cancel context.CancelFunc) {
	ppid := os.Getppid()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					logging.New("mcp").Warn("parent process died, shutting down", "was_pid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
