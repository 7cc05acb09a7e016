package web

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay groups the several events editors emit for one save.
const debounceDelay = 100 * time.Millisecond

// changeOps are the operations that mean the file content may differ.
// Remove and Rename show up on atomic saves.
const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// watchFile calls onChange once per burst of changes to path until ctx is
// cancelled. onChange runs on a timer goroutine.
func watchFile(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	go func() {
		var pending *time.Timer
		defer func() {
			if pending != nil {
				pending.Stop()
			}
			_ = watcher.Close()
		}()

		fire := func() {
			// An atomic save replaces the inode, which drops the watch.
			if err := watcher.Add(path); err != nil {
				log.Printf("Warning: failed to watch %s: %v", path, err)
			}
			onChange()
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&changeOps == 0 {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(debounceDelay, fire)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("File watcher error: %v", err)
			}
		}
	}()

	return nil
}

// startWatcher reloads the served file on change and notifies clients.
func (s *Server) startWatcher(ctx context.Context) error {
	return watchFile(ctx, s.file, func() {
		if err := s.reload(ctx); err != nil {
			log.Printf("Failed to reload diagram: %v", err)
			return
		}
		s.events.publish("reload")
	})
}
