package ml

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the artifact whenever the file at path is replaced on disk,
// swapping it into the store atomically. The parent directory is watched
// rather than the file itself because atomic saves rename over the target.
// Blocks until the context is cancelled.
func (s *Store) Watch(ctx context.Context, path string, log *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			artifact, err := LoadArtifact(path)
			if err != nil {
				// Keep serving the previous artifact; a partial or broken
				// replacement must never take down inference.
				log.Warn("model reload failed", zap.String("path", path), zap.Error(err))
				continue
			}
			s.Swap(artifact)
			log.Info("model artifact reloaded",
				zap.String("path", path),
				zap.Time("trained_at", artifact.TrainedAt),
				zap.Int("data_points", artifact.DataPoints))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("model watcher error", zap.Error(err))
		}
	}
}
