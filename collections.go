package meridian

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-cloud/meridian/internal/command"
	"github.com/meridian-cloud/meridian/internal/db"
	"github.com/meridian-cloud/meridian/internal/reply"
)

// CollectionService lists and drops collections. Collections come into
// existence with their first stored object; there is no explicit create.
type CollectionService struct {
	store db.Store
	obs   *observer
}

// List returns every collection with its stats.
func (s *CollectionService) List(ctx context.Context) (_ []CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.list", start, err) }()

	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CollectionInfo, 0, len(keys))
	for _, key := range keys {
		stats, err := s.stats(ctx, key)
		if err != nil {
			return nil, err
		}
		out = append(out, stats)
	}
	return out, nil
}

// Stats returns stats for one collection.
func (s *CollectionService) Stats(ctx context.Context, key string) (_ CollectionInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.stats", start, err) }()
	return s.stats(ctx, key)
}

// Drop removes a collection and everything in it.
func (s *CollectionService) Drop(ctx context.Context, key string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("collection.drop", start, err) }()

	cmd, err := command.Drop(key)
	if err != nil {
		return err
	}
	_, err = s.store.Execute(ctx, cmd.String())
	return err
}

func (s *CollectionService) keys(ctx context.Context) ([]string, error) {
	cmd, err := command.Keys("*")
	if err != nil {
		return nil, err
	}
	raw, err := s.store.Execute(ctx, cmd.String())
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return reply.Keys(raw)
}

func (s *CollectionService) stats(ctx context.Context, key string) (CollectionInfo, error) {
	cmd, err := command.Stats(key)
	if err != nil {
		return CollectionInfo{}, err
	}
	raw, err := s.store.Execute(ctx, cmd.String())
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("collection stats: %w", err)
	}
	stats, err := reply.CollectionStats(raw)
	if err != nil {
		return CollectionInfo{}, err
	}
	return CollectionInfo{
		Key:          key,
		NumObjects:   stats.NumObjects,
		InMemorySize: stats.InMemorySize,
	}, nil
}
