package treeservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/starford/shajara/internal/apperr"
	"github.com/starford/shajara/internal/checksum"
	"github.com/starford/shajara/internal/metrics"
	"github.com/starford/shajara/internal/treeview"
)

// TreeRequest selects the part of a family tree to lay out.
type TreeRequest struct {
	// RootID defaults to the family root.
	RootID string
	// Depth defaults to Options.DefaultDepth.
	Depth       int
	HighlightID string
}

// Depth validates a requested depth against the configured limits.
func (s *Service) Depth(depth int) (int, error) {
	switch {
	case depth < 0:
		return 0, fmt.Errorf("treeservice: depth %d: %w", depth, apperr.ErrInvalidArgument)
	case depth == 0:
		return s.opts.DefaultDepth, nil
	case depth > s.opts.MaxDepthLimit:
		return 0, fmt.Errorf("treeservice: depth %d exceeds %d: %w", depth, s.opts.MaxDepthLimit, apperr.ErrInvalidArgument)
	}
	return depth, nil
}

// Tree lays out the descendants of the requested root. Results are cached
// per source checksum, so a reloaded file never serves an old layout.
func (s *Service) Tree(ctx context.Context, slug string, req TreeRequest) (*treeview.View, error) {
	v, err := s.family(slug)
	if err != nil {
		return nil, err
	}
	depth, err := s.Depth(req.Depth)
	if err != nil {
		return nil, err
	}
	root, err := v.pick(req.RootID)
	if err != nil {
		return nil, err
	}

	key := checksum.Key("tree", v.snap.meta.Checksum, root.ID, strconv.Itoa(depth), req.HighlightID)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("treeservice: cache get failed", slog.String("error", err.Error()))
	} else if ok {
		var view treeview.View
		if err := json.Unmarshal(raw, &view); err == nil {
			metrics.TreeRequest(metrics.CacheHit)
			return &view, nil
		}
	}

	started := time.Now()
	view, err := treeview.Build(v.data(), root.ID, treeview.Options{MaxDepth: depth, HighlightID: req.HighlightID})
	if err != nil {
		return nil, fmt.Errorf("treeservice: tree %s: %w", slug, err)
	}
	metrics.LayoutObserved(time.Since(started))
	metrics.TreeRequest(metrics.CacheMiss)

	if raw, err := json.Marshal(view); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.opts.CacheTTL); err != nil {
			s.logger.Warn("treeservice: cache set failed", slog.String("error", err.Error()))
		}
	}
	return view, nil
}

// Visible returns the sorted ids shown when the tree starts at rootID:
// the root, its descendants and their spouses.
func (s *Service) Visible(_ context.Context, slug, rootID string) ([]string, error) {
	v, err := s.family(slug)
	if err != nil {
		return nil, err
	}
	root, err := v.pick(rootID)
	if err != nil {
		return nil, err
	}
	return v.data().TreeVisible(root.ID, s.opts.ExcludePrivate).Sorted(), nil
}
