package treeservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/shajara/internal/apperr"
	"github.com/starford/shajara/internal/gedcom"
	"github.com/starford/shajara/internal/index"
	"github.com/starford/shajara/internal/metrics"
	"github.com/starford/shajara/internal/models"
)

// Load parses the source at path and swaps in the new snapshot. An
// unchanged file is left alone. When parsing fails the previous snapshot
// stays in place and the error is kept on the source status.
func (s *Service) Load(ctx context.Context, path string) error {
	meta, err := s.store.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("treeservice: load %s: %w", path, apperr.ErrNotFound)
		}
		return s.fail(path, fmt.Errorf("treeservice: load %s: %w", path, err))
	}
	path = meta.Path

	s.mu.RLock()
	st := s.sources[path]
	unchanged := st != nil && st.snap != nil && st.err == "" && st.snap.meta.Checksum == meta.Checksum
	s.mu.RUnlock()
	if unchanged {
		return nil
	}

	started := time.Now()
	data, err := s.parse(path)
	if err != nil {
		return s.fail(path, fmt.Errorf("treeservice: parse %s: %w", path, err))
	}
	parsed := time.Since(started)

	snap := &snapshot{
		meta:       meta,
		data:       data,
		generation: uuid.NewString(),
		loadedAt:   time.Now(),
	}

	if err := s.indexSnapshot(ctx, snap); err != nil {
		// The tree is still usable without the index.
		s.logger.Warn("treeservice: index failed", slog.String("path", path), slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.sources[path] = &sourceState{snap: snap}
	status := statusOf(path, s.sources[path])
	s.mu.Unlock()

	metrics.SourceLoaded(path, len(data.Individuals), parsed)
	s.logger.Info("treeservice: source loaded",
		slog.String("path", path),
		slog.Int("individuals", len(data.Individuals)),
		slog.Int("families", len(data.Families)),
		slog.String("generation", snap.generation),
		slog.Duration("parse", parsed))
	s.notify(EventLoaded, status)
	return nil
}

// Reload is Load under the name the watcher expects.
func (s *Service) Reload(ctx context.Context, path string) error {
	return s.Load(ctx, path)
}

// Remove forgets a source and drops its people from the index.
func (s *Service) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	st, ok := s.sources[path]
	delete(s.sources, path)
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.DeleteSource(ctx, path); err != nil {
			return fmt.Errorf("treeservice: remove %s: %w", path, err)
		}
	}
	if !ok {
		return nil
	}

	metrics.SourceRemoved(path)
	s.logger.Info("treeservice: source removed", slog.String("path", path))
	s.notify(EventRemoved, statusOf(path, st))
	return nil
}

// Reconcile brings the loaded sources in line with the sources directory:
// vanished files are removed and new or changed files are loaded. Load
// failures are logged and recorded per source; only a failure to list the
// directory is returned.
func (s *Service) Reconcile(ctx context.Context) error {
	metas, err := s.store.List("")
	if err != nil {
		return fmt.Errorf("treeservice: reconcile: %w", err)
	}
	onDisk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		onDisk[m.Path] = struct{}{}
	}

	s.mu.RLock()
	var stale []string
	for p := range s.sources {
		if _, ok := onDisk[p]; !ok {
			stale = append(stale, p)
		}
	}
	s.mu.RUnlock()

	for _, p := range stale {
		if err := s.Remove(ctx, p); err != nil {
			s.logger.Warn("treeservice: remove stale failed", slog.String("path", p), slog.String("error", err.Error()))
		}
	}
	if err := s.pruneIndex(ctx, onDisk); err != nil {
		s.logger.Warn("treeservice: prune index failed", slog.String("error", err.Error()))
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, m := range metas {
		g.Go(func() error {
			if err := s.Load(gCtx, m.Path); err != nil {
				s.logger.Warn("treeservice: load failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			}
			return nil
		})
	}
	return g.Wait()
}

// Sync performs the initial load of every source and logs a summary.
func (s *Service) Sync(ctx context.Context) error {
	start := time.Now()
	if err := s.Reconcile(ctx); err != nil {
		return err
	}
	sources := s.Sources()
	failed := 0
	for _, st := range sources {
		if st.Error != "" {
			failed++
		}
	}
	s.logger.Info("treeservice: sync complete",
		slog.Int("sources", len(sources)),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Sources returns the status of every known source, sorted by path.
func (s *Service) Sources() []models.SourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SourceStatus, 0, len(s.sources))
	for p, st := range s.sources {
		out = append(out, statusOf(p, st))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Data returns the current parse of a source.
func (s *Service) Data(path string) (*gedcom.Data, error) {
	snap, err := s.snapshot(path)
	if err != nil {
		return nil, err
	}
	return snap.data, nil
}

func (s *Service) snapshot(path string) (*snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sources[path]
	if !ok || st.snap == nil {
		return nil, fmt.Errorf("treeservice: %s: %w", path, apperr.ErrSourceNotLoaded)
	}
	return st.snap, nil
}

func (s *Service) parse(path string) (*gedcom.Data, error) {
	rc, err := s.store.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return gedcom.ParseReader(rc)
}

// indexSnapshot writes the people of snap to the index unless the index
// already holds this exact file.
func (s *Service) indexSnapshot(ctx context.Context, snap *snapshot) error {
	if s.db == nil {
		return nil
	}
	path := snap.meta.Path
	cs, err := s.db.GetChecksum(ctx, path)
	if err != nil {
		return err
	}
	if cs == snap.meta.Checksum {
		return nil
	}
	row := index.SourceRow{
		Path:        path,
		Checksum:    snap.meta.Checksum,
		Individuals: len(snap.data.Individuals),
		Families:    len(snap.data.Families),
		UpdatedAt:   snap.meta.UpdatedAt,
	}
	return s.db.ReplaceSource(ctx, row, index.Rows(path, snap.data))
}

// pruneIndex drops indexed sources whose files are gone.
func (s *Service) pruneIndex(ctx context.Context, onDisk map[string]struct{}) error {
	if s.db == nil {
		return nil
	}
	indexed, err := s.db.AllChecksums(ctx)
	if err != nil {
		return err
	}
	for p := range indexed {
		if _, ok := onDisk[p]; ok {
			continue
		}
		if err := s.db.DeleteSource(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) fail(path string, err error) error {
	s.mu.Lock()
	st, ok := s.sources[path]
	if !ok {
		st = &sourceState{}
		s.sources[path] = st
	}
	st.err = err.Error()
	status := statusOf(path, st)
	s.mu.Unlock()

	metrics.SourceFailed()
	s.logger.Error("treeservice: source failed", slog.String("path", path), slog.String("error", err.Error()))
	s.notify(EventFailed, status)
	return err
}

func (s *Service) notify(kind string, status models.SourceStatus) {
	if s.opts.Notifier != nil {
		s.opts.Notifier.PublishSourceEvent(kind, status)
	}
}

func statusOf(path string, st *sourceState) models.SourceStatus {
	out := models.SourceStatus{SourceMetadata: models.SourceMetadata{Path: path}, Error: st.err}
	if snap := st.snap; snap != nil {
		out.SourceMetadata = snap.meta
		out.Generation = snap.generation
		out.Individuals = len(snap.data.Individuals)
		out.Families = len(snap.data.Families)
		out.LoadedAt = snap.loadedAt
	}
	return out
}
