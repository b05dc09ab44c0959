// Package treeservice holds the parsed GEDCOM sources and answers every
// family tree query made by the API, the MCP server and the CLI.
package treeservice

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/shajara/internal/cache"
	"github.com/starford/shajara/internal/gedcom"
	"github.com/starford/shajara/internal/index"
	"github.com/starford/shajara/internal/models"
	"github.com/starford/shajara/internal/storage"
	"github.com/starford/shajara/internal/treeview"
)

// Source event kinds passed to a Notifier.
const (
	EventLoaded  = "loaded"
	EventFailed  = "failed"
	EventRemoved = "removed"
)

// Default limits applied when Options leaves them unset.
const (
	DefaultMaxDepthLimit = 64
	DefaultSearchLimit   = 20
	loadConcurrency      = 4
)

// Notifier receives source lifecycle events.
type Notifier interface {
	PublishSourceEvent(kind string, status models.SourceStatus)
}

// Family is one configured family tree: a root individual inside a source.
type Family struct {
	Slug        string
	DisplayName string
	Source      string
	RootID      string
}

// Options configures a Service.
type Options struct {
	Families []Family
	// DefaultDepth is used for tree requests that give no depth.
	DefaultDepth int
	// MaxDepthLimit caps the depth a caller may request.
	MaxDepthLimit  int
	ExcludePrivate bool
	CacheTTL       time.Duration
	Notifier       Notifier
}

// snapshot is one immutable parse of a source file.
type snapshot struct {
	meta       models.SourceMetadata
	data       *gedcom.Data
	generation string
	loadedAt   time.Time
}

// sourceState tracks the current snapshot of a source and its last error.
type sourceState struct {
	snap *snapshot
	err  string
}

// Service coordinates storage, the person index and the layout cache.
type Service struct {
	store  storage.Provider
	db     index.PersonIndex
	cache  cache.Cache
	logger *slog.Logger
	opts   Options

	mu      sync.RWMutex
	sources map[string]*sourceState
}

// NewService creates a new tree service. db and c may be nil.
func NewService(store storage.Provider, db index.PersonIndex, c cache.Cache, logger *slog.Logger, opts Options) *Service {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultDepth <= 0 {
		opts.DefaultDepth = treeview.DefaultMaxDepth
	}
	if opts.MaxDepthLimit <= 0 {
		opts.MaxDepthLimit = DefaultMaxDepthLimit
	}
	if opts.DefaultDepth > opts.MaxDepthLimit {
		opts.DefaultDepth = opts.MaxDepthLimit
	}
	for i := range opts.Families {
		opts.Families[i].Slug = strings.ToLower(opts.Families[i].Slug)
	}
	return &Service{
		store:   store,
		db:      db,
		cache:   c,
		logger:  logger,
		opts:    opts,
		sources: make(map[string]*sourceState),
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
