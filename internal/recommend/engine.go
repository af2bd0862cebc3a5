package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/susume/internal/catalog"
	"github.com/hyperjump/susume/internal/config"
	"github.com/hyperjump/susume/internal/embedding"
	"github.com/hyperjump/susume/internal/models"
	"github.com/hyperjump/susume/internal/title"
	"github.com/hyperjump/susume/internal/vector"
)

// snapshot bundles a catalog with the store and resolver built from it.
// Snapshots are immutable; Rebuild swaps in a fresh one so in-flight
// queries finish against a consistent view.
type snapshot struct {
	items    []*models.MediaItem
	byID     map[string]*models.MediaItem
	store    *vector.Store
	resolver *title.Resolver
}

// Engine serves recommendations over the current catalog snapshot.
type Engine struct {
	embedder embedding.Embedder
	cfg      *config.RecommendConfig
	logger   *zap.Logger

	mu   sync.RWMutex
	snap *snapshot
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for rebuild and query debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine. The catalog is empty until Rebuild or
// Restore is called.
func NewEngine(embedder embedding.Embedder, cfg *config.RecommendConfig, opts ...EngineOption) *Engine {
	e := &Engine{embedder: embedder, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rebuild encodes the given catalog into a new vector store and swaps it
// in. The old snapshot keeps serving queries until the swap.
func (e *Engine) Rebuild(ctx context.Context, items []*models.MediaItem, buildOpts *vector.BuildOptions) error {
	start := time.Now()
	store, err := vector.Build(ctx, items, e.embedder, catalog.ProfileText, buildOpts)
	if err != nil {
		return fmt.Errorf("build vector store: %w", err)
	}
	if err := e.swap(items, store); err != nil {
		return err
	}
	if e.logger != nil {
		e.logger.Info("catalog rebuilt",
			zap.Int("items", len(items)),
			zap.Int("dimensions", store.Dimensions()),
			zap.Duration("took", time.Since(start)),
		)
	}
	return nil
}

// Restore installs a previously saved store for the given catalog. The
// store must cover exactly the catalog's items with the embedder's
// dimensionality; any skew is an error and the caller should Rebuild.
func (e *Engine) Restore(items []*models.MediaItem, store *vector.Store) error {
	if store.Size() != len(items) {
		return fmt.Errorf("stored index has %d vectors for %d catalog items; rebuild required", store.Size(), len(items))
	}
	if dims := e.embedder.Dimensions(); dims > 0 && store.Dimensions() != dims {
		return &vector.DimensionMismatchError{Want: dims, Got: store.Dimensions()}
	}
	for _, item := range items {
		if !store.Contains(item.ID) {
			return fmt.Errorf("stored index missing item %s; rebuild required", item.ID)
		}
	}
	return e.swap(items, store)
}

func (e *Engine) swap(items []*models.MediaItem, store *vector.Store) error {
	byID := make(map[string]*models.MediaItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	resolver, err := title.NewResolver(items)
	if err != nil {
		return fmt.Errorf("build title resolver: %w", err)
	}

	next := &snapshot{items: items, byID: byID, store: store, resolver: resolver}
	e.mu.Lock()
	old := e.snap
	e.snap = next
	e.mu.Unlock()
	if old != nil {
		_ = old.resolver.Close()
	}
	return nil
}

func (e *Engine) snapshot() *snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// Store returns the current vector store, or nil before the first build.
// Used for persisting the index after a build.
func (e *Engine) Store() *vector.Store {
	if snap := e.snapshot(); snap != nil {
		return snap.store
	}
	return nil
}

// Size returns the number of items in the current snapshot.
func (e *Engine) Size() int {
	if snap := e.snapshot(); snap != nil {
		return len(snap.items)
	}
	return 0
}

// Dimensions returns the embedding dimensionality of the current snapshot.
func (e *Engine) Dimensions() int {
	if snap := e.snapshot(); snap != nil {
		return snap.store.Dimensions()
	}
	return 0
}

// Recommend resolves the query's subject item and returns ranked matches.
// The subject is looked up by ID when set, otherwise by title. A query with
// a RerollSeed gets a seeded shuffle of near-tied top results; the
// underlying ranking stays deterministic.
func (e *Engine) Recommend(ctx context.Context, q *models.RecommendQuery) (*models.RecommendResponse, error) {
	start := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if q.Limit > e.cfg.MaxLimit {
		q.Limit = e.cfg.MaxLimit
	}
	snap := e.snapshot()
	if snap == nil {
		return nil, fmt.Errorf("catalog not built yet")
	}

	source, err := e.resolveSource(snap, q)
	if err != nil {
		return nil, err
	}

	dedup := e.cfg.DedupFranchiseOrDefault()
	if q.DedupFranchise != nil {
		dedup = *q.DedupFranchise
	}
	opts := Options{}
	if dedup {
		opts.FranchiseKey = FranchiseKey
	}
	results, err := Rank(source.ID, snap.store, snap.items, opts)
	if err != nil {
		return nil, err
	}
	if q.RerollSeed != 0 {
		results = Reroll(results, e.cfg.RerollTopK, e.cfg.RerollEpsilon, q.RerollSeed)
	}

	resp := &models.RecommendResponse{
		Source:    source,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
	}
	if q.GroupByCategory {
		resp.Grouped = make(map[models.Category][]*models.Recommendation)
		for cat, group := range GroupByCategory(results, q.Limit) {
			resp.Grouped[cat] = toRecommendations(group)
		}
	} else {
		if q.Limit > 0 && q.Limit < len(results) {
			results = results[:q.Limit]
		}
		resp.Results = toRecommendations(results)
	}
	return resp, nil
}

func (e *Engine) resolveSource(snap *snapshot, q *models.RecommendQuery) (*models.MediaItem, error) {
	if q.ItemID != "" {
		item, ok := snap.byID[q.ItemID]
		if !ok {
			return nil, fmt.Errorf("item %q: %w", q.ItemID, models.ErrNotFound)
		}
		return item, nil
	}
	return snap.resolver.Resolve(q.Title)
}

func toRecommendations(results []Scored) []*models.Recommendation {
	out := make([]*models.Recommendation, len(results))
	for i, r := range results {
		out[i] = &models.Recommendation{
			Item:         r.Item,
			Score:        r.Score,
			MatchPercent: models.Percent(r.Score),
			Rank:         r.Rank,
		}
	}
	return out
}
