package reference

import (
	"context"
	"fmt"
	"sort"

	"github.com/slok/blendeval/internal/log"
	"github.com/slok/blendeval/internal/model"
	"github.com/slok/blendeval/internal/storage"
)

// Attributes is the whitelist of reference item attributes sent to the optimizer.
// Items missing any of them get a zero value, never an absent key.
var Attributes = []string{"fe", "sio2", "al2o3", "p", "s", "h2o", "loi", "price"}

// ResolverConfig is the configuration for the resolver.
type ResolverConfig struct {
	Repository storage.ReferenceRepository
	Logger     log.Logger
}

func (c *ResolverConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "reference.Resolver"})

	return nil
}

// Resolver resolves reference item IDs into names and attributes, it never mutates the store.
type Resolver struct {
	repo   storage.ReferenceRepository
	logger log.Logger
}

// NewResolver returns a new resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Resolver{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Names returns the display names of the found IDs.
func (r *Resolver) Names(ctx context.Context, ids []int64) (map[int64]string, error) {
	items, err := r.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(items))
	for _, item := range items {
		names[item.ID] = item.Name
	}

	return names, nil
}

// Attributes returns the attribute projection of the found IDs.
func (r *Resolver) Attributes(ctx context.Context, ids []int64) (map[int64]*model.Row, error) {
	items, err := r.lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	attrs := make(map[int64]*model.Row, len(items))
	for _, item := range items {
		attrs[item.ID] = Project(item)
	}

	return attrs, nil
}

// Project returns the whitelisted attributes of an item.
func Project(item model.ReferenceItem) *model.Row {
	row := model.NewRow().
		Set("id", model.Int(item.ID)).
		Set("name", model.String(item.Name))
	for _, attr := range Attributes {
		row.Set(attr, model.Number(item.Composition[attr]))
	}
	return row
}

func (r *Resolver) lookup(ctx context.Context, ids []int64) ([]model.ReferenceItem, error) {
	ids = Distinct(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	items, err := r.repo.GetReferenceItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("could not get reference items: %w", err)
	}

	if len(items) != len(ids) {
		r.logger.Debugf("resolved %d of %d reference items", len(items), len(ids))
	}

	return items, nil
}

// Distinct returns the sorted distinct IDs.
func Distinct(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
