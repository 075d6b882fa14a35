package services

import (
	"context"
	"fmt"
	"sync"

	"catalog-admin/models"
	"catalog-admin/repositories"

	"github.com/sirupsen/logrus"
)

const DefaultPageSize = 10

type Keyed interface {
	Key() string
}

type Page[T any] struct {
	Items []T             `json:"items"`
	Meta  models.MetaData `json:"meta"`
}

// ListView pages over a full remote collection held in the collection cache.
// Edits are applied to the cached copy instead of refetching.
type ListView[T Keyed] struct {
	key      string
	cache    repositories.CollectionCache
	fetch    func(ctx context.Context) ([]T, error)
	remove   func(ctx context.Context, id string) error
	pageSize int
	log      logrus.FieldLogger

	mu sync.Mutex
}

type ListViewConfig[T Keyed] struct {
	Key      string
	Cache    repositories.CollectionCache
	Fetch    func(ctx context.Context) ([]T, error)
	Remove   func(ctx context.Context, id string) error
	PageSize int
	Logger   logrus.FieldLogger
}

func NewListView[T Keyed](cfg ListViewConfig[T]) *ListView[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &ListView[T]{
		key:      cfg.Key,
		cache:    cfg.Cache,
		fetch:    cfg.Fetch,
		remove:   cfg.Remove,
		pageSize: cfg.PageSize,
		log:      cfg.Logger.WithField("collection", cfg.Key),
	}
}

// Page returns the 1-based page. Pages past the end are empty.
func (v *ListView[T]) Page(ctx context.Context, page int) (Page[T], error) {
	if page < 1 {
		page = 1
	}

	v.mu.Lock()
	items, err := v.load(ctx, false)
	v.mu.Unlock()
	if err != nil {
		return Page[T]{}, err
	}

	total := len(items)
	start := (page - 1) * v.pageSize
	end := start + v.pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items: append([]T{}, items[start:end]...),
		Meta: models.MetaData{
			Page:       page,
			Limit:      v.pageSize,
			TotalItems: total,
			TotalPages: (total + v.pageSize - 1) / v.pageSize,
		},
	}, nil
}

func (v *ListView[T]) All(ctx context.Context) ([]T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.load(ctx, false)
}

// Refresh drops the cached collection and refetches it. A failed refetch
// leaves nothing cached, so the next read goes remote again.
func (v *ListView[T]) Refresh(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.cache.Delete(ctx, v.key); err != nil {
		v.log.WithError(err).Warn("collection cache delete failed")
	}
	_, err := v.load(ctx, true)
	return err
}

// Delete removes id remotely and then from the cached collection.
func (v *ListView[T]) Delete(ctx context.Context, id string) error {
	if err := v.remove(ctx, id); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	var items []T
	found, err := v.cache.Get(ctx, v.key, &items)
	if err != nil || !found {
		return nil
	}
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if item.Key() != id {
			kept = append(kept, item)
		}
	}
	v.store(ctx, kept)
	return nil
}

// Apply upserts an edit result. New entities go first.
func (v *ListView[T]) Apply(ctx context.Context, entity T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var items []T
	found, err := v.cache.Get(ctx, v.key, &items)
	if err != nil || !found {
		return
	}
	for i, item := range items {
		if item.Key() == entity.Key() {
			items[i] = entity
			v.store(ctx, items)
			return
		}
	}
	v.store(ctx, append([]T{entity}, items...))
}

func (v *ListView[T]) load(ctx context.Context, force bool) ([]T, error) {
	if !force {
		var items []T
		found, err := v.cache.Get(ctx, v.key, &items)
		if err != nil {
			v.log.WithError(err).Warn("collection cache read failed")
		} else if found {
			return items, nil
		}
	}

	items, err := v.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", v.key, err)
	}
	if items == nil {
		items = []T{}
	}
	v.store(ctx, items)
	return items, nil
}

func (v *ListView[T]) store(ctx context.Context, items []T) {
	if err := v.cache.Set(ctx, v.key, items); err != nil {
		v.log.WithError(err).Warn("collection cache write failed")
	}
}
