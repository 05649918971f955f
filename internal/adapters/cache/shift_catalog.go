package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/shift"
)

// ShiftCatalog は shift.Catalog のリードスルーキャッシュです。シフト定義は
// 不変の参照データなので無効化は不要で、LRU による追い出しのみ行います。
type ShiftCatalog struct {
	inner shift.Catalog
	cache *lru.Cache[string, *shift.Shift]
}

// NewShiftCatalog は ShiftCatalog を生成します。
func NewShiftCatalog(inner shift.Catalog, size int) (*ShiftCatalog, error) {
	cache, err := lru.New[string, *shift.Shift](size)
	if err != nil {
		return nil, err
	}
	return &ShiftCatalog{inner: inner, cache: cache}, nil
}

// FindByID はキャッシュ経由でシフト定義を取得します。
func (c *ShiftCatalog) FindByID(ctx context.Context, id string) (*shift.Shift, error) {
	if cached, ok := c.cache.Get(id); ok {
		return cached, nil
	}

	found, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.cache.Add(id, found)
	return found, nil
}

// List はキャッシュを介さず一覧を取得し、取得結果をキャッシュへ流し込みます。
func (c *ShiftCatalog) List(ctx context.Context) ([]*shift.Shift, error) {
	shifts, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, s := range shifts {
		c.cache.Add(s.ID, s)
	}

	return shifts, nil
}
