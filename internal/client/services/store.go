package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/kvstore"
	"github.com/dmitrijs2005/dragoncontacts/internal/common"
)

// loadJSON decodes the collection stored under key into a fresh slice.
// An absent key yields an empty slice; undecodable data is
// a *common.StoredDataError matching common.ErrMalformedStoredData.
func loadJSON[T any](ctx context.Context, st kvstore.Store, key string) ([]T, error) {
	raw, err := st.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	items := []T{}
	if raw == nil {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &common.StoredDataError{Key: key, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// saveJSON stores items under key as one JSON document.
func saveJSON[T any](ctx context.Context, st kvstore.Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := st.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
