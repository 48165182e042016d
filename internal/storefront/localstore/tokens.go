package localstore

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Chichimokers/storefront/pkg/storesdk"
)

// Tokens adapts the snapshot store to storesdk.TokenStore. Malformed stored
// data is treated as absent: the client starts unauthenticated and the bad
// snapshot is overwritten on the next save.
type Tokens struct {
	store *Store
	log   *slog.Logger
}

func NewTokens(store *Store, log *slog.Logger) *Tokens {
	return &Tokens{store: store, log: log}
}

func (t *Tokens) Load() (storesdk.TokenPair, bool) {
	raw, ok, err := t.store.Get(context.Background(), KeyTokens)
	if err != nil {
		t.log.Warn("failed to read stored tokens", "error", err)
		return storesdk.TokenPair{}, false
	}
	if !ok {
		return storesdk.TokenPair{}, false
	}

	var pair storesdk.TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil || pair.Access == "" && pair.Refresh == "" {
		t.log.Warn("stored tokens are malformed, treating as absent")
		return storesdk.TokenPair{}, false
	}
	return pair, true
}

func (t *Tokens) Save(pair storesdk.TokenPair) error {
	raw, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	return t.store.Put(context.Background(), KeyTokens, raw)
}

func (t *Tokens) Clear() error {
	return t.store.Delete(context.Background(), KeyTokens)
}
