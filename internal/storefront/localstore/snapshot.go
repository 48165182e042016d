package localstore

import "context"

// Snapshot scopes the store to a single key, for callers that persist one
// opaque blob (the cart keeps its whole line-item set under one key).
type Snapshot struct {
	store *Store
	key   string
}

func NewSnapshot(store *Store, key string) *Snapshot {
	return &Snapshot{store: store, key: key}
}

func (s *Snapshot) Load() ([]byte, bool) {
	raw, ok, err := s.store.Get(context.Background(), s.key)
	if err != nil || !ok {
		return nil, false
	}
	return raw, true
}

func (s *Snapshot) Save(raw []byte) error {
	return s.store.Put(context.Background(), s.key, raw)
}

func (s *Snapshot) Clear() error {
	return s.store.Delete(context.Background(), s.key)
}
