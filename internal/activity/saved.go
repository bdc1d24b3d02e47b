package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"adminboard/internal/kvstore"
)

const savedFiltersKey = "activity_saved_filters"

var (
	ErrInvalidFilterName = errors.New("activity: filter name is required")
	ErrFilterNotFound    = errors.New("activity: saved filter not found")
)

// SavedFilter is a named Criteria kept for reuse across sessions.
type SavedFilter struct {
	Name      string    `json:"name"`
	Criteria  Criteria  `json:"criteria"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedFilters persists named criteria as one JSON list in the durable store.
type SavedFilters struct {
	store kvstore.Store
	clock func() time.Time

	// mu serializes read-modify-write cycles on the list.
	mu sync.Mutex
}

func NewSavedFilters(store kvstore.Store) *SavedFilters {
	return &SavedFilters{store: store, clock: time.Now}
}

// Save stores c under name, replacing an existing entry with the same name.
func (s *SavedFilters) Save(ctx context.Context, name string, c Criteria) (SavedFilter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SavedFilter{}, ErrInvalidFilterName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return SavedFilter{}, err
	}
	f := SavedFilter{Name: name, Criteria: c, CreatedAt: s.clock().UTC()}
	replaced := false
	for i := range list {
		if list[i].Name == name {
			list[i] = f
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, f)
	}
	if err := s.write(ctx, list); err != nil {
		return SavedFilter{}, err
	}
	return f, nil
}

// List returns saved filters sorted by name.
func (s *SavedFilters) List(ctx context.Context) ([]SavedFilter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (s *SavedFilters) Load(ctx context.Context, name string) (SavedFilter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return SavedFilter{}, err
	}
	name = strings.TrimSpace(name)
	for _, f := range list {
		if f.Name == name {
			return f, nil
		}
	}
	return SavedFilter{}, ErrFilterNotFound
}

func (s *SavedFilters) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	out := list[:0]
	for _, f := range list {
		if f.Name != name {
			out = append(out, f)
		}
	}
	if len(out) == len(list) {
		return ErrFilterNotFound
	}
	return s.write(ctx, out)
}

func (s *SavedFilters) load(ctx context.Context) ([]SavedFilter, error) {
	raw, err := s.store.Get(ctx, savedFiltersKey)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return []SavedFilter{}, nil
		}
		return nil, err
	}
	var list []SavedFilter
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("activity: decode saved filters: %w", err)
	}
	return list, nil
}

func (s *SavedFilters) write(ctx context.Context, list []SavedFilter) error {
	if len(list) == 0 {
		return s.store.Delete(ctx, savedFiltersKey)
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, savedFiltersKey, string(raw))
}
