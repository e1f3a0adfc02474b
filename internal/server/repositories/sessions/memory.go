package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/jonboulle/clockwork"
)

const backendMemory = "memory"

// MemoryRepository keeps sessions in a bigcache instance. Entries are evicted
// by bigcache after the life window; the stored ExpiresAt is checked on every
// read so expiry is exact regardless of eviction timing.
type MemoryRepository struct {
	cache *bigcache.BigCache
	clock clockwork.Clock
}

// NewMemoryRepository builds an in-process store whose entries live at most ttl.
func NewMemoryRepository(ctx context.Context, ttl time.Duration, clock clockwork.Clock) (*MemoryRepository, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Verbose = false

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &MemoryRepository{cache: cache, clock: clock}, nil
}

func (m *MemoryRepository) Get(ctx context.Context, id string) (s *models.Session, err error) {
	defer func() { observe(backendMemory, "get", err) }()

	raw, err := m.cache.Get(id)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}

	s = &models.Session{}
	if err = json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Expired(m.clock.Now()) {
		_ = m.cache.Delete(id)
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (m *MemoryRepository) Save(ctx context.Context, s *models.Session) (err error) {
	defer func() { observe(backendMemory, "save", err) }()

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return m.cache.Set(s.ID, raw)
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) (err error) {
	defer func() { observe(backendMemory, "delete", err) }()

	err = m.cache.Delete(id)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		err = nil
	}
	return err
}

// Close stops the cache's cleanup goroutine.
func (m *MemoryRepository) Close() error {
	return m.cache.Close()
}
