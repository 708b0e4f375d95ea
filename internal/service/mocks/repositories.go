package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SergeiKhy/qrlink/internal/models"
	"github.com/SergeiKhy/qrlink/internal/repository"
)

var ErrInjected = errors.New("injected failure")

// MockLinkRepository implements repository.LinkRepository for testing
type MockLinkRepository struct {
	mu     sync.RWMutex
	links  map[string]*models.Link
	nextID int64

	// CreateErrs returned by Create in order, before real inserts happen
	CreateErrs []error
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{
		links:  make(map[string]*models.Link),
		nextID: 1,
	}
}

func (m *MockLinkRepository) Create(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.CreateErrs) > 0 {
		err := m.CreateErrs[0]
		m.CreateErrs = m.CreateErrs[1:]
		return err
	}

	if _, exists := m.links[link.Code]; exists {
		return repository.ErrCodeExists
	}

	link.ID = m.nextID
	link.CreatedAt = time.Now()
	m.nextID++
	stored := *link
	m.links[link.Code] = &stored
	return nil
}

func (m *MockLinkRepository) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.links[code]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	found := *link
	return &found, nil
}

func (m *MockLinkRepository) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.links[code]; !exists {
		return repository.ErrLinkNotFound
	}
	delete(m.links, code)
	return nil
}

// Put stores a link as is, bypassing encoding
func (m *MockLinkRepository) Put(link *models.Link) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if link.ID == 0 {
		link.ID = m.nextID
		m.nextID++
	}
	stored := *link
	m.links[link.Code] = &stored
}

func (m *MockLinkRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.links)
}

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string]*models.Link

	GetErr error
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		cache: make(map[string]*models.Link),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	link, exists := m.cache[code]
	if !exists {
		return nil, repository.ErrCacheMiss
	}
	return link, nil
}

func (m *MockCacheRepository) Set(ctx context.Context, link *models.Link, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[link.Code] = link
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, code)
	return nil
}

func (m *MockCacheRepository) Has(code string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.cache[code]
	return ok
}

// MockScanRepository implements repository.ScanRepository for testing.
// Duplicate event IDs are ignored like ON CONFLICT DO NOTHING.
type MockScanRepository struct {
	mu       sync.RWMutex
	scans    []*models.ScanEvent
	seen     map[string]bool
	failures int
	calls    int
}

func NewMockScanRepository() *MockScanRepository {
	return &MockScanRepository{seen: make(map[string]bool)}
}

// FailNext makes the next n Record calls fail, n < 0 fails all of them
func (m *MockScanRepository) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

func (m *MockScanRepository) Record(ctx context.Context, scan *models.ScanEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.failures != 0 {
		if m.failures > 0 {
			m.failures--
		}
		return ErrInjected
	}
	if m.seen[scan.EventID] {
		return nil
	}
	m.seen[scan.EventID] = true
	m.scans = append(m.scans, scan)
	return nil
}

func (m *MockScanRepository) Scans() []*models.ScanEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.ScanEvent(nil), m.scans...)
}

func (m *MockScanRepository) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
