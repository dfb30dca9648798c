package snapshot

import (
	"sync"
	"time"

	"sjsage522/contestharvester/internal/crawler"
	"sjsage522/contestharvester/services/cache"
	"sjsage522/contestharvester/services/publisher"
)

// MockHarvester returns canned records and counts calls
type MockHarvester struct {
	source  string
	records []crawler.ListingRecord
	err     error
	calls   int
}

var _ crawler.Harvester = (*MockHarvester)(nil)

func (m *MockHarvester) Harvest() ([]crawler.ListingRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *MockHarvester) GetName() string {
	return "MockHarvester"
}

func (m *MockHarvester) GetSource() string {
	return m.source
}

// MockPublisher keeps every published message per source
type MockPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
	err      error
}

var _ publisher.Publisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{messages: make(map[string][][]byte)}
}

func (m *MockPublisher) Publish(source string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages[source] = append(m.messages[source], append([]byte(nil), message...))
	return nil
}

func (m *MockPublisher) TrimStreams() error {
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// MockLocker records lock calls. held makes Acquire refuse, err makes it fail.
type MockLocker struct {
	mu       sync.Mutex
	held     bool
	err      error
	acquired []string
	released []string
}

var _ cache.Locker = (*MockLocker)(nil)

func (m *MockLocker) Acquire(key, owner string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.held {
		return false, nil
	}
	m.acquired = append(m.acquired, key)
	return true, nil
}

func (m *MockLocker) Release(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = append(m.released, key)
	return nil
}
