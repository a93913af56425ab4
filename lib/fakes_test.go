package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

type memStore struct {
	mu    sync.Mutex
	key   string
	items map[string][]byte
	calls int
	err   error
}

func newMemStore(key string) *memStore {
	return &memStore{key: key, items: make(map[string][]byte)}
}

func (m *memStore) call() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func (m *memStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func decodeItem(data []byte) map[string]any {
	item := make(map[string]any)
	err := json.Unmarshal(data, &item)
	if err != nil {
		panic(err)
	}
	return item
}

func (m *memStore) GetItem(_ context.Context, id string) (map[string]any, error) {
	if err := m.call(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return decodeItem(data), nil
}

func (m *memStore) PutItem(_ context.Context, item map[string]any) error {
	if err := m.call(); err != nil {
		return err
	}
	id, ok := item[m.key].(string)
	if !ok {
		return fmt.Errorf("missing key %s", m.key)
	}
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = data
	return nil
}

func (m *memStore) DeleteItem(_ context.Context, id string) error {
	if err := m.call(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *memStore) ScanItems(_ context.Context) ([]map[string]any, error) {
	if err := m.call(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var items []map[string]any
	for _, id := range ids {
		items = append(items, decodeItem(m.items[id]))
	}
	return items, nil
}

func (m *memStore) UpdateItem(_ context.Context, id string, attrs map[string]any) (map[string]any, error) {
	if err := m.call(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	item := decodeItem(data)
	for k, v := range attrs {
		item[k] = v
	}
	data, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	m.items[id] = data
	return decodeItem(data), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []BusEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, event BusEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("event-%d", len(f.events)), nil
}

func strPtr(s string) *string {
	return &s
}
