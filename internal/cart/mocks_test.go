package cart

import (
	"context"
	"errors"
	"sync"
)

type SynchronizerMock struct {
	CreateRemoteLineFunc func(ctx context.Context, username, productID string) (CreateResult, error)
	ListRemoteLinesFunc  func(ctx context.Context, username string) ([]RemoteLine, error)
	DeleteRemoteLineFunc func(ctx context.Context, lineID string) error

	mu      sync.Mutex
	creates []string
	lists   int
	deletes []string
}

func (m *SynchronizerMock) CreateRemoteLine(ctx context.Context, username, productID string) (CreateResult, error) {
	m.mu.Lock()
	m.creates = append(m.creates, productID)
	m.mu.Unlock()
	if m.CreateRemoteLineFunc == nil {
		return CreateResult{Line: RemoteLine{ID: "line-" + productID, ProductID: productID}}, nil
	}
	return m.CreateRemoteLineFunc(ctx, username, productID)
}

func (m *SynchronizerMock) ListRemoteLines(ctx context.Context, username string) ([]RemoteLine, error) {
	m.mu.Lock()
	m.lists++
	m.mu.Unlock()
	if m.ListRemoteLinesFunc == nil {
		return nil, nil
	}
	return m.ListRemoteLinesFunc(ctx, username)
}

func (m *SynchronizerMock) DeleteRemoteLine(ctx context.Context, lineID string) error {
	m.mu.Lock()
	m.deletes = append(m.deletes, lineID)
	m.mu.Unlock()
	if m.DeleteRemoteLineFunc == nil {
		return nil
	}
	return m.DeleteRemoteLineFunc(ctx, lineID)
}

func (m *SynchronizerMock) CreateCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.creates...)
}

func (m *SynchronizerMock) DeleteCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}

type memStorage struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	putErr error
	puts   int
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string][]byte{}}
}

func (s *memStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.data[key], nil
}

func (s *memStorage) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.data[key] = append([]byte(nil), data...)
	return nil
}

var errRemote = errors.New("remote unavailable")
