package storage

import (
	"context"
	"sync"
)

// MemoryStore 进程内存储，进程退出即丢失；测试可用 FailWrites 模拟存储故障
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	writeErr error
	writes   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return Unavailable("set", key, s.writeErr)
	}
	s.data[key] = append([]byte(nil), data...)
	s.writes++
	return nil
}

// FailWrites 之后的 Set 都返回 err；传 nil 恢复
func (s *MemoryStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Writes 成功写入次数
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
