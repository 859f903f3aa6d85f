package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
)

// MemoryStore keeps objects in process memory. Used for local runs without
// an object store and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: map[string]map[string][]byte{}}
}

func (s *MemoryStore) Put(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = map[string][]byte{}
	}
	s.buckets[bucket][name] = buf.Bytes()
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, bucket, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[bucket][name]; !ok {
		return ErrObjectNotFound
	}
	delete(s.buckets[bucket], name)
	return nil
}

func (s *MemoryStore) EnsureBucket(ctx context.Context, bucket string, public bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = map[string][]byte{}
	}
	return nil
}

// Objects lists the object names in bucket, sorted.
func (s *MemoryStore) Objects(bucket string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.buckets[bucket]))
	for n := range s.buckets[bucket] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
