package infra

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"application-portal/upload/domain"
)

// StoredObject é uma cópia do que foi gravado.
type StoredObject struct {
	Data        []byte
	ContentType string
	StoredAt    time.Time
}

// MemoryStore guarda objetos num mapa. Não tem limite de tamanho.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]StoredObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]StoredObject)}
}

func (m *MemoryStore) Put(ctx context.Context, path string, data []byte, opts domain.PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[path]; ok && !opts.Overwrite {
		return errors.Wrapf(domain.ErrObjectExists, "memory: %s", path)
	}
	m.objects[path] = StoredObject{
		Data:        slices.Clone(data),
		ContentType: opts.ContentType,
		StoredAt:    time.Now(),
	}
	return nil
}

func (m *MemoryStore) Get(path string) (StoredObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[path]
	return obj, ok
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Paths devolve os caminhos gravados em ordem lexical (= ordem de chegada,
// já que começam pelo timestamp).
func (m *MemoryStore) Paths() []string {
	m.mu.RLock()
	paths := lo.Keys(m.objects)
	m.mu.RUnlock()

	slices.Sort(paths)
	return paths
}
