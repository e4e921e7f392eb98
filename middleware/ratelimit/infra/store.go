package infra

import (
	"context"
	"sync"
	"time"

	"application-portal/middleware/ratelimit/domain"

	"github.com/samber/lo"
)

// Store é uma implementação de infra baseada em janela deslizante em memória,
// com uma janela por chave e limpeza periódica.
//
// Vale apenas para um processo: várias instâncias não compartilham estado
// (para isso existe RedisStore).
type Store struct {
	mu           sync.Mutex
	entries      map[string]*SlidingWindow
	rule         domain.Window
	cleanupEvery time.Duration
	now          func() time.Time
}

type StoreOption func(*Store)

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// WithClock troca o relógio usado pelo Cleanup (testes).
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(max int, window time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		entries:      make(map[string]*SlidingWindow),
		rule:         domain.Window{Max: max, Size: window},
		cleanupEvery: 10 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Rule() domain.Window { return s.rule }
func (s *Store) CleanupEvery() time.Duration { return s.cleanupEvery }

// Get implementa domain.LimiterStore. O limiter devolvido não prende a janela:
// cada Admit busca a janela da chave de novo, sob o lock do Store.
func (s *Store) Get(key domain.Key) domain.Limiter {
	return storeLimiter{store: s, key: string(key)}
}

type storeLimiter struct {
	store *Store
	key   string
}

func (l storeLimiter) Admit(ctx context.Context, now time.Time) (domain.Decision, error) {
	return l.store.Admit(ctx, l.key, now)
}

// Admit busca (ou cria) a janela da chave e trava a janela antes de soltar o
// Store. Cleanup trava a janela para conferir se está ociosa, então não
// remove uma janela entre a busca e o registro do instante.
func (s *Store) Admit(_ context.Context, key string, now time.Time) (domain.Decision, error) {
	s.mu.Lock()
	w, ok := s.entries[key]
	if !ok {
		w = NewSlidingWindow(s.rule)
		s.entries[key] = w
	}
	w.mu.Lock()
	s.mu.Unlock()
	defer w.mu.Unlock()

	return w.admitLocked(now), nil
}

// Len retorna quantas chaves estão em memória.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup remove chaves cuja janela está vazia no instante atual.
// Uma janela vazia decide igual a uma chave ausente, então nenhuma decisão muda.
func (s *Store) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, w := range s.entries {
		if w.idle(now) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *Store) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context no janitor.
type DoneContext interface {
	Done() <-chan struct{}
}

// SlidingWindow guarda, em ordem, os instantes das chamadas admitidas de uma chave.
type SlidingWindow struct {
	mu     sync.Mutex
	rule   domain.Window
	stamps []time.Time
}

func NewSlidingWindow(rule domain.Window) *SlidingWindow {
	return &SlidingWindow{rule: rule}
}

// Admit implementa domain.Limiter.
//
// Mantém só os instantes t com now-t < janela; se sobrarem Max ou mais,
// rejeita sem registrar now. Caso contrário registra now e admite.
func (w *SlidingWindow) Admit(_ context.Context, now time.Time) (domain.Decision, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.admitLocked(now), nil
}

func (w *SlidingWindow) admitLocked(now time.Time) domain.Decision {
	w.stamps = w.recent(now)

	if len(w.stamps) >= w.rule.Max {
		retry := time.Duration(0)
		if len(w.stamps) > 0 {
			retry = w.stamps[0].Add(w.rule.Size).Sub(now)
		}
		return domain.Decision{Allowed: false, RetryAfter: retry}
	}

	w.stamps = append(w.stamps, now)
	return domain.Decision{Allowed: true, Remaining: w.rule.Max - len(w.stamps)}
}

func (w *SlidingWindow) recent(now time.Time) []time.Time {
	return lo.Filter(w.stamps, func(t time.Time, _ int) bool {
		return now.Sub(t) < w.rule.Size
	})
}

func (w *SlidingWindow) idle(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.recent(now)) == 0
}
