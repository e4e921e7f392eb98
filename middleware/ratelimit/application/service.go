package application

import (
	"context"
	"time"

	"application-portal/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
// Equivale ao contrato admit(clientId) -> bool: Decision.Allowed é o booleano.
type Service struct {
	Store domain.LimiterStore
	// Now permite controlar o relógio em testes. Padrão: time.Now.
	Now func() time.Time
	// Stats recebe cada decisão (best-effort). Opcional.
	Stats domain.StatsStore
	// Method/Path rotulam os eventos gravados em Stats.
	Method string
	Path   string
}

func (s Service) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if s.Store == nil {
		return domain.Decision{Allowed: true}, nil
	}
	if key == "" {
		key = domain.UnknownKey
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	lim := s.Store.Get(key)
	if lim == nil {
		return domain.Decision{Allowed: true}, nil
	}

	dec, err := lim.Admit(ctx, now)
	if err != nil {
		return domain.Decision{}, err
	}

	if s.Stats != nil {
		_ = s.Stats.Record(ctx, domain.StatsEvent{
			Key:     key,
			Allowed: dec.Allowed,
			Method:  s.Method,
			Path:    s.Path,
			At:      now,
		})
	}
	return dec, nil
}
