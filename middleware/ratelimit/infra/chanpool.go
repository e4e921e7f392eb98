package infra

import (
	"context"

	"application-portal/middleware/ratelimit/domain"
)

// chanPool é um semáforo baseado em channel: cada envio em andamento ocupa uma posição.
type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um pool com capacidade `max` envios simultâneos.
func NewChanPool(max int) domain.SlotPool {
	return &chanPool{sem: make(chan struct{}, max)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	// ctx já encerrado não deve ganhar vaga, mesmo havendo espaço.
	if ctx.Err() != nil {
		return nil, false
	}
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, true
	case <-ctx.Done():
		return nil, false
	}
}
