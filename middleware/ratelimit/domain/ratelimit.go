package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

// Key identifica o cliente (ex: IP extraído de X-Forwarded-For).
type Key string

// UnknownKey é a chave usada quando nenhum header de origem está presente.
// Todo tráfego sem proxy (ou com headers removidos) compartilha este bucket.
const UnknownKey Key = "unknown"

// Limiter decide se mais um envio é permitido agora para uma única chave.
//
// A implementação é uma janela deslizante: guarda os instantes das chamadas
// admitidas e descarta, a cada verificação, os que já saíram da janela.
// Uma chamada rejeitada não é registrada.
type Limiter interface {
	Admit(ctx context.Context, now time.Time) (Decision, error)
}

// LimiterStore obtém um limiter por chave (ex: IP, API key, usuário).
// A implementação pode manter cache em memória ou delegar para Redis.
type LimiterStore interface {
	Get(Key) Limiter
}

// Window descreve a regra aplicada: no máximo Max chamadas admitidas
// em qualquer intervalo móvel de duração Size.
type Window struct {
	Max  int
	Size time.Duration
}

type Decision struct {
	Allowed bool
	// Remaining é quantas chamadas ainda cabem na janela após esta decisão.
	Remaining int
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
