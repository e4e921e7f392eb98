package domain

import "context"

// SlotPool limita quantos envios são processados ao mesmo tempo.
// Cada envio em andamento pode manter até 10 MiB em memória.
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar e retorna
// uma função de release que deve ser chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
