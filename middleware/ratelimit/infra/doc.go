// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Store: janela deslizante por chave em memória, com janitor
//   - RedisStore: janela deslizante compartilhada (sorted set + Lua)
//   - MemoryStatsStore / RedisStatsStore: contadores de decisões
//   - ChanPool: semáforo simples para limite de envios simultâneos
package infra
