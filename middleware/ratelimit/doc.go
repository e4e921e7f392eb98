// Package ratelimit fornece a cola HTTP (net/http) do rate limit de envios.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela deslizante em memória ou Redis, semáforo)
//   - ratelimit (este pacote): extração da chave do cliente, headers e middleware de concorrência
//
// Fluxo no endpoint de envio (pacote upload):
//
//  1. Extrai a chave do cliente (X-Forwarded-For / X-Real-IP / "unknown")
//  2. Chama a camada application para obter a decisão
//  3. Se bloqueado, responde 429 com Retry-After
//  4. Se permitido, segue para a validação do formulário
//
// O limiter não é um middleware: a verificação de configuração do storage
// precisa acontecer antes dele.
package ratelimit
