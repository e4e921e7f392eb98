// Package domain define contratos e tipos de domínio para rate limit e concorrência.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e trocar o backend do limiter
// (memória, Redis) sem tocar no endpoint de envio.
package domain
