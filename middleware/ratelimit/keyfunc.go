package ratelimit

import (
	"net"
	"net/http"
	"strings"

	"application-portal/middleware/ratelimit/domain"
)

// KeyFunc extrai do request a chave do cliente usada pelo limiter.
type KeyFunc func(r *http.Request) domain.Key

// DefaultKeyFunc resolve a chave do cliente nesta ordem:
//
//  1. primeiro IP do X-Forwarded-For (cliente original)
//  2. X-Real-IP
//  3. host do RemoteAddr, só quando useRemoteAddr=true
//  4. "unknown"
//
// Sem o passo 3, todo tráfego direto (ou com headers removidos) cai no mesmo bucket.
func DefaultKeyFunc(useRemoteAddr bool) KeyFunc {
	return func(r *http.Request) domain.Key {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return domain.Key(ip)
			}
		}

		if v := strings.TrimSpace(r.Header.Get("X-Real-IP")); v != "" {
			return domain.Key(v)
		}

		if useRemoteAddr {
			addr := strings.TrimSpace(r.RemoteAddr)
			host, _, err := net.SplitHostPort(addr)
			if err == nil && host != "" {
				return domain.Key(host)
			}
			if addr != "" {
				return domain.Key(addr)
			}
		}

		return domain.UnknownKey
	}
}
