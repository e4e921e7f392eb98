// utilitário pequeno para formatação consistente de headers do rate limit.

package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"
)

// SetRetryAfter escreve Retry-After em segundos inteiros, arredondando para cima.
// Nunca escreve 0: quem foi bloqueado deve esperar pelo menos 1s.
func SetRetryAfter(w http.ResponseWriter, d time.Duration) {
	if d <= 0 {
		return
	}
	w.Header().Set("Retry-After", formatInt(int(math.Ceil(d.Seconds()))))
}

// SetRemaining escreve X-RateLimit-Remaining.
func SetRemaining(w http.ResponseWriter, n int) {
	if n < 0 {
		n = 0
	}
	w.Header().Set("X-RateLimit-Remaining", formatInt(n))
}

func formatInt(v int) string { return strconv.Itoa(v) }
