package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"application-portal/middleware/ratelimit/domain"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyFunc(t *testing.T) {
	tests := []struct {
		name          string
		xff           string
		realIP        string
		remoteAddr    string
		useRemoteAddr bool
		want          domain.Key
	}{
		{
			name:   "first XFF entry wins",
			xff:    " 1.2.3.4 , 5.6.7.8",
			realIP: "9.9.9.9",
			want:   "1.2.3.4",
		},
		{
			name:   "empty first XFF entry falls back to X-Real-IP",
			xff:    " , 5.6.7.8",
			realIP: "9.9.9.9",
			want:   "9.9.9.9",
		},
		{
			name:   "X-Real-IP when no XFF",
			realIP: "9.9.9.9",
			want:   "9.9.9.9",
		},
		{
			name:       "no headers ignores RemoteAddr by default",
			remoteAddr: "10.0.0.9:5555",
			want:       domain.UnknownKey,
		},
		{
			name:          "no headers uses RemoteAddr host when enabled",
			remoteAddr:    "10.0.0.9:5555",
			useRemoteAddr: true,
			want:          "10.0.0.9",
		},
		{
			name:          "RemoteAddr without port is used as is",
			remoteAddr:    "10.0.0.9",
			useRemoteAddr: true,
			want:          "10.0.0.9",
		},
		{
			name:          "nothing at all",
			useRemoteAddr: true,
			want:          domain.UnknownKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "http://example/upload", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}

			assert.Equal(t, tt.want, DefaultKeyFunc(tt.useRemoteAddr)(r))
		})
	}
}
