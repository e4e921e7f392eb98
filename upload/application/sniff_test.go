package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPDFSignature(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"real header", []byte("%PDF-1.7\n%âãÏÓ\n"), true},
		{"exactly the magic", []byte("%PDF-"), true},
		{"too short", []byte("%PDF"), false},
		{"missing dash", []byte("%PDF1.4"), false},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, false},
		{"leading whitespace", []byte(" %PDF-1.4"), false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPDFSignature(tt.data))
		})
	}
}

func TestDetectedType(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D}
	assert.Equal(t, "image/png", detectedType(png))
	assert.Equal(t, "unknown", detectedType([]byte("just some text")))
}
