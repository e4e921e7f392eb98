package application

import (
	"bytes"

	"application-portal/upload/domain"

	"github.com/h2non/filetype"
)

// HasPDFSignature confere os magic bytes: os 5 primeiros bytes devem ser "%PDF-".
func HasPDFSignature(data []byte) bool {
	return bytes.HasPrefix(data, []byte(domain.PDFMagic))
}

// detectedType descreve o tipo real do conteúdo, só para log.
func detectedType(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "unknown"
	}
	return kind.MIME.Value
}
