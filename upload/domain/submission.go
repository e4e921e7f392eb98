package domain

import "io"

// Limites aplicados pelo servidor. O formulário no navegador repete as mesmas
// checagens, mas quem decide é o servidor.
const (
	ContentTypePDF  = "application/pdf"
	MaxFileSize     = int64(10 * 1024 * 1024) // 10 MiB
	MaxNameLength   = 100
	DefaultBucket   = "job-applications"
	PathPrefix      = "applications/"
	FallbackFirst   = "First"
	FallbackLast    = "Last"
	PDFMagic        = "%PDF-"
	FieldFile       = "file"
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldHoneypot   = "website"
	StoredExtension = ".pdf"
)

// Submission é o payload transitório de um envio. Nunca é persistido como
// registro próprio: vira diretamente um objeto no bucket.
type Submission struct {
	FirstName string
	LastName  string
	// Website é o campo honeypot, escondido de humanos.
	Website string
	// File é nil quando o campo "file" não veio no formulário.
	File *Attachment
	// Truncated indica que o corpo passou do teto antes do fim do formulário.
	// Os campos lidos até ali continuam valendo.
	Truncated bool
}

// Attachment é o arquivo como declarado pelo cliente. ContentType e Size
// vêm do multipart e só são confiáveis depois da checagem de assinatura.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Receipt é o resultado de um envio aceito.
type Receipt struct {
	// Path é vazio quando o envio foi descartado pelo honeypot.
	Path string
}
