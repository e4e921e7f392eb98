package domain

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// Categorias de erro do pipeline de envio. Cada erro retornado pelo pipeline
// é marcado (errors.Mark) com exatamente uma delas e carrega, como hint, a
// mensagem que pode ser mostrada ao usuário.
var (
	ErrConfiguration = errors.New("upload: server configuration missing")
	ErrThrottled     = errors.New("upload: client throttled")
	ErrValidation    = errors.New("upload: invalid submission")
	ErrStorage       = errors.New("upload: object store failure")
	ErrUnexpected    = errors.New("upload: unexpected failure")

	statusByKind = []struct {
		ref    error
		kind   string
		status int
	}{
		{ErrConfiguration, "configuration", http.StatusInternalServerError},
		{ErrThrottled, "throttled", http.StatusTooManyRequests},
		{ErrValidation, "validation", http.StatusBadRequest},
		{ErrStorage, "storage", http.StatusInternalServerError},
		{ErrUnexpected, "unexpected", http.StatusInternalServerError},
	}
)

// Mensagens públicas (corpo {"error": ...}).
const (
	MsgConfiguration = "Server configuration error. Please contact the administrator."
	MsgThrottled     = "Too many submissions. Please try again later."
	MsgNamesRequired = "First name and last name are required."
	MsgNamesTooLong  = "First name and last name must not exceed 100 characters each."
	MsgNoFile        = "No file provided."
	MsgNotPDF        = "Only PDF files are accepted."
	MsgTooLarge      = "File size must not exceed 10 MB."
	MsgBadSignature  = "Invalid file. Only PDF files are accepted."
	MsgUploadFailed  = "Upload failed. Please try again."
	MsgUnexpected    = "An unexpected error occurred. Please try again."
	MsgBusy          = "Server is busy. Please try again."
)

func NewConfigurationError(detail string) error {
	err := errors.Newf("storage not configured: %s", detail)
	return errors.Mark(errors.WithHint(err, MsgConfiguration), ErrConfiguration)
}

func NewThrottleError() error {
	return errors.Mark(errors.WithHint(errors.New("rate limit exceeded"), MsgThrottled), ErrThrottled)
}

// NewValidationError cria um erro 400 cuja mensagem pública é msg.
func NewValidationError(msg string) error {
	return errors.Mark(errors.WithHint(errors.New(msg), msg), ErrValidation)
}

func NewStorageError(cause error) error {
	err := errors.Wrap(cause, "store object")
	return errors.Mark(errors.WithHint(err, MsgUploadFailed), ErrStorage)
}

func NewUnexpectedError(cause error) error {
	err := errors.Wrap(cause, "unexpected")
	return errors.Mark(errors.WithHint(err, MsgUnexpected), ErrUnexpected)
}

// Kind devolve o nome da categoria do erro (usado em logs e métricas).
// Erros sem categoria são "unexpected".
func Kind(err error) string {
	for _, k := range statusByKind {
		if errors.Is(err, k.ref) {
			return k.kind
		}
	}
	return "unexpected"
}

// HTTPStatus mapeia a categoria do erro para o status HTTP.
func HTTPStatus(err error) int {
	for _, k := range statusByKind {
		if errors.Is(err, k.ref) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// PublicMessage devolve a mensagem segura para o cliente. Detalhes internos
// (ex.: diagnóstico do provedor de storage) nunca aparecem aqui.
func PublicMessage(err error) string {
	if Kind(err) == "unexpected" {
		return MsgUnexpected
	}
	hints := errors.GetAllHints(err)
	if len(hints) == 0 {
		return MsgUnexpected
	}
	return hints[len(hints)-1]
}
