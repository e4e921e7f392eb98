package application

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"application-portal/upload/domain"
)

// applicant carrega os nomes já aparados. max conta caracteres (runas), não bytes.
type applicant struct {
	FirstName string `validate:"required,max=100"`
	LastName  string `validate:"required,max=100"`
}

// validateNames aplica as regras na ordem do pipeline: primeiro presença dos
// dois nomes, depois tamanho.
func validateNames(v *validator.Validate, first, last string) error {
	err := v.Struct(applicant{FirstName: first, LastName: last})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewUnexpectedError(err)
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return domain.NewValidationError(domain.MsgNamesRequired)
		}
	}
	return domain.NewValidationError(domain.MsgNamesTooLong)
}

// validateAttachment confere o que o cliente declarou: presença, tipo e tamanho.
// Num corpo truncado, o arquivo ausente ou incompleto conta como grande demais.
func validateAttachment(file *domain.Attachment, truncated bool) error {
	switch {
	case file == nil && truncated:
		return domain.NewValidationError(domain.MsgTooLarge)
	case file == nil:
		return domain.NewValidationError(domain.MsgNoFile)
	case file.ContentType != domain.ContentTypePDF:
		return domain.NewValidationError(domain.MsgNotPDF)
	case file.Size > domain.MaxFileSize, truncated:
		return domain.NewValidationError(domain.MsgTooLarge)
	}
	return nil
}
