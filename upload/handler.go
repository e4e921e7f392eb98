package upload

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"application-portal/middleware/ratelimit"
	"application-portal/upload/application"
	"application-portal/upload/domain"
)

// maxBodyBytes folga de 1 MiB acima do arquivo para os campos de texto e o
// envelope multipart.
const maxBodyBytes = domain.MaxFileSize + 1<<20

type successResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler atende POST /upload.
type Handler struct {
	svc    *application.Service
	keyFn  ratelimit.KeyFunc
	logger *zap.Logger
}

func NewHandler(svc *application.Service, keyFn ratelimit.KeyFunc, logger *zap.Logger) *Handler {
	if keyFn == nil {
		keyFn = ratelimit.DefaultKeyFunc(false)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, keyFn: keyFn, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dec, err := h.svc.Admit(ctx, h.keyFn(r))
	if err != nil {
		ratelimit.SetRetryAfter(w, dec.RetryAfter)
		h.fail(w, r, err)
		return
	}
	if dec.Remaining >= 0 {
		ratelimit.SetRemaining(w, dec.Remaining)
	}

	sub, err := readSubmission(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rec, err := h.svc.Submit(ctx, sub)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	outcome := application.OutcomeStored
	if rec.Path == "" {
		outcome = application.OutcomeDiscarded
	}
	application.SubmissionsTotal.WithLabelValues(outcome).Inc()

	writeJSON(w, http.StatusOK, successResponse{Success: true, Path: rec.Path})
}

// readSubmission lê o formulário parte a parte, na ordem em que chega. Se o
// corpo passar do teto, devolve o que já foi lido com Truncated: os nomes
// continuam sendo checados antes do tamanho.
func readSubmission(w http.ResponseWriter, r *http.Request) (domain.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) && isURLEncoded(r) {
		return readURLEncoded(r)
	}
	if err != nil {
		return domain.Submission{}, domain.NewUnexpectedError(errors.Wrap(err, "read multipart form"))
	}

	values := url.Values{}
	var file *domain.Attachment
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if isBodyTooLarge(err) {
				return submissionFrom(values, file, true), nil
			}
			return domain.Submission{}, domain.NewUnexpectedError(errors.Wrap(err, "next multipart part"))
		}

		name := part.FormName()
		switch {
		case name == "":
			continue
		case name == domain.FieldFile && part.FileName() != "" && file == nil:
			// lê até MaxFileSize+1: o suficiente para saber que passou do limite.
			data, err := io.ReadAll(io.LimitReader(part, domain.MaxFileSize+1))
			file = &domain.Attachment{
				Filename:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Size:        int64(len(data)),
				Content:     bytes.NewReader(data),
			}
			if err != nil {
				if isBodyTooLarge(err) {
					return submissionFrom(values, file, true), nil
				}
				return domain.Submission{}, domain.NewUnexpectedError(errors.Wrap(err, "read form file"))
			}
		case part.FileName() != "":
			// outros arquivos são ignorados; NextPart descarta o resto da parte.
			continue
		default:
			v, err := io.ReadAll(part)
			if err != nil {
				if isBodyTooLarge(err) {
					return submissionFrom(values, file, true), nil
				}
				return domain.Submission{}, domain.NewUnexpectedError(errors.Wrap(err, "read form field"))
			}
			values.Add(name, string(v))
		}
	}
	return submissionFrom(values, file, false), nil
}

// readURLEncoded aceita o formulário sem arquivo; o pipeline responde com a
// mensagem de validação adequada.
func readURLEncoded(r *http.Request) (domain.Submission, error) {
	if err := r.ParseForm(); err != nil {
		if isBodyTooLarge(err) {
			return submissionFrom(r.PostForm, nil, true), nil
		}
		return domain.Submission{}, domain.NewUnexpectedError(errors.Wrap(err, "parse form"))
	}
	return submissionFrom(r.PostForm, nil, false), nil
}

func submissionFrom(values url.Values, file *domain.Attachment, truncated bool) domain.Submission {
	return domain.Submission{
		FirstName: values.Get(domain.FieldFirstName),
		LastName:  values.Get(domain.FieldLastName),
		Website:   values.Get(domain.FieldHoneypot),
		File:      file,
		Truncated: truncated,
	}
}

func isURLEncoded(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}

// isBodyTooLarge reconhece o estouro do MaxBytesReader. Part.Read devolve o
// erro sem embrulho e Reader.NextPart o embrulha com %w.
func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// fail converte o erro do pipeline em resposta. Só a mensagem pública vai
// para o cliente; a causa fica no log.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.Kind(err)
	application.SubmissionsTotal.WithLabelValues(kind).Inc()

	if kind == "unexpected" {
		h.logger.Error("upload failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}

	writeJSON(w, domain.HTTPStatus(err), errorResponse{Error: domain.PublicMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
