package application

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	rldomain "application-portal/middleware/ratelimit/domain"
	"application-portal/upload/domain"
)

// Limiter é o contrato admit(clientId) que o pipeline consome.
// *ratelimit/application.Service satisfaz esta interface.
type Limiter interface {
	Decide(ctx context.Context, key rldomain.Key) (rldomain.Decision, error)
}

type Options struct {
	// Store nil significa storage não configurado: todo envio falha com erro de configuração.
	Store domain.ObjectStore
	// MissingConfig descreve o que falta quando Store é nil (vai só para o log).
	MissingConfig string
	// Limiter nil desliga o rate limit.
	Limiter Limiter
	Logger  *zap.Logger
	Now     func() time.Time
}

// Service executa o pipeline de envio em duas fases:
//
//	Admit  -> checagem de configuração + rate limit (antes de ler o corpo)
//	Submit -> validação, sanitização, checagem de assinatura e gravação
//
// O handler HTTP chama Admit, faz o parse do multipart e só então chama Submit.
type Service struct {
	store         domain.ObjectStore
	missingConfig string
	limiter       Limiter
	logger        *zap.Logger
	now           func() time.Time
	validate      *validator.Validate
	limiterErrLog rate.Sometimes
}

func NewService(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MissingConfig == "" {
		opts.MissingConfig = "no object store configured"
	}
	return &Service{
		store:         opts.Store,
		missingConfig: opts.MissingConfig,
		limiter:       opts.Limiter,
		logger:        opts.Logger,
		now:           opts.Now,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		limiterErrLog: rate.Sometimes{First: 1, Interval: 30 * time.Second},
	}
}

// Configured informa se há um storage disponível.
func (s *Service) Configured() bool {
	return s.store != nil
}

// Admit roda as duas primeiras etapas do pipeline. Um envio rejeitado aqui
// não conta na janela do cliente.
//
// Falha no backend do limiter não bloqueia o envio: o pedido segue e o erro
// é logado (no máximo uma vez a cada 30s). Remaining = -1 quando não há
// contagem conhecida.
func (s *Service) Admit(ctx context.Context, clientID rldomain.Key) (rldomain.Decision, error) {
	if s.store == nil {
		s.logger.Error("upload rejected: storage not configured", zap.String("detail", s.missingConfig))
		return rldomain.Decision{}, domain.NewConfigurationError(s.missingConfig)
	}
	if s.limiter == nil {
		return rldomain.Decision{Allowed: true, Remaining: -1}, nil
	}

	dec, err := s.limiter.Decide(ctx, clientID)
	if err != nil {
		s.limiterErrLog.Do(func() {
			s.logger.Warn("rate limiter unavailable, admitting request", zap.Error(err))
		})
		return rldomain.Decision{Allowed: true, Remaining: -1}, nil
	}
	if !dec.Allowed {
		s.logger.Info("upload throttled",
			zap.String("client", string(clientID)),
			zap.Duration("retry_after", dec.RetryAfter),
		)
		return dec, domain.NewThrottleError()
	}
	return dec, nil
}

// Submit valida e grava um envio já admitido.
func (s *Service) Submit(ctx context.Context, sub domain.Submission) (domain.Receipt, error) {
	if s.store == nil {
		return domain.Receipt{}, domain.NewConfigurationError(s.missingConfig)
	}

	first := strings.TrimSpace(sub.FirstName)
	last := strings.TrimSpace(sub.LastName)
	if err := validateNames(s.validate, first, last); err != nil {
		s.logger.Debug("submission rejected", zap.Error(err))
		return domain.Receipt{}, err
	}
	if err := validateAttachment(sub.File, sub.Truncated); err != nil {
		s.logger.Debug("submission rejected", zap.Error(err))
		return domain.Receipt{}, err
	}

	data, err := readAttachment(sub.File)
	if err != nil {
		return domain.Receipt{}, err
	}
	if !HasPDFSignature(data) {
		s.logger.Debug("submission rejected: bad signature",
			zap.String("declared", sub.File.ContentType),
			zap.String("detected", detectedType(data)),
		)
		return domain.Receipt{}, domain.NewValidationError(domain.MsgBadSignature)
	}

	path := ObjectPath(s.now(), first, last)

	if strings.TrimSpace(sub.Website) != "" {
		s.logger.Info("submission discarded: honeypot filled", zap.String("path", path))
		return domain.Receipt{}, nil
	}

	start := time.Now()
	err = s.store.Put(ctx, path, data, domain.PutOptions{
		ContentType: domain.ContentTypePDF,
		Overwrite:   false,
	})
	StoreDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("store object failed", zap.String("path", path), zap.Error(err))
		return domain.Receipt{}, domain.NewStorageError(err)
	}

	StoredBytesTotal.Add(float64(len(data)))
	s.logger.Info("submission stored", zap.String("path", path), zap.Int("bytes", len(data)))
	return domain.Receipt{Path: path}, nil
}

// readAttachment lê o conteúdo com teto de MaxFileSize+1 bytes, o suficiente
// para detectar um arquivo maior do que o declarado.
func readAttachment(file *domain.Attachment) ([]byte, error) {
	if file.Content == nil {
		return nil, domain.NewUnexpectedError(errors.New("attachment has no content"))
	}
	data, err := io.ReadAll(io.LimitReader(file.Content, domain.MaxFileSize+1))
	if err != nil {
		return nil, domain.NewUnexpectedError(errors.Wrap(err, "read attachment"))
	}
	if int64(len(data)) > domain.MaxFileSize {
		return nil, domain.NewValidationError(domain.MsgTooLarge)
	}
	return data, nil
}
