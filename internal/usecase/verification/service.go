// Package verification issues and checks one-time e-mail codes.
package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/domain"
	"github.com/kailas-cloud/veritas/internal/logger"
	"github.com/kailas-cloud/veritas/internal/metrics"
)

// Defaults applied by New to zero Config fields.
const (
	DefaultCodeTTL   = 10 * time.Minute
	DefaultSendLimit = 5
	codeDigits       = 6
)

var sendLimitPrefix = domain.KeyPrefix + "verify_send:"

// Config describes the verification policy.
type Config struct {
	AllowedDomain string // e.g. "pwc.com"; matched case-insensitively
	CodeTTL       time.Duration
	SendLimit     int // codes per e-mail per counter window
}

// Service implements send-code / verify-code.
type Service struct {
	codes   CodeStore
	counter Counter
	mailer  Mailer
	cfg     Config
	gen     func() (string, error)
	logger  *zap.Logger
}

// New creates a verification service.
func New(codes CodeStore, counter Counter, mailer Mailer, cfg Config, logger *zap.Logger) *Service {
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = DefaultCodeTTL
	}
	if cfg.SendLimit <= 0 {
		cfg.SendLimit = DefaultSendLimit
	}
	cfg.AllowedDomain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(cfg.AllowedDomain), "@"))
	return &Service{
		codes:   codes,
		counter: counter,
		mailer:  mailer,
		cfg:     cfg,
		gen:     generateCode,
		logger:  logger,
	}
}

// Enabled reports whether verification is configured. Safe on a nil receiver.
func (s *Service) Enabled() bool {
	return s != nil && s.mailer != nil && s.cfg.AllowedDomain != ""
}

// SendCode issues a fresh code for email and mails it.
func (s *Service) SendCode(ctx context.Context, email string) error {
	if !s.Enabled() {
		return domain.ErrVerificationDisabled
	}
	addr, err := s.normalize(email)
	if err != nil {
		metrics.VerificationTotal.WithLabelValues("send", "rejected").Inc()
		return err
	}

	n, err := s.counter.IncrBy(ctx, sendLimitPrefix+addr, 1)
	if err != nil {
		return fmt.Errorf("send limit: %w", err)
	}
	if n > int64(s.cfg.SendLimit) {
		metrics.VerificationTotal.WithLabelValues("send", "rate_limited").Inc()
		return fmt.Errorf("%d codes already sent: %w", n-1, domain.ErrRateLimited)
	}

	code, err := s.gen()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := s.codes.Put(ctx, addr, code, s.cfg.CodeTTL); err != nil {
		return err
	}

	if err := s.mailer.SendCode(ctx, addr, code); err != nil {
		// An undelivered code must not stay redeemable.
		if _, _, derr := s.codes.Take(ctx, addr); derr != nil {
			logger.FromContextOr(ctx, s.logger).Warn("Failed to discard undelivered code", zap.Error(derr))
		}
		metrics.VerificationTotal.WithLabelValues("send", "error").Inc()
		return fmt.Errorf("%w: send mail: %w", domain.ErrUpstream, err)
	}

	metrics.VerificationTotal.WithLabelValues("send", "ok").Inc()
	logger.FromContextOr(ctx, s.logger).Info("Verification code sent", zap.String("email", addr))
	return nil
}

// VerifyCode consumes the live code for email. Any attempt, right or wrong, burns it.
func (s *Service) VerifyCode(ctx context.Context, email, code string) error {
	if !s.Enabled() {
		return domain.ErrVerificationDisabled
	}
	addr, err := s.normalize(email)
	if err != nil {
		metrics.VerificationTotal.WithLabelValues("verify", "rejected").Inc()
		return err
	}

	stored, found, err := s.codes.Take(ctx, addr)
	if err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if !found || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		metrics.VerificationTotal.WithLabelValues("verify", "failed").Inc()
		return domain.ErrVerificationFailed
	}

	metrics.VerificationTotal.WithLabelValues("verify", "ok").Inc()
	return nil
}

func (s *Service) normalize(email string) (string, error) {
	a, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("email %q: %w", email, domain.ErrInvalidRequest)
	}
	addr := strings.ToLower(a.Address)
	if !strings.HasSuffix(addr, "@"+s.cfg.AllowedDomain) {
		return "", fmt.Errorf("only @%s addresses are allowed: %w", s.cfg.AllowedDomain, domain.ErrInvalidEmailDomain)
	}
	return addr, nil
}

func generateCode() (string, error) {
	limit := big.NewInt(1)
	for range codeDigits {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
