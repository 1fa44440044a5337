package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log"
	"strings"
	"time"

	"numbersapi/internal/metrics"
	"numbersapi/internal/models"
	"numbersapi/internal/repositories"
	"numbersapi/internal/utils"
)

type VerificationConfig struct {
	CodeLength   int
	TTL          time.Duration
	IssueLockTTL time.Duration
}

// DefaultVerificationConfig: 6 digits, valid for 10 minutes.
func DefaultVerificationConfig() VerificationConfig {
	return VerificationConfig{CodeLength: 6, TTL: 10 * time.Minute, IssueLockTTL: 15 * time.Second}
}

type VerificationService interface {
	// Issue replaces any pending code for (email, purpose) with a new one and
	// sends it. A send failure returns ErrDeliveryFailed; the code is still
	// stored.
	Issue(ctx context.Context, email string, purpose models.Purpose) (*models.VerificationCode, error)
	// Validate consumes the latest pending code when it matches. Only
	// infrastructure failures are returned as errors.
	Validate(ctx context.Context, email, code string, purpose models.Purpose) (ValidationResult, error)
	ReapExpired(ctx context.Context) (int64, error)
	RunReaper(ctx context.Context, interval time.Duration)
}

type verificationService struct {
	repo   repositories.VerificationCodeRepository
	sender CodeSender
	locks  IssueLocker
	cfg    VerificationConfig
	now    func() time.Time
}

func NewVerificationService(
	repo repositories.VerificationCodeRepository,
	sender CodeSender,
	locks IssueLocker,
	cfg VerificationConfig,
) VerificationService {
	def := DefaultVerificationConfig()
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = def.CodeLength
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.IssueLockTTL <= 0 {
		cfg.IssueLockTTL = def.IssueLockTTL
	}
	if locks == nil {
		locks = NewLocalIssueLocker()
	}
	return &verificationService{
		repo:   repo,
		sender: sender,
		locks:  locks,
		cfg:    cfg,
		now:    time.Now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *verificationService) Issue(ctx context.Context, email string, purpose models.Purpose) (*models.VerificationCode, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if !purpose.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPurpose, purpose)
	}

	release, err := s.locks.TryLock(ctx, issueLockKey(email, string(purpose)), s.cfg.IssueLockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	cleared, err := s.repo.DeletePending(ctx, email, purpose)
	if err != nil {
		return nil, err
	}

	code, err := utils.NewNumericCode(s.cfg.CodeLength)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rec := &models.VerificationCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	metrics.CodesIssued.Inc()
	log.Printf("[verify][issue] email=%s purpose=%s id=%d cleared=%d", email, purpose, rec.ID, cleared)

	if err := s.sender.SendVerificationCode(email, code, purpose, s.cfg.TTL); err != nil {
		metrics.DeliveryFailures.Inc()
		log.Printf("[verify][issue] delivery failed email=%s id=%d: %v", email, rec.ID, err)
		return rec, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return rec, nil
}

func (s *verificationService) Validate(ctx context.Context, email, code string, purpose models.Purpose) (ValidationResult, error) {
	email = NormalizeEmail(email)
	if !purpose.Valid() {
		return ValidationResult{}, fmt.Errorf("%w: %q", ErrInvalidPurpose, purpose)
	}

	v, err := s.repo.LatestUnused(ctx, email, purpose)
	if err != nil {
		return ValidationResult{}, err
	}
	if v == nil {
		return s.fail(email, purpose, ReasonNoCode), nil
	}

	// expiry is checked here no matter whether the reaper already ran
	switch v.State(s.now()) {
	case models.CodeExpired:
		return s.fail(email, purpose, ReasonExpired), nil
	case models.CodeConsumed:
		return s.fail(email, purpose, ReasonNoCode), nil
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(v.Code)) != 1 {
		return s.fail(email, purpose, ReasonInvalid), nil
	}

	consumed, err := s.repo.MarkUsed(ctx, v.ID)
	if err != nil {
		return ValidationResult{}, err
	}
	if !consumed {
		// a concurrent validate won the race
		return s.fail(email, purpose, ReasonNoCode), nil
	}
	metrics.Validation("ok")
	log.Printf("[verify][validate] OK email=%s purpose=%s id=%d", email, purpose, v.ID)
	return ValidationResult{OK: true}, nil
}

func (s *verificationService) fail(email string, purpose models.Purpose, reason string) ValidationResult {
	metrics.Validation(reason)
	log.Printf("[verify][validate] rejected email=%s purpose=%s reason=%q", email, purpose, reason)
	return ValidationResult{OK: false, Reason: reason}
}

func (s *verificationService) ReapExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.CodesReaped.Add(int(n))
	}
	return n, nil
}

// RunReaper deletes expired codes every interval until ctx is done.
func (s *verificationService) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ReapExpired(ctx)
			if err != nil {
				log.Printf("[verify][reaper] %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[verify][reaper] removed %d expired codes", n)
			}
		}
	}
}
