package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"numbersapi/internal/metrics"
	"numbersapi/internal/models"
	"numbersapi/internal/repositories"
)

// 8-digit values.
const (
	MinValue = 10000000
	MaxValue = 99999999
)

type NumberService interface {
	CreateRecord(ctx context.Context, value int64) (*models.NumberRecord, error)
	CreateRandom(ctx context.Context) (*models.NumberRecord, error)
	Latest(ctx context.Context) (*models.NumberRecord, error)
	SecondLatest(ctx context.Context) (*models.NumberRecord, error)
	All(ctx context.Context) ([]*models.NumberRecord, error)
}

type numberService struct {
	repo    repositories.NumberRepository
	serials SerialAllocator
	now     func() time.Time
}

func NewNumberService(repo repositories.NumberRepository, serials SerialAllocator) NumberService {
	return &numberService{repo: repo, serials: serials, now: time.Now}
}

func (s *numberService) CreateRecord(ctx context.Context, value int64) (*models.NumberRecord, error) {
	if value < MinValue || value > MaxValue {
		return nil, fmt.Errorf("%w: %d", ErrValueOutOfRange, value)
	}

	serial, err := s.serials.NextSerial(ctx, NumbersSequence)
	if err != nil {
		return nil, err
	}

	rec := &models.NumberRecord{
		Value:   value,
		SavedAt: s.now().UTC(),
		Serial:  serial,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// counter and table disagree (e.g. restored backup); the serial is burnt
			metrics.NumberSerialConflicts.Inc()
			log.Printf("[numbers][create] serial=%d already taken", serial)
			return nil, fmt.Errorf("%w (serial %d)", ErrSerialConflict, serial)
		}
		return nil, err
	}
	metrics.NumbersCreated.Inc()
	return rec, nil
}

func (s *numberService) CreateRandom(ctx context.Context) (*models.NumberRecord, error) {
	return s.CreateRecord(ctx, MinValue+rand.Int63n(MaxValue-MinValue+1))
}

func (s *numberService) Latest(ctx context.Context) (*models.NumberRecord, error) {
	return s.repo.NthLatest(ctx, 0)
}

func (s *numberService) SecondLatest(ctx context.Context) (*models.NumberRecord, error) {
	return s.repo.NthLatest(ctx, 1)
}

func (s *numberService) All(ctx context.Context) ([]*models.NumberRecord, error) {
	return s.repo.List(ctx)
}
