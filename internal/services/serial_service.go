package services

import (
	"context"
	"fmt"
	"log"

	"numbersapi/internal/metrics"
	"numbersapi/internal/repositories"
)

// NumbersSequence is the counter that stamps numeric records.
const NumbersSequence = "numbers"

type SerialAllocator interface {
	NextSerial(ctx context.Context, sequence string) (int64, error)
	// Current is the last serial handed out; 0 if none. Never derive a new
	// serial from it.
	Current(ctx context.Context, sequence string) (int64, error)
}

type serialAllocator struct {
	counters repositories.CounterRepository
}

func NewSerialAllocator(counters repositories.CounterRepository) SerialAllocator {
	return &serialAllocator{counters: counters}
}

// NextSerial is one atomic increment-and-fetch in the store. There is no
// fallback value: if the store fails, allocation fails.
func (s *serialAllocator) NextSerial(ctx context.Context, sequence string) (int64, error) {
	seq, err := s.counters.Increment(ctx, sequence)
	if err != nil {
		metrics.SerialAllocationErrors.Inc()
		log.Printf("[serial][next] sequence=%q failed: %v", sequence, err)
		return 0, fmt.Errorf("allocate serial: %w", err)
	}
	metrics.SerialAllocations.Inc()
	return seq, nil
}

func (s *serialAllocator) Current(ctx context.Context, sequence string) (int64, error) {
	return s.counters.Get(ctx, sequence)
}
