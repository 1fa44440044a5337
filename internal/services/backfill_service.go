package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"numbersapi/internal/repositories"
)

type BackfillReport struct {
	Scanned      int   // records found without a serial
	Assigned     int   // records updated
	FirstSerial  int64 // 0 when nothing was assigned
	LastSerial   int64
	CounterValue int64 // counter value after resync
}

// BackfillService stamps legacy records that were stored before serials
// existed. Everything happens in one transaction; run it while no other
// instance is allocating serials.
type BackfillService struct {
	db       *sql.DB
	numbers  repositories.NumberRepository
	counters repositories.CounterRepository
}

func NewBackfillService(db *sql.DB, numbers repositories.NumberRepository, counters repositories.CounterRepository) *BackfillService {
	return &BackfillService{db: db, numbers: numbers, counters: counters}
}

// Run assigns serials after max(existing serials, counter) in saved_at order
// and raises the counter to the last one. With dryRun nothing is written.
func (s *BackfillService) Run(ctx context.Context, sequence string, dryRun bool) (*BackfillReport, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("backfill begin: %w", err)
	}
	defer tx.Rollback()

	numbers := s.numbers.WithTx(tx)
	counters := s.counters.WithTx(tx)

	maxSerial, err := numbers.MaxSerial(ctx)
	if err != nil {
		return nil, err
	}
	current, err := counters.Get(ctx, sequence)
	if err != nil {
		return nil, err
	}
	base := maxSerial
	if current > base {
		base = current
	}

	pending, err := numbers.ListUnserialized(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("[backfill] found %d records to backfill (max serial=%d, counter=%d)", len(pending), maxSerial, current)

	report := &BackfillReport{Scanned: len(pending), CounterValue: base}
	serial := base
	for _, rec := range pending {
		serial++
		if !dryRun {
			if err := numbers.SetSerial(ctx, rec.ID, serial); err != nil {
				return nil, fmt.Errorf("backfill record %d: %w", rec.ID, err)
			}
		}
		if report.FirstSerial == 0 {
			report.FirstSerial = serial
		}
		report.LastSerial = serial
		report.Assigned++
	}

	if dryRun {
		report.CounterValue = serial
		log.Printf("[backfill] dry run: would assign %d serials, counter -> %d", report.Assigned, serial)
		return report, nil
	}

	report.CounterValue, err = counters.RaiseTo(ctx, sequence, serial)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("backfill commit: %w", err)
	}
	log.Printf("[backfill] assigned %d serials, counter set to %d", report.Assigned, report.CounterValue)
	return report, nil
}
