package services

import (
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"numbersapi/internal/database"
	"numbersapi/internal/models"
	"numbersapi/internal/repositories"
)

func createTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, database.DriverSQLite))
	t.Cleanup(func() { db.Close() })
	return db
}

type sentCode struct {
	Email   string
	Code    string
	Purpose models.Purpose
}

// fakeSender records deliveries; SendFn overrides the behavior when set.
type fakeSender struct {
	mu     sync.Mutex
	sent   []sentCode
	SendFn func(email, code string, purpose models.Purpose) error
}

func (f *fakeSender) SendVerificationCode(email, code string, purpose models.Purpose, _ time.Duration) error {
	f.mu.Lock()
	f.sent = append(f.sent, sentCode{Email: email, Code: code, Purpose: purpose})
	f.mu.Unlock()
	if f.SendFn != nil {
		return f.SendFn(email, code, purpose)
	}
	return nil
}

func (f *fakeSender) last(t *testing.T) sentCode {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no code was sent")
	return f.sent[len(f.sent)-1]
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestVerificationService(t *testing.T, db *sql.DB, sender CodeSender, clock *fakeClock) *verificationService {
	t.Helper()
	svc := NewVerificationService(
		repositories.NewVerificationCodeRepository(db),
		sender,
		nil,
		DefaultVerificationConfig(),
	).(*verificationService)
	if clock != nil {
		svc.now = clock.Now
	}
	return svc
}
