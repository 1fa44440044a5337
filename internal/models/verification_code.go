package models

import "time"

type Purpose string

const (
	PurposeRegister Purpose = "register"
	PurposeLogin    Purpose = "login"
)

func (p Purpose) Valid() bool {
	return p == PurposeRegister || p == PurposeLogin
}

// CodeState is derived from the stored fields at read time, never stored.
type CodeState int

const (
	CodeIssued CodeState = iota
	CodeConsumed
	CodeExpired
)

func (s CodeState) String() string {
	switch s {
	case CodeIssued:
		return "issued"
	case CodeConsumed:
		return "consumed"
	case CodeExpired:
		return "expired"
	}
	return "unknown"
}

// VerificationCode: отдельная запись на каждую отправку кода.
type VerificationCode struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	Purpose   Purpose   `json:"purpose"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"createdAt"`
}

// State: consumed wins over expired, a used code stays used.
func (v *VerificationCode) State(now time.Time) CodeState {
	if v.Used {
		return CodeConsumed
	}
	if now.After(v.ExpiresAt) {
		return CodeExpired
	}
	return CodeIssued
}
