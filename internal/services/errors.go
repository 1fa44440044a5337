package services

import "errors"

var (
	ErrSerialConflict     = errors.New("duplicate serial, try again")
	ErrValueOutOfRange    = errors.New("value out of range")
	ErrDeliveryFailed     = errors.New("verification code stored but delivery failed")
	ErrIssueInProgress    = errors.New("verification code issuance already in progress")
	ErrInvalidPurpose     = errors.New("invalid purpose")
	ErrInvalidEmail       = errors.New("email is required")
	ErrUserExists         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

// Validation failure reasons.
const (
	ReasonNoCode  = "no code found"
	ReasonExpired = "expired"
	ReasonInvalid = "invalid"
)

type ValidationResult struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}
