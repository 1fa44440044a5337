package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone,omitempty"`
	Company      string    `json:"company,omitempty"`
	PasswordHash string    `json:"-"` // не отдаём наружу
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserSummary is what auth responses and /api/me expose.
type UserSummary struct {
	ID       int64  `json:"id"`
	UUID     string `json:"uuid"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, UUID: u.UUID, Email: u.Email, FullName: u.FullName}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Password string `json:"password,omitempty"`
}

// CodeRequest starts or completes a code flow. Registration verify repeats
// the profile fields so the server keeps no state between the two steps.
type CodeRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
}

type AuthResponse struct {
	OK    bool        `json:"ok"`
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}
