package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"numbersapi/internal/models"
	"numbersapi/internal/repositories"
)

// CodeRejectedError carries the reason a verification code was refused.
type CodeRejectedError struct {
	Reason string
}

func (e *CodeRejectedError) Error() string {
	return "verification failed: " + e.Reason
}

type RegistrationInput struct {
	Email    string
	FullName string
	Phone    string
	Company  string
}

type AuthResult struct {
	Token string
	User  *models.User
}

type AuthService interface {
	StartRegistration(ctx context.Context, in RegistrationInput) error
	CompleteRegistration(ctx context.Context, in RegistrationInput, code string) (*AuthResult, error)
	StartLogin(ctx context.Context, email string) error
	CompleteLogin(ctx context.Context, email, code string) (*AuthResult, error)

	RegisterWithPassword(ctx context.Context, in RegistrationInput, password string) (*AuthResult, error)
	LoginWithPassword(ctx context.Context, email, password string) (*AuthResult, error)

	Profile(ctx context.Context, userID int64) (*models.User, error)
}

type authService struct {
	users         repositories.UserRepository
	verifications VerificationService
	tokens        TokenService
	passwords     PasswordService
	now           func() time.Time
}

func NewAuthService(
	users repositories.UserRepository,
	verifications VerificationService,
	tokens TokenService,
	passwords PasswordService,
) AuthService {
	return &authService{
		users:         users,
		verifications: verifications,
		tokens:        tokens,
		passwords:     passwords,
		now:           time.Now,
	}
}

func (s *authService) StartRegistration(ctx context.Context, in RegistrationInput) error {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return ErrInvalidEmail
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserExists
	}
	_, err = s.verifications.Issue(ctx, email, models.PurposeRegister)
	return err
}

func (s *authService) CompleteRegistration(ctx context.Context, in RegistrationInput, code string) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)
	res, err := s.verifications.Validate(ctx, email, code, models.PurposeRegister)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, &CodeRejectedError{Reason: res.Reason}
	}

	user := &models.User{
		UUID:      uuid.NewString(),
		Email:     email,
		FullName:  strings.TrimSpace(in.FullName),
		Phone:     strings.TrimSpace(in.Phone),
		Company:   strings.TrimSpace(in.Company),
		Verified:  true,
		CreatedAt: s.now().UTC(),
	}
	return s.createAndSign(ctx, user)
}

func (s *authService) StartLogin(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrInvalidEmail
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	_, err = s.verifications.Issue(ctx, email, models.PurposeLogin)
	return err
}

func (s *authService) CompleteLogin(ctx context.Context, email, code string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	res, err := s.verifications.Validate(ctx, email, code, models.PurposeLogin)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, &CodeRejectedError{Reason: res.Reason}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.sign(user)
}

func (s *authService) RegisterWithPassword(ctx context.Context, in RegistrationInput, password string) (*AuthResult, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if len(strings.TrimSpace(password)) < 6 {
		return nil, ErrWeakPassword
	}
	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		UUID:         uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		Company:      strings.TrimSpace(in.Company),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	return s.createAndSign(ctx, user)
}

func (s *authService) LoginWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.passwords.CheckPassword(user.PasswordHash, password) {
		log.Printf("[auth][login] rejected email=%q", email)
		return nil, ErrInvalidCredentials
	}
	return s.sign(user)
}

func (s *authService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) createAndSign(ctx context.Context, user *models.User) (*AuthResult, error) {
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	log.Printf("[auth][register] created userID=%d email=%q", user.ID, user.Email)
	return s.sign(user)
}

func (s *authService) sign(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
