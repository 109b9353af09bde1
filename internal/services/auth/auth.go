// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements signup, login and account maintenance.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"codeberg.org/oliverandrich/localeats/internal/models"
	"codeberg.org/oliverandrich/localeats/internal/repository"
	"codeberg.org/oliverandrich/localeats/internal/services/password"
	"codeberg.org/oliverandrich/localeats/internal/services/tokens"
	"golang.org/x/crypto/bcrypt"
)

// MinUsernameLength is the shortest accepted username in runes.
const MinUsernameLength = 4

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("account is not activated")
)

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// FormErrors maps form fields to translation message IDs.
type FormErrors map[string]string

func (e FormErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid form: " + strings.Join(fields, ", ")
}

// Signup form fields.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirm         = "password_confirm"
	FieldCurrentPassword = "current_password"
)

type Service struct {
	repo      *repository.Repository
	verifier  *tokens.VerificationManager
	validator *password.Validator
	now       func() time.Time
}

func NewService(repo *repository.Repository, verifier *tokens.VerificationManager, now func() time.Time) *Service {
	return &Service{
		repo:      repo,
		verifier:  verifier,
		validator: password.DefaultValidator(),
		now:       now,
	}
}

// SignupParams holds the submitted signup form.
type SignupParams struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// Signup creates an inactive account and sends its verification link.
// Invalid input is reported as FormErrors.
func (s *Service) Signup(ctx context.Context, p SignupParams) (*models.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)

	errs := FormErrors{}
	if utf8.RuneCountInString(p.Username) < MinUsernameLength {
		errs[FieldUsername] = "error_username_short"
	} else {
		exists, err := s.repo.UsernameExists(ctx, p.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if exists {
			errs[FieldUsername] = "error_username_taken"
		}
	}

	if err := s.checkEmail(ctx, p.Email, 0, errs); err != nil {
		return nil, err
	}
	s.checkPassword(p.Password, p.PasswordConfirm, errs)

	if len(errs) > 0 {
		return nil, errs
	}

	hash, err := password.Hash(p.Password)
	if err != nil {
		return nil, err
	}

	// The account and its token commit together; the mail goes out afterwards.
	var (
		user  *models.User
		token string
	)
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		var err error
		user, err = tx.CreateUser(ctx, p.Username, p.Email, hash, s.now())
		if err != nil {
			return err
		}
		token, err = s.verifier.Store(ctx, tx, user)
		return err
	})
	switch {
	case repository.IsDuplicate(err, "users.email"):
		return nil, FormErrors{FieldEmail: "error_email_taken"}
	case repository.IsDuplicate(err, "users.username"):
		return nil, FormErrors{FieldUsername: "error_username_taken"}
	case err != nil:
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.verifier.Send(ctx, user, token)

	slog.Info("signup_success", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// checkEmail records an email error in errs and returns only unexpected errors.
func (s *Service) checkEmail(ctx context.Context, email string, exceptID int64, errs FormErrors) error {
	if email == "" {
		errs[FieldEmail] = "error_email_required"
		return nil
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs[FieldEmail] = "error_email_invalid"
		return nil
	}
	taken, err := s.repo.EmailTaken(ctx, email, exceptID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		errs[FieldEmail] = "error_email_taken"
	}
	return nil
}

func (s *Service) checkPassword(pw, confirm string, errs FormErrors) {
	result := s.validator.Validate(pw, confirm)
	for _, e := range result.Errors {
		switch e.Code {
		case password.CodeMismatch:
			if _, ok := errs[FieldConfirm]; !ok {
				errs[FieldConfirm] = "error_password_mismatch"
			}
		case password.CodeMaxLength:
			errs[FieldPassword] = "error_password_long"
		default:
			errs[FieldPassword] = "error_password_short"
		}
	}
}

// Login authenticates by username. Inactive accounts are rejected with
// ErrInactive once the password matched.
func (s *Service) Login(ctx context.Context, username, pw string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pw))
			slog.Warn("login_failed", "username", username, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !password.Compare(user.PasswordHash, pw) {
		slog.Warn("login_failed", "username", username, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		slog.Warn("login_failed", "username", username, "reason", "inactive")
		return nil, ErrInactive
	}

	slog.Info("login_success", "user_id", user.ID)
	return user, nil
}

// ChangePassword changes a user's password when they know their current one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, newPassword, confirm string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	errs := FormErrors{}
	if !password.Compare(user.PasswordHash, current) {
		errs[FieldCurrentPassword] = "error_current_password"
	}
	s.checkPassword(newPassword, confirm, errs)
	if len(errs) > 0 {
		return errs
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateUserPassword(ctx, userID, hash, s.now()); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password_changed", "user_id", userID)
	return nil
}

// UpdateEmail changes a user's address, keeping it unique across other accounts.
func (s *Service) UpdateEmail(ctx context.Context, userID int64, email string) error {
	email = strings.TrimSpace(email)

	errs := FormErrors{}
	if err := s.checkEmail(ctx, email, userID, errs); err != nil {
		return err
	}
	if len(errs) > 0 {
		return errs
	}

	if err := s.repo.UpdateUserEmail(ctx, userID, email, s.now()); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return FormErrors{FieldEmail: "error_email_taken"}
		}
		return fmt.Errorf("failed to update email: %w", err)
	}

	slog.Info("email_changed", "user_id", userID)
	return nil
}

// DeleteAccount removes the account after checking its password. Reviews,
// favorites and tokens go with it.
func (s *Service) DeleteAccount(ctx context.Context, userID int64, pw string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !password.Compare(user.PasswordHash, pw) {
		return FormErrors{FieldPassword: "error_current_password"}
	}

	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("account_deleted", "user_id", userID)
	return nil
}
