// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package password holds the password policy and bcrypt hashing.
package password

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrWeak is returned for passwords outside the length bounds.
	ErrWeak = errors.New("password does not meet requirements")
	// ErrMismatch is returned when password and confirmation differ.
	ErrMismatch = errors.New("passwords do not match")
)

// Cost is the bcrypt work factor. Tests lower it to bcrypt.MinCost.
var Cost = bcrypt.DefaultCost

// MinLength and MaxBytes bound an acceptable password.
// bcrypt ignores everything past 72 bytes.
const (
	MinLength = 8
	MaxBytes  = 72
)

// Validation error codes.
const (
	CodeMinLength = "min_length"
	CodeMaxLength = "max_length"
	CodeMismatch  = "mismatch"
)

// ValidationError represents a single password validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// ValidationResult holds all validation errors.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Validator checks new passwords.
type Validator struct {
	MinLength int
	MaxBytes  int
}

// DefaultValidator returns the site-wide password policy.
func DefaultValidator() *Validator {
	return &Validator{MinLength: MinLength, MaxBytes: MaxBytes}
}

// Validate checks a password and its confirmation and collects every violation.
func (v *Validator) Validate(password, confirmation string) ValidationResult {
	var errs []ValidationError

	if utf8.RuneCountInString(password) < v.MinLength {
		errs = append(errs, ValidationError{
			Code:    CodeMinLength,
			Message: fmt.Sprintf("Password must be at least %d characters long.", v.MinLength),
		})
	}

	if len(password) > v.MaxBytes {
		errs = append(errs, ValidationError{
			Code:    CodeMaxLength,
			Message: fmt.Sprintf("Password must be at most %d bytes long.", v.MaxBytes),
		})
	}

	if password != confirmation {
		errs = append(errs, ValidationError{
			Code:    CodeMismatch,
			Message: "The two passwords do not match.",
		})
	}

	return ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

// Check validates like Validate but returns ErrWeak or ErrMismatch.
// Length violations take precedence over a mismatch.
func (v *Validator) Check(password, confirmation string) error {
	result := v.Validate(password, confirmation)
	if result.Valid {
		return nil
	}
	for _, e := range result.Errors {
		if e.Code != CodeMismatch {
			return fmt.Errorf("%w: %s", ErrWeak, e.Message)
		}
	}
	return ErrMismatch
}

// Hash returns the bcrypt hash of password.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether password matches hash.
func Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
