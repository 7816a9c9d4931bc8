package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDuplicateNickname is returned when another quiz already uses the nickname.
	ErrDuplicateNickname = errors.New("nickname already in use")
	// ErrQuizNotFound indicates the requested quiz id has no document.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrWrongPassword is returned on an owner password or admin secret mismatch.
	ErrWrongPassword = errors.New("wrong password")
	// ErrStoreUnavailable wraps any transport or backend failure of the store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidQuiz indicates a draft that cannot be persisted.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrInvalidSubmission indicates a malformed answer submission.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrAlreadySubmitted is returned when an attempt is submitted twice.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
)

// StoreError reports a failed store operation. It matches ErrStoreUnavailable.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// Unavailable wraps err as a StoreError unless it is nil or already a domain outcome.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrQuizNotFound) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// ValidationError lists the draft fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range sortedKeys(e.Fields) {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return ErrInvalidQuiz.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidQuiz }

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
