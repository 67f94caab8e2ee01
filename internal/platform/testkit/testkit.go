// Package testkit holds assertions and seam helpers shared by package tests
package testkit

import (
	"strings"
	"sync"
	"testing"

	perr "gscchat/internal/platform/errors"
)

var seamMu sync.Mutex

// Swap replaces *target for the rest of the test
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial holds a process-wide lock until the test ends; use it before swapping package seams
func Serial(t *testing.T) {
	t.Helper()
	seamMu.Lock()
	t.Cleanup(seamMu.Unlock)
}

// MustPanic fails the test unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustContain fails the test unless haystack contains needle
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in:\n%s", needle, haystack)
	}
}

// MustCode fails the test unless err carries code
func MustCode(t *testing.T, err error, code perr.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", code)
	}
	if got := perr.CodeOf(err); got != code {
		t.Fatalf("error code = %d, want %d (err: %v)", got, code, err)
	}
}
