package common

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestRandomBytes_LengthAndEntropyHint(t *testing.T) {
	const n = 32
	a, err := RandomBytes(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := RandomBytes(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != n || len(b) != n {
		t.Fatalf("unexpected lengths: %d, %d", len(a), len(b))
	}
	if bytes.Equal(a, b) {
		t.Logf("warning: two RandomBytes(%d) results are identical; extremely unlikely", n)
	}
}

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestSentinels_MatchThroughWrapping(t *testing.T) {
	sentinels := []error{
		ErrInvalidCredentials,
		ErrInvalidCredential,
		ErrInvalidSecret,
		ErrInvalidCodeFormat,
		ErrInvalidOTP,
		ErrSubjectNotFound,
	}
	for _, s := range sentinels {
		wrapped := fmt.Errorf("login: %w", s)
		if !errors.Is(wrapped, s) {
			t.Fatalf("errors.Is failed for %v", s)
		}
	}
	if errors.Is(ErrInvalidCredential, ErrInvalidCredentials) {
		t.Fatal("credential and credentials kinds must be distinct")
	}
}
