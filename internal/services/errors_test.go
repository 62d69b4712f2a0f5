package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrNotFound, "overlay", "validate", "video missing", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound marker, got %v", err)
	}
	if got := err.Error(); got != "not found: overlay: validate: video missing" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", errors.New("boom"))
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient marker, got %v", err)
	}
}

func TestIsFatalInput(t *testing.T) {
	if !IsFatalInput(Wrap(ErrValidation, "overlay", "validate", "bad extension", nil)) {
		t.Fatal("validation errors are fatal input")
	}
	if IsFatalInput(Wrap(ErrTransient, "whisper", "request", "cold start", nil)) {
		t.Fatal("transient errors are not fatal input")
	}
}
