package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "Missing", Command: "definitely-not-a-real-binary-12345"},
		{Name: "Unconfigured", Command: "  "},
	})
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("missing binary must not report available")
	}
	if statuses[1].Available || statuses[1].Detail != "command not configured" {
		t.Fatalf("unexpected unconfigured status: %+v", statuses[1])
	}
}

func TestCheckBinariesFindsStub(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "redub-test-tool")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	statuses := CheckBinaries([]Requirement{{Name: "Tool", Command: "redub-test-tool"}})
	if !statuses[0].Available {
		t.Fatalf("stub binary must be found: %+v", statuses[0])
	}
}

func TestFirstMissingSkipsOptional(t *testing.T) {
	statuses := []Status{
		{Name: "Opt", Optional: true, Available: false},
		{Name: "Req", Available: true},
	}
	if _, ok := FirstMissing(statuses); ok {
		t.Fatal("optional missing dependency must not fail the check")
	}

	statuses = append(statuses, Status{Name: "Gone", Available: false, Detail: "binary not found"})
	missing, ok := FirstMissing(statuses)
	if !ok || missing.Name != "Gone" {
		t.Fatalf("expected Gone to be reported, got %+v ok=%v", missing, ok)
	}
}
