package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveVaultPath(t *testing.T) {
	t.Parallel()

	devBase := filepath.Join(os.TempDir(), DevDirName)
	insideTemp := filepath.Join(os.TempDir(), "some-test-vault")

	tests := []struct {
		name      string
		userPath  string
		forceTemp bool
		expected  string
	}{
		{"Normal Mode - Empty Path", "", false, "."},
		{"Normal Mode - Specific Path", "/some/path", false, "/some/path"},
		{"Dev Mode - Empty Path", "", true, filepath.Join(devBase, "default")},
		{"Dev Mode - Current Dir", ".", true, filepath.Join(devBase, "default")},
		{"Dev Mode - Relative Name", "my-vault", true, filepath.Join(devBase, "my-vault")},
		{"Dev Mode - Clean Name", "../bad/path", true, filepath.Join(devBase, "path")},
		{"Dev Mode - Exception for Temp Dir", insideTemp, true, insideTemp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveVaultPath(tt.userPath, tt.forceTemp); got != tt.expected {
				t.Errorf("ResolveVaultPath(%q, %v) = %q, want %q", tt.userPath, tt.forceTemp, got, tt.expected)
			}
		})
	}
}

func TestIsDevRun(t *testing.T) {
	// The test binary itself ends in .test.
	if !IsDevRun() {
		t.Error("expected IsDevRun to be true under go test")
	}
}
