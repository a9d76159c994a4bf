package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, "", nil)

	unlock, err := client.Lock(context.Background())
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	lockPath := filepath.Join(tmpDir, ".tagnote.lock")
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("Lock file not created")
	}

	// A second acquisition must wait until the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.Lock(ctx); err == nil {
		t.Error("expected contention error while lock is held")
	}

	unlock()

	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("Lock file not removed after unlock")
	}
}

func TestClient_InitAndCommit(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git not installed")
	}
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, "", nil)

	if err := client.Init(); err != nil {
		t.Fatalf("Failed to init: %v", err)
	}
	if !client.IsRepo() {
		t.Fatal(".git directory not created")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "notes.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := client.Add("notes.json"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := client.Commit("add notes"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	// Nothing staged: still fine.
	if err := client.Commit("empty"); err != nil {
		t.Fatalf("empty commit failed: %v", err)
	}

	log, err := client.Run("log", "--oneline")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(log, "add notes") || strings.Contains(log, "empty") {
		t.Errorf("unexpected log: %q", log)
	}
}
