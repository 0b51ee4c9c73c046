package runtimejar

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestTryLockHeldByLiveProcess(t *testing.T) {
	c := &Cache{Root: filepath.Join(t.TempDir(), "petrel")}
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(c.lockPath(), []byte(pid+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	acquired, err := c.tryLock()
	if err != nil {
		t.Fatalf("tryLock() error = %v", err)
	}
	if acquired {
		t.Error("tryLock() acquired a lock held by a live process")
	}
}

func TestTryLockReplacesInvalidLock(t *testing.T) {
	c := &Cache{Root: filepath.Join(t.TempDir(), "petrel")}
	if err := os.WriteFile(c.lockPath(), []byte("not-a-pid\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	acquired, err := c.tryLock()
	if err != nil {
		t.Fatalf("tryLock() error = %v", err)
	}
	if !acquired {
		t.Fatal("tryLock() did not replace an invalid lock")
	}

	data, err := os.ReadFile(c.lockPath())
	if err != nil {
		t.Fatal(err)
	}
	if want := strconv.Itoa(os.Getpid()) + "\n"; string(data) != want {
		t.Errorf("lock contents = %q, want %q", data, want)
	}
	c.unlock()
}

func TestLockSurvivesPurge(t *testing.T) {
	c := &Cache{Root: filepath.Join(t.TempDir(), "petrel")}
	acquired, err := c.tryLock()
	if err != nil || !acquired {
		t.Fatalf("tryLock() = %v, %v", acquired, err)
	}
	defer c.unlock()

	if err := c.purge(); err != nil {
		t.Fatalf("purge() error = %v", err)
	}
	if _, err := os.Stat(c.lockPath()); err != nil {
		t.Errorf("lock file lost to the purge: %v", err)
	}
}
