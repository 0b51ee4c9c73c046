package runtimejar

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	lockPollInterval = 100 * time.Millisecond
	// Build-tool runs resolve dependencies on first use and can take a while.
	lockWaitTimeout = 10 * time.Minute
)

// lockPath is a sibling of the scratch root so the lock survives the purge.
func (c *Cache) lockPath() string {
	return filepath.Clean(c.Root) + ".lock"
}

// isProcessRunning checks whether a PID still names a live process. On Unix,
// Signal(0) probes for existence without delivering a signal.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// tryLock attempts to take the build lock. Returns false when another live
// process holds it; stale locks from dead processes are removed first.
func (c *Cache) tryLock() (bool, error) {
	lockPath := c.lockPath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return false, err
	}

	if _, err := os.Stat(lockPath); err == nil {
		c.logger().Debug("🔍 Build lock exists, checking if it's stale...")
		if data, err := os.ReadFile(lockPath); err == nil {
			contents := strings.TrimSpace(string(data))
			if oldPid, err := strconv.Atoi(contents); err == nil {
				if isProcessRunning(oldPid) {
					c.logger().Debug("🔒 Build lock held by active process", "pid", oldPid)
					return false, nil
				}
				c.logger().Info("🧹 Removing stale build lock from dead process", "pid", oldPid)
				os.Remove(lockPath)
			} else {
				c.logger().Info("🧹 Removing invalid build lock (couldn't parse PID)")
				os.Remove(lockPath)
			}
		} else {
			c.logger().Info("🧹 Removing unreadable build lock")
			os.Remove(lockPath)
		}
	}

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			c.logger().Debug("🔒 Build lock exists, another process is building")
			return false, nil
		}
		return false, err
	}
	defer file.Close()

	pid := os.Getpid()
	if _, err := fmt.Fprintf(file, "%d\n", pid); err != nil {
		os.Remove(lockPath)
		return false, err
	}

	c.logger().Debug("🔒 Acquired build lock", "pid", pid)
	return true, nil
}

func (c *Cache) unlock() {
	if err := os.Remove(c.lockPath()); err != nil {
		c.logger().Debug("⚠️ Failed to remove build lock", "error", err)
	} else {
		c.logger().Debug("🔓 Released build lock")
	}
}

// waitForLock polls until the holder releases the build lock.
func (c *Cache) waitForLock() error {
	lockPath := c.lockPath()
	maxAttempts := int(lockWaitTimeout / lockPollInterval)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if _, err := os.Stat(lockPath); os.IsNotExist(err) {
			c.logger().Debug("✅ Build lock released")
			// Give the holder a moment to finish writing the archive.
			time.Sleep(lockPollInterval)
			return nil
		}

		if attempt%100 == 0 {
			c.logger().Debug("⏳ Waiting for runtime archive build...",
				"elapsed", (time.Duration(attempt) * lockPollInterval).String())
		}
		time.Sleep(lockPollInterval)
	}

	return fmt.Errorf("timeout waiting for the build lock after %s", lockWaitTimeout)
}
