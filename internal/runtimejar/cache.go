// Package runtimejar manages the per-version cache of the prebuilt runtime
// archive under a single scratch root. A missing archive is rebuilt from the
// base-runtime source tree with an external build tool; rebuilding always
// purges the scratch root first so stale versions never mix. The root is
// process-wide filesystem state; a PID lock file narrows, but does not
// eliminate, the cross-process rebuild race.
package runtimejar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/fourk/Petrel/internal/storm"
	"github.com/fourk/Petrel/pkg/utils/shellparse"
)

// DefaultBuildCommand invokes the build tool inside the base-runtime source
// tree; {version} is substituted before the command is split.
const DefaultBuildCommand = "mvn -Dstorm_version={version} assembly:assembly"

const (
	archivePrefix = "storm-petrel"
	archiveSuffix = "-SNAPSHOT.jar"
)

// ErrBuild is returned when constructing the runtime archive does not yield
// the expected artifact.
var ErrBuild = errors.New("runtime archive build failed")

// Cache stores runtime archives keyed by version under Root. The zero value
// is not usable; populate Root, SourceDir and, when overriding the build
// invocation, BuildCommand.
type Cache struct {
	Root         string
	SourceDir    string
	BuildCommand string
	Runner       storm.Runner
	Logger       hclog.Logger
}

func (c *Cache) runner() storm.Runner {
	if c.Runner == nil {
		return storm.DefaultRunner()
	}
	return c.Runner
}

func (c *Cache) logger() hclog.Logger {
	if c.Logger == nil {
		return hclog.NewNullLogger()
	}
	return c.Logger
}

func archiveName(version string) string {
	return archivePrefix + "-" + version + archiveSuffix
}

// ArchivePath returns the scratch path the archive for version lives at,
// whether or not it exists yet.
func (c *Cache) ArchivePath(version string) string {
	return filepath.Join(c.Root, archiveName(version))
}

// Get reports the cached archive for version, or false when absent.
func (c *Cache) Get(version string) (string, bool) {
	path := c.ArchivePath(version)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// Resolve returns the cached archive for version, rebuilding it first when
// absent.
func (c *Cache) Resolve(version string) (string, error) {
	if path, ok := c.Get(version); ok {
		c.logger().Debug("✅ Runtime archive cached", "path", path)
		return path, nil
	}
	return c.Rebuild(version)
}

// Rebuild constructs the archive for version from the source tree and
// installs it under a freshly recreated scratch root. Returns the installed
// archive path.
func (c *Cache) Rebuild(version string) (string, error) {
	acquired, err := c.tryLock()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuild, err)
	}
	if !acquired {
		c.logger().Info("⏳ Another process is building the runtime archive, waiting...")
		if err := c.waitForLock(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBuild, err)
		}
		if path, ok := c.Get(version); ok {
			c.logger().Info("✅ Runtime archive built by another process", "path", path)
			return path, nil
		}
		// The other process built something else or failed; build ourselves.
		if acquired, err = c.tryLock(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBuild, err)
		} else if !acquired {
			return "", fmt.Errorf("%w: could not acquire the build lock", ErrBuild)
		}
	}
	defer c.unlock()

	return c.build(version)
}

func (c *Cache) build(version string) (string, error) {
	pom := filepath.Join(c.SourceDir, "pom.xml")
	if _, err := os.Stat(pom); err != nil {
		return "", fmt.Errorf("%w: no build manifest at %s: %v", ErrBuild, pom, err)
	}

	args, err := c.buildArgs(version)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuild, err)
	}

	// Never merge with stale contents: the root is recreated from scratch.
	if err := c.purge(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuild, err)
	}

	c.logger().Info("🔨 Building runtime archive", "version", version, "dir", c.SourceDir)
	if err := c.runner().Run(c.SourceDir, args[0], args[1:]...); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBuild, strings.Join(args, " "), err)
	}

	produced := filepath.Join(c.SourceDir, "target", archiveName(version))
	if _, err := os.Stat(produced); err != nil {
		return "", fmt.Errorf("%w: build did not produce %s", ErrBuild, produced)
	}

	dest := c.ArchivePath(version)
	if err := copyFile(produced, dest); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuild, err)
	}

	c.logger().Info("✅ Runtime archive ready", "path", dest)
	return dest, nil
}

func (c *Cache) buildArgs(version string) ([]string, error) {
	command := c.BuildCommand
	if command == "" {
		command = DefaultBuildCommand
	}
	command = strings.ReplaceAll(command, "{version}", version)

	args, err := shellparse.Split(command)
	if err != nil {
		return nil, fmt.Errorf("build command %q: %v", command, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("build command %q is empty", c.BuildCommand)
	}
	return args, nil
}

func (c *Cache) purge() error {
	if err := os.RemoveAll(c.Root); err != nil {
		return err
	}
	return os.MkdirAll(c.Root, 0o755)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
