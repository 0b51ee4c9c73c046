// Package assemble builds the deployable topology artifact: a copy of the
// prebuilt runtime archive with the job's configuration, definition modules,
// and a build manifest injected under resources/. The destination artifact is
// overwritten on every submit.
package assemble

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/fourk/Petrel/internal/topology"
)

// ErrAssembly covers every I/O or packaging failure while producing the
// artifact.
var ErrAssembly = errors.New("artifact assembly failed")

const (
	resourcePrefix = "resources/"
	manifestName   = resourcePrefix + "manifest.txt"
)

// Options are the assembly inputs. Config and SourceJar are required;
// Definition, Venv and LogDir are forwarded opaquely when set.
type Options struct {
	SourceJar  string
	DestJar    string
	Config     *topology.Config
	Definition *topology.Definition
	Venv       string
	LogDir     string
}

// Assembler packages topology artifacts. WorkDir is where definition modules
// are looked up; empty means the process working directory.
type Assembler struct {
	WorkDir string
	Logger  hclog.Logger
}

func (a *Assembler) logger() hclog.Logger {
	if a.Logger == nil {
		return hclog.NewNullLogger()
	}
	return a.Logger
}

func (a *Assembler) workDir() string {
	if a.WorkDir == "" {
		return "."
	}
	return a.WorkDir
}

// Assemble merges the runtime archive and the job inputs into the
// destination artifact.
func (a *Assembler) Assemble(opts Options) error {
	if opts.Config == nil {
		return fmt.Errorf("%w: no configuration supplied", ErrAssembly)
	}
	if filepath.Clean(opts.SourceJar) == filepath.Clean(opts.DestJar) {
		return fmt.Errorf("%w: source and destination are the same archive %s", ErrAssembly, opts.DestJar)
	}

	a.logger().Debug("📦 Assembling topology artifact",
		"source", opts.SourceJar, "dest", opts.DestJar)

	modules, err := a.collectModules(opts.Definition)
	if err != nil {
		return err
	}

	injected := a.injectedNames(opts, modules)

	checksum, err := fileChecksum(opts.SourceJar)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	source, err := zip.OpenReader(opts.SourceJar)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrAssembly, opts.SourceJar, err)
	}
	defer source.Close()

	dest, err := os.Create(opts.DestJar)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrAssembly, opts.DestJar, err)
	}
	defer dest.Close()

	zw := zip.NewWriter(dest)

	for _, entry := range source.File {
		// Injected resources supersede colliding runtime-archive entries.
		if _, collides := injected[entry.Name]; collides {
			a.logger().Debug("♻️ Superseding runtime-archive entry", "name", entry.Name)
			continue
		}
		if err := zw.Copy(entry); err != nil {
			return fmt.Errorf("%w: copying %s: %v", ErrAssembly, entry.Name, err)
		}
	}

	now := time.Now().UTC()

	if err := a.writeEntry(zw, configEntryName(opts.Config), opts.Config.Raw, now); err != nil {
		return err
	}
	for _, module := range modules {
		data, err := os.ReadFile(filepath.Join(a.workDir(), module))
		if err != nil {
			return fmt.Errorf("%w: reading module %s: %v", ErrAssembly, module, err)
		}
		if err := a.writeEntry(zw, resourcePrefix+module, data, now); err != nil {
			return err
		}
	}
	if err := a.writeEntry(zw, manifestName, manifest(opts, checksum, now), now); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: finalizing %s: %v", ErrAssembly, opts.DestJar, err)
	}
	if err := dest.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", ErrAssembly, opts.DestJar, err)
	}

	a.logger().Info("✅ Topology artifact assembled",
		"path", opts.DestJar, "modules", len(modules))
	return nil
}

// collectModules lists the job's source modules: the definition module plus
// every sibling module in the working directory, so imports between them
// resolve on the worker side.
func (a *Assembler) collectModules(def *topology.Definition) ([]string, error) {
	if def == nil {
		return nil, nil
	}

	moduleFile := def.ModuleFile()
	if _, err := os.Stat(filepath.Join(a.workDir(), moduleFile)); err != nil {
		return nil, fmt.Errorf("%w: definition module %s: %v", ErrAssembly, moduleFile, err)
	}

	entries, err := os.ReadDir(a.workDir())
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %v", ErrAssembly, a.workDir(), err)
	}

	var modules []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".py") {
			continue
		}
		modules = append(modules, entry.Name())
	}
	return modules, nil
}

func (a *Assembler) injectedNames(opts Options, modules []string) map[string]struct{} {
	injected := map[string]struct{}{
		configEntryName(opts.Config): {},
		manifestName:                 {},
	}
	for _, module := range modules {
		injected[resourcePrefix+module] = struct{}{}
	}
	return injected
}

func (a *Assembler) writeEntry(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	a.logger().Debug("➕ Injecting resource", "name", name)
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("%w: adding %s: %v", ErrAssembly, name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrAssembly, name, err)
	}
	return nil
}

func configEntryName(cfg *topology.Config) string {
	return resourcePrefix + filepath.Base(cfg.Path)
}

// fileChecksum hashes a file, rendered in the prefixed "sha256:hex" form.
func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %v", path, err)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

// manifest renders the build record carried inside the artifact.
func manifest(opts Options, checksum string, created time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Build-Id: %s\n", uuid.NewString())
	fmt.Fprintf(&b, "Created: %s\n", created.Format(time.RFC3339))
	fmt.Fprintf(&b, "Source-Archive: %s\n", filepath.Base(opts.SourceJar))
	fmt.Fprintf(&b, "Source-Checksum: %s\n", checksum)
	fmt.Fprintf(&b, "Configuration: %s\n", filepath.Base(opts.Config.Path))
	if opts.Definition != nil {
		fmt.Fprintf(&b, "Definition: %s\n", opts.Definition)
	}
	if opts.Venv != "" {
		fmt.Fprintf(&b, "Virtualenv: %s\n", opts.Venv)
	}
	if opts.LogDir != "" {
		fmt.Fprintf(&b, "Log-Directory: %s\n", opts.LogDir)
	}
	return []byte(b.String())
}
