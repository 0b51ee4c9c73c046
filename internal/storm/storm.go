// Package storm talks to the locally installed cluster manager: version and
// classpath queries, and locating the installation root. Every interaction is
// a synchronous external command; any failure is fatal to the invocation.
package storm

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"
)

var (
	// ErrToolInvocation covers external commands that cannot be located or
	// exit nonzero: version query, classpath query, executable lookup.
	ErrToolInvocation = errors.New("external command failed")

	// ErrVersionParse is returned when the cluster manager's version output
	// does not carry a leading major.minor.patch triple.
	ErrVersionParse = errors.New("cluster version not recognized")
)

// versionPattern matches the leading version triple of the trimmed output of
// the version command; trailing build metadata is ignored.
var versionPattern = regexp.MustCompile(`^\d\.\d\.\d`)

// Runner executes external commands. The production implementation is
// os/exec; tests substitute fakes.
type Runner interface {
	// Output runs a command in dir (empty for the current directory) and
	// returns its captured standard output. Standard error passes through.
	Output(dir, name string, args ...string) ([]byte, error)

	// Run runs a command in dir with all stdio passed through.
	Run(dir, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Output(dir, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	return cmd.Output()
}

func (execRunner) Run(dir, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// DefaultRunner returns the os/exec-backed Runner.
func DefaultRunner() Runner { return execRunner{} }

// Tool is the gateway to one cluster-manager installation, identified by the
// executable name resolved on PATH.
type Tool struct {
	Bin    string
	Runner Runner
	Logger hclog.Logger

	// LookPath locates Bin on the search path; nil means exec.LookPath.
	LookPath func(string) (string, error)
}

// NewTool creates a Tool for the given executable name.
func NewTool(bin string, logger hclog.Logger) *Tool {
	return &Tool{Bin: bin, Runner: execRunner{}, Logger: logger}
}

func (t *Tool) runner() Runner {
	if t.Runner == nil {
		return execRunner{}
	}
	return t.Runner
}

func (t *Tool) logger() hclog.Logger {
	if t.Logger == nil {
		return hclog.NewNullLogger()
	}
	return t.Logger
}

func (t *Tool) lookPath(name string) (string, error) {
	if t.LookPath != nil {
		return t.LookPath(name)
	}
	return exec.LookPath(name)
}

// Version asks the installation for its version and extracts the leading
// major.minor.patch triple, e.g. "0.9.2-incubating-SNAPSHOT" -> "0.9.2".
func (t *Tool) Version() (string, error) {
	t.logger().Debug("🔍 Querying cluster version", "bin", t.Bin)
	out, err := t.runner().Output("", t.Bin, "version")
	if err != nil {
		return "", fmt.Errorf("%w: %s version: %v", ErrToolInvocation, t.Bin, err)
	}

	raw := strings.TrimSpace(string(out))
	version := versionPattern.FindString(raw)
	if version == "" {
		return "", fmt.Errorf("%w: %q", ErrVersionParse, raw)
	}

	t.logger().Debug("✅ Cluster version", "version", version)
	return version, nil
}

// Classpath asks the installation for its native classpath: a single
// platform-separator-joined string, returned trimmed but otherwise verbatim.
func (t *Tool) Classpath() (string, error) {
	t.logger().Debug("🔍 Querying installation classpath", "bin", t.Bin)
	out, err := t.runner().Output("", t.Bin, "classpath")
	if err != nil {
		return "", fmt.Errorf("%w: %s classpath: %v", ErrToolInvocation, t.Bin, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Home locates the installation root: the grandparent directory of the
// resolved executable (<home>/bin/<bin>).
func (t *Tool) Home() (string, error) {
	path, err := t.lookPath(t.Bin)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found on PATH: %v", ErrToolInvocation, t.Bin, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrToolInvocation, path, err)
	}

	home := filepath.Dir(filepath.Dir(abs))
	t.logger().Debug("📁 Installation root", "home", home)
	return home, nil
}
