// Package dispatch drives the three cluster command flows. submit and kill
// end by transferring control to an external process and do not return on
// success; status forwards to the reporting collaborator. Any failure before
// the transfer is surfaced to the caller with the failing step's context.
package dispatch

import (
	"github.com/hashicorp/go-hclog"

	"github.com/fourk/Petrel/internal/assemble"
	"github.com/fourk/Petrel/internal/status"
	"github.com/fourk/Petrel/internal/storm"
	"github.com/fourk/Petrel/internal/topology"
)

// execModeEnv selects the spawn fallback on platforms that do support
// process replacement.
const execModeEnv = "PETREL_EXEC_MODE"

// ClusterTool is the slice of the installation gateway the flows need.
type ClusterTool interface {
	Version() (string, error)
	Classpath() (string, error)
	Home() (string, error)
}

// ArchiveCache resolves versioned runtime archives, rebuilding on a miss.
type ArchiveCache interface {
	Resolve(version string) (string, error)
}

// Assembler packages the deployable artifact.
type Assembler interface {
	Assemble(opts assemble.Options) error
}

// StatusReporter receives status requests unmodified.
type StatusReporter interface {
	Report(req status.Request) error
}

// Dispatcher wires the collaborators for one tool invocation. JavaBin and
// StormBin name the executables resolved on the search path at dispatch time.
type Dispatcher struct {
	Tool      ClusterTool
	Cache     ArchiveCache
	Assembler Assembler
	Reporter  StatusReporter
	JavaBin   string
	StormBin  string
	Logger    hclog.Logger

	// execFn is the process-transfer seam; nil means Exec.
	execFn func(req *Request) error
}

func (d *Dispatcher) logger() hclog.Logger {
	if d.Logger == nil {
		return hclog.NewNullLogger()
	}
	return d.Logger
}

func (d *Dispatcher) exec(req *Request) error {
	if d.execFn != nil {
		return d.execFn(req)
	}
	return Exec(req, d.logger())
}

// SubmitOptions are the validated submit inputs. An empty SourceJar means
// resolve the runtime archive for the installed cluster version; an empty
// Name means local mode.
type SubmitOptions struct {
	SourceJar    string
	DestJar      string
	ConfigPath   string
	Definition   *topology.Definition
	Venv         string
	LogDir       string
	ExtraStormCP string
	Name         string
}

// KillOptions are the validated kill inputs.
type KillOptions struct {
	Name       string
	ConfigPath string
}

// StatusOptions are the validated status inputs. Nil filters were omitted on
// the command line, which is distinct from an empty value.
type StatusOptions struct {
	Nimbus   string
	Worker   *string
	Port     *string
	Topology *string
}

// Submit packages the topology and transfers control to the JVM launcher.
// On success it does not return.
func (d *Dispatcher) Submit(opts SubmitOptions) error {
	cfg, err := topology.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	sourceJar := opts.SourceJar
	if sourceJar == "" {
		version, err := d.Tool.Version()
		if err != nil {
			return err
		}
		if sourceJar, err = d.Cache.Resolve(version); err != nil {
			return err
		}
	}

	if err := d.Assembler.Assemble(assemble.Options{
		SourceJar:  sourceJar,
		DestJar:    opts.DestJar,
		Config:     cfg,
		Definition: opts.Definition,
		Venv:       opts.Venv,
		LogDir:     opts.LogDir,
	}); err != nil {
		return err
	}

	installCP, err := d.Tool.Classpath()
	if err != nil {
		return err
	}
	classpath := storm.ComposeClasspath(installCP, opts.DestJar, opts.ExtraStormCP)

	home, err := d.Tool.Home()
	if err != nil {
		return err
	}

	if opts.Name == "" {
		d.logger().Info("🚀 Launching topology in local mode", "artifact", opts.DestJar)
	} else {
		d.logger().Info("🚀 Submitting topology", "name", opts.Name, "artifact", opts.DestJar)
	}
	return d.exec(SubmitRequest(d.JavaBin, home, classpath, opts.DestJar, opts.Name))
}

// Kill transfers control to the cluster manager's kill command, routed to
// the coordinator host named by the topology configuration when present.
// On success it does not return.
func (d *Dispatcher) Kill(opts KillOptions) error {
	cfg, err := topology.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	host, found := cfg.String(topology.NimbusHostKey)
	if found {
		d.logger().Info("🛑 Killing topology", "name", opts.Name, "nimbus", host)
	} else {
		d.logger().Info("🛑 Killing topology", "name", opts.Name)
	}
	return d.exec(KillRequest(d.StormBin, opts.Name, host))
}

// Status forwards the request to the reporting collaborator unmodified.
func (d *Dispatcher) Status(opts StatusOptions) error {
	return d.Reporter.Report(status.Request{
		Nimbus:   opts.Nimbus,
		Worker:   opts.Worker,
		Port:     opts.Port,
		Topology: opts.Topology,
	})
}
