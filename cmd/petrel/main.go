// Command petrel packages Python topologies into deployable JARs and
// dispatches submit / status / kill against a Storm cluster. submit and kill
// finish by replacing this process with the cluster's own launcher; only
// failures before that hand-off ever return here.
package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fourk/Petrel/internal/assemble"
	"github.com/fourk/Petrel/internal/config"
	"github.com/fourk/Petrel/internal/dispatch"
	"github.com/fourk/Petrel/internal/runtimejar"
	"github.com/fourk/Petrel/internal/status"
	"github.com/fourk/Petrel/internal/storm"
	"github.com/fourk/Petrel/internal/topology"
	"github.com/fourk/Petrel/pkg/logging"
)

const version = "0.1.0"

// exitPanic distinguishes a crashed invocation from an ordinary failure.
const exitPanic = 101

func buildTimestamp() string {
	// Try to get vcs.time from build info
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	// Fallback to binary modification time
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// newDispatcher wires the collaborators for one invocation from the tool
// settings and environment.
func newDispatcher() (*dispatch.Dispatcher, error) {
	logger := logging.Setup("petrel")

	settings, err := config.Load("")
	if err != nil {
		return nil, err
	}

	tool := storm.NewTool(settings.Storm.Bin, logger.Named("storm"))
	cache := &runtimejar.Cache{
		Root:         settings.Cache.Dir,
		SourceDir:    settings.Source.Dir,
		BuildCommand: settings.Build.Command,
		Runner:       storm.DefaultRunner(),
		Logger:       logger.Named("runtimejar"),
	}
	reporter := &status.Client{
		Scheme: settings.UI.Scheme,
		Port:   settings.UI.Port,
		Logger: logger.Named("status"),
	}

	return &dispatch.Dispatcher{
		Tool:      tool,
		Cache:     cache,
		Assembler: &assemble.Assembler{Logger: logger.Named("assemble")},
		Reporter:  reporter,
		JavaBin:   settings.Java.Bin,
		StormBin:  settings.Storm.Bin,
		Logger:    logger.Named("dispatch"),
	}, nil
}

func newSubmitCommand() *cobra.Command {
	var (
		sourceJar    string
		destJar      string
		configPath   string
		definition   string
		venv         string
		logDir       string
		extraStormCP string
	)

	cmd := &cobra.Command{
		Use:   "submit [NAME]",
		Short: "Package a topology and submit it to the cluster",
		Long: `Package a topology JAR and submit it to Storm.

If NAME is provided, the topology is submitted to the cluster. If omitted,
the topology runs in local mode.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var def *topology.Definition
			if definition != "" {
				parsed, err := topology.ParseDefinition(definition)
				if err != nil {
					return err
				}
				def = parsed
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			}

			dispatcher, err := newDispatcher()
			if err != nil {
				return err
			}
			return dispatcher.Submit(dispatch.SubmitOptions{
				SourceJar:    sourceJar,
				DestJar:      destJar,
				ConfigPath:   configPath,
				Definition:   def,
				Venv:         venv,
				LogDir:       logDir,
				ExtraStormCP: extraStormCP,
				Name:         name,
			})
		},
	}

	cmd.Flags().StringVar(&sourceJar, "sourcejar", "", "source JAR path (default: the cached runtime archive for the installed storm version)")
	cmd.Flags().StringVar(&destJar, "destjar", "topology.jar", "destination JAR path")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file with the topology configuration (required)")
	cmd.Flags().StringVar(&definition, "definition", "", "python module and function defining the topology, as MODULE:FUNC (must be in current directory)")
	cmd.Flags().StringVar(&venv, "venv", "", "an existing virtual environment to reuse on the server")
	cmd.Flags().StringVar(&logDir, "logdir", "", "root directory for logfiles (default: the storm supervisor directory)")
	cmd.Flags().StringVar(&extraStormCP, "extrastormcp", "", "extra jars on the storm classpath, useful for controlling log4j")
	if err := cmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
	return cmd
}

func newStatusCommand() *cobra.Command {
	var (
		worker   string
		port     string
		topoName string
	)

	cmd := &cobra.Command{
		Use:   "status NIMBUS",
		Short: "Report status of running topologies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := dispatch.StatusOptions{Nimbus: args[0]}

			// Only filters given on the command line are forwarded; an
			// omitted filter stays nil, which matches everything.
			if cmd.Flags().Changed("worker") {
				opts.Worker = &worker
			}
			if cmd.Flags().Changed("port") {
				opts.Port = &port
			}
			if cmd.Flags().Changed("topology") {
				opts.Topology = &topoName
			}

			dispatcher, err := newDispatcher()
			if err != nil {
				return err
			}
			return dispatcher.Status(opts)
		},
	}

	cmd.Flags().StringVar(&worker, "worker", "", "only list tasks on this worker")
	cmd.Flags().StringVar(&port, "port", "", "only list tasks on this port number")
	cmd.Flags().StringVar(&topoName, "topology", "", "only list information on this topology")
	return cmd
}

func newKillCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "kill NAME",
		Short: "Kill a topology running on a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatcher, err := newDispatcher()
			if err != nil {
				return err
			}
			return dispatcher.Kill(dispatch.KillOptions{
				Name:       args[0],
				ConfigPath: configPath,
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML file with the topology configuration (required)")
	if err := cmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
	return cmd
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "petrel",
		Short: "Petrel command line",
		Long:  `Package Python topologies into deployable JARs and dispatch them to a Storm cluster.`,
		// Errors are reported once, by main, with a diagnostic trace.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSubmitCommand(), newStatusCommand(), newKillCommand())
	return root
}

func main() {
	// Set up panic recovery to return specific exit code
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			debug.PrintStack()
			os.Exit(exitPanic)
		}
	}()

	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("petrel %s\n", version)
		fmt.Printf("Built: %s\n", buildTimestamp())
		os.Exit(0)
	}

	// A .env beside the invocation may carry PETREL_* settings; missing is
	// the common case and not an error.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		debug.PrintStack()
		os.Exit(1)
	}
}
