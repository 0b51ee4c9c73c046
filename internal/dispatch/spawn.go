package dispatch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"

	"github.com/fourk/Petrel/internal/storm"
)

// spawn runs the request as a child with inherited stdio, forwards
// interrupt/termination signals to it, and exits with the child's exact
// status code. Only start failures return.
func spawn(req *Request, logger hclog.Logger) error {
	binary, err := exec.LookPath(req.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", storm.ErrToolInvocation, req.Path, err)
	}

	cmd := &exec.Cmd{
		Path:   binary,
		Args:   req.Argv,
		Dir:    req.Dir,
		Env:    req.env(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	logger.Info("🚀 Spawning child process", "command", binary)
	logger.Debug("🚀 Full command with args", "args", req.Argv[1:])

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: starting %s: %v", storm.ErrToolInvocation, binary, err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range signals {
			logger.Debug("📡 Forwarding signal to child", "signal", sig)
			cmd.Process.Signal(sig)
		}
	}()

	err = cmd.Wait()
	signal.Stop(signals)
	close(signals)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Info("⏹️ Process exited", "code", exitErr.ExitCode())
			os.Exit(exitErr.ExitCode())
		}
		return fmt.Errorf("%w: %s: %v", storm.ErrToolInvocation, binary, err)
	}

	logger.Info("⏹️ Process exited successfully", "code", 0)
	os.Exit(0)
	return nil
}
