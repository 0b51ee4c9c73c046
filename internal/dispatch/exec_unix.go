//go:build !windows

package dispatch

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/hashicorp/go-hclog"

	"github.com/fourk/Petrel/internal/storm"
)

// Exec transfers control to the request's executable by replacing the
// current process image; on success it never returns. PETREL_EXEC_MODE=spawn
// selects the spawn fallback instead.
func Exec(req *Request, logger hclog.Logger) error {
	if strings.EqualFold(os.Getenv(execModeEnv), "spawn") {
		logger.Debug("👶 Using spawn mode (child process)")
		return spawn(req, logger)
	}

	binary, err := exec.LookPath(req.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", storm.ErrToolInvocation, req.Path, err)
	}

	if req.Dir != "" {
		if err := os.Chdir(req.Dir); err != nil {
			return fmt.Errorf("%w: chdir %s: %v", storm.ErrToolInvocation, req.Dir, err)
		}
	}

	logger.Info("🔄 Replacing process via exec()", "binary", binary)
	logger.Debug("🚀 Full command with args", "args", req.Argv[1:])

	// Never returns on success.
	err = syscall.Exec(binary, req.Argv, req.env())
	return fmt.Errorf("%w: exec %s: %v", storm.ErrToolInvocation, binary, err)
}
