//go:build windows

package dispatch

import (
	"github.com/hashicorp/go-hclog"
)

// Exec transfers control to the request's executable. Process replacement
// does not exist on Windows, so every dispatch uses the spawn fallback:
// functionally equivalent, observable as two processes.
func Exec(req *Request, logger hclog.Logger) error {
	logger.Debug("💻 Windows detected - using spawn mode")
	return spawn(req, logger)
}
