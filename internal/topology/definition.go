package topology

import (
	"fmt"
	"strings"
)

// A Definition references the user code that constructs the job graph: a
// module in the working directory and the function inside it to invoke,
// written MODULE:FUNC. The reference is validated here and then forwarded
// opaquely.
type Definition struct {
	Module   string
	Function string
}

// ParseDefinition parses a MODULE:FUNC reference.
func ParseDefinition(ref string) (*Definition, error) {
	module, function, ok := strings.Cut(ref, ":")
	if !ok || module == "" || function == "" || strings.Contains(function, ":") {
		return nil, fmt.Errorf("%w: definition %q must be MODULE:FUNC", ErrConfig, ref)
	}
	if strings.ContainsAny(module, `/\`) {
		return nil, fmt.Errorf("%w: definition module %q must live in the working directory", ErrConfig, module)
	}
	return &Definition{Module: module, Function: function}, nil
}

// ModuleFile is the source file the module name resolves to.
func (d *Definition) ModuleFile() string { return d.Module + ".py" }

func (d *Definition) String() string { return d.Module + ":" + d.Function }
