package dispatch

import (
	"os"

	"github.com/fourk/Petrel/internal/storm"
)

// launcherClass is the generic-topology entry point inside the runtime
// archive; it reads the job definition out of the artifact's resources.
const launcherClass = "storm.petrel.GenericTopology"

// A Request is one resolved external-process transfer: executable, argument
// vector, working directory, and environment. Requests are built fresh per
// command and never reused.
//
// Argv[0] is always an empty placeholder; the executable travels in Path and
// the child receives the vector verbatim.
type Request struct {
	Path string
	Argv []string
	Dir  string
	Env  []string
}

func (r *Request) env() []string {
	if r.Env == nil {
		return os.Environ()
	}
	return r.Env
}

// SubmitRequest builds the JVM invocation handing the packaged topology to
// the generic launcher. An empty name means the launcher's own local mode:
// no trailing positional is passed.
func SubmitRequest(javaBin, stormHome string, classpath []string, destJar, name string) *Request {
	argv := []string{
		"",
		"-client",
		"-Dstorm.options=",
		"-Dstorm.home=" + stormHome,
		"-cp", storm.JoinClasspath(classpath),
		"-Dstorm.jar=" + destJar,
		launcherClass,
	}
	if name != "" {
		argv = append(argv, name)
	}
	return &Request{Path: javaBin, Argv: argv, Env: os.Environ()}
}

// KillRequest builds the cluster manager's own kill invocation, routed to
// the configured coordinator host when one is set.
func KillRequest(stormBin, name, nimbusHost string) *Request {
	argv := []string{"", "kill", name}
	if nimbusHost != "" {
		argv = append(argv, "-c", "nimbus.host="+nimbusHost)
	}
	return &Request{Path: stormBin, Argv: argv, Env: os.Environ()}
}
