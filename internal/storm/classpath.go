package storm

import (
	"path/filepath"
	"strings"
)

// ComposeClasspath builds the launch classpath for a packaged topology. The
// installation classpath is split on the platform list separator with empty
// entries dropped, order preserved. The artifact path is appended last; a
// nonempty extra entry is prepended ahead of everything so it wins lookup.
func ComposeClasspath(installCP, artifact, extra string) []string {
	parts := strings.Split(installCP, string(filepath.ListSeparator))

	entries := make([]string, 0, len(parts)+2)
	if extra != "" {
		entries = append(entries, extra)
	}
	for _, p := range parts {
		if p != "" {
			entries = append(entries, p)
		}
	}
	return append(entries, artifact)
}

// JoinClasspath joins classpath entries with the platform list separator.
func JoinClasspath(entries []string) string {
	return strings.Join(entries, string(filepath.ListSeparator))
}
