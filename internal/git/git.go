// Package git answers which files changed since a ref, for --since runs.
package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// ChangedFiles runs git diff --name-only against baseRef and returns the
// changed paths, relative to the repository root.
func ChangedFiles(baseRef string) ([]string, error) {
	cmd := exec.Command("git", "diff", "--name-only", baseRef)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	return parseNameOnly(string(output)), nil
}

func parseNameOnly(output string) []string {
	var paths []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}
