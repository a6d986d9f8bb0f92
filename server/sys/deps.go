package sys

import (
	"fmt"
	"os/exec"
)

// MissingDependencies lists the binaries that cannot be found in PATH.
func MissingDependencies(binaries ...string) []error {
	var missing []error

	for _, bin := range binaries {
		if bin == "" {
			continue
		}
		if _, err := exec.LookPath(bin); err != nil {
			missing = append(missing, fmt.Errorf("%s not found: %w", bin, err))
		}
	}

	return missing
}
