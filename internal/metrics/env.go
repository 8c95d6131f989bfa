package metrics

import "os"

// isCI reports whether the process appears to be running under a CI
// system, per the conventional CI=true environment variable.
func isCI() bool {
	return os.Getenv("CI") == "true" || os.Getenv("CI") == "1"
}
