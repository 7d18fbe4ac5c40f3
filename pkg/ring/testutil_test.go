package ring

import (
	"os"
	"testing"
)

// chdir switches the process working directory to dir for the duration
// of a test, returning a function that restores the previous directory.
// Logging truncates output.log relative to the cwd, so tests that
// exercise it must sandbox themselves into a temp directory first.
func chdir(t *testing.T, dir string) func() {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("os.Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("os.Chdir(%s): %v", dir, err)
	}
	return func() {
		_ = os.Chdir(prev)
	}
}
