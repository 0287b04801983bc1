// Package integration provides end-to-end tests for the pdb binary.
package integration

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	pdbBinary     string
	pdbBinaryOnce sync.Once
	pdbBinaryErr  error
)

// getPDBBinary builds the pdb binary once and returns its path.
func getPDBBinary(t *testing.T) string {
	t.Helper()
	pdbBinaryOnce.Do(func() {
		// Get module root directory
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			pdbBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		// Build pdb to a temp location
		tmpDir, err := os.MkdirTemp("", "pdb-test-*")
		if err != nil {
			pdbBinaryErr = err
			return
		}
		pdbBinary = filepath.Join(tmpDir, "pdb")

		cmd := exec.Command("go", "build", "-o", pdbBinary, "./cmd/pdb")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			pdbBinaryErr = &buildError{output: string(output), err: err}
			return
		}
	})
	if pdbBinaryErr != nil {
		t.Fatalf("failed to build pdb: %v", pdbBinaryErr)
	}
	return pdbBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// result is the outcome of one pdb invocation.
type result struct {
	stdout   string
	stderr   string
	exitCode int
}

// setupTestDB creates an empty database root with an isolated config home.
func setupTestDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}

// runPDB executes pdb in dir with stdin and returns its output and exit code.
// PDB_* variables from the caller's environment are dropped and
// XDG_CONFIG_HOME points inside dir, so only defaults apply.
func runPDB(t *testing.T, dir, stdin string, args ...string) result {
	t.Helper()
	cmd := exec.Command(getPDBBinary(t), args...)
	cmd.Dir = dir
	cmd.Env = append(filterEnv(os.Environ(), "PDB_"), "XDG_CONFIG_HOME="+filepath.Join(dir, "config"))
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := result{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("running pdb %v: %v", args, err)
		}
		res.exitCode = exitErr.ExitCode()
	}
	res.stdout = stdout.String()
	res.stderr = stderr.String()
	return res
}

// mustRun runs pdb and fails the test on a non-zero exit.
func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	res := runPDB(t, dir, "", args...)
	if res.exitCode != 0 {
		t.Fatalf("pdb %v exited %d\nstdout: %s\nstderr: %s", args, res.exitCode, res.stdout, res.stderr)
	}
	return res.stdout
}

// decode unmarshals JSON output into v.
func decode(t *testing.T, output string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
}

// filterEnv returns a copy of env without variables starting with prefix.
func filterEnv(env []string, prefix string) []string {
	result := make([]string, 0, len(env))
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			continue
		}
		result = append(result, e)
	}
	return result
}
