// The cmd/ package holds CLI integration tests that drive the built binary:
// command parsing -> extension -> service layer -> store layer -> SQLite.
//
// Packages with unit tests of their own (story, validate, normalise, diff)
// are exercised here only through the commands that use them.

package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the sopstory binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "sopstory-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "sopstory"
		if os.PathSeparator == '\\' {
			binaryName = "sopstory.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		// Project root is the parent of cmd/
		projectRoot := filepath.Dir(mustGetwd())

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
			return
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state.
type testEnv struct {
	t      *testing.T
	dir    string
	home   string
	binary string
}

// newTestEnv creates a temporary directory with an initialised ledger.
// HOME points at a second temp directory so the global config of the
// machine running the tests is never read or written.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newBareEnv(t)
	env.run("init")
	return env
}

// newBareEnv is newTestEnv without a ledger.
func newBareEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		t:      t,
		dir:    t.TempDir(),
		home:   t.TempDir(),
		binary: buildBinary(t),
	}
}

func (e *testEnv) command(args ...string) *exec.Cmd {
	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Env = append(os.Environ(), "HOME="+e.home, "SOPSTORY_DB=", "SOPSTORY_DIR=")
	return cmd
}

// run executes sopstory with the given args and returns combined output.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("sopstory %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runErr executes sopstory and returns output and any error.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()
	out, err := e.command(args...).CombinedOutput()
	return string(out), err
}

// runStdin executes sopstory with stdin input.
func (e *testEnv) runStdin(input string, args ...string) string {
	e.t.Helper()
	cmd := e.command(args...)
	cmd.Stdin = strings.NewReader(input)
	out, err := cmd.CombinedOutput()
	if err != nil {
		e.t.Fatalf("sopstory %v failed: %v\noutput: %s", args, err, out)
	}
	return string(out)
}

// exitCode runs sopstory and returns its output and exit status.
func (e *testEnv) exitCode(args ...string) (string, int) {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err == nil {
		return out, 0
	}
	exitErr, ok := err.(*exec.ExitError)
	require.True(e.t, ok, "unexpected error: %v", err)
	return out, exitErr.ExitCode()
}

// write creates a file relative to the test directory.
func (e *testEnv) write(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0644))
	return name
}

// read returns a file relative to the test directory.
func (e *testEnv) read(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dir, name))
	require.NoError(e.t, err)
	return string(data)
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// equals checks if output equals expected string (trimmed).
func (e *testEnv) equals(output, expected string) {
	e.t.Helper()
	assert.Equal(e.t, strings.TrimSpace(expected), strings.TrimSpace(output))
}

// Stories used across the tests. storyV2 adds a step to storyV1.
const (
	storyV1 = `{"sop_id":"SOP-1","start_code":"A","frames":[
 {"frame_code":"A","title":"Isolate power","image":"/outputs/images/SOP-1/A.png","choices":[{"to":"B","label":"Done"}]},
 {"frame_code":"B","title":"Tag out"}]}`

	storyV2 = `{"sop_id":"SOP-1","start_code":"A","frames":[
 {"frame_code":"A","title":"Isolate power","image":"/outputs/images/SOP-1/A.png","choices":[{"to":"B","label":"Done"}]},
 {"frame_code":"B","title":"Tag out","choices":[{"to":"C"}]},
 {"frame_code":"C","title":"Verify dead"}]}`

	storyOther = `{"sop_id":"SOP-2","start_code":"A","frames":[{"frame_code":"A","title":"Only step"}]}`

	storyBad = `{"sop_id":"SOP-3","start_code":"A","frames":[
 {"frame_code":"A","title":"Start","choices":[{"to":"Z"}]}]}`
)
