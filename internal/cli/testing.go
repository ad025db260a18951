package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drsam94/mmbccr/pkg/rom"
)

// CLI runs mmrando in-process against a temp working directory.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

// Result is the outcome of one invocation.
type Result struct {
	Stdout string
	Stderr string
	Code   int
}

// NewCLI creates a test CLI. Env starts empty so no global options file is
// picked up.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{
		t:   t,
		Dir: t.TempDir(),
		Env: map[string]string{},
	}
}

// Run invokes mmrando with args, prefixed by the program name and --cwd.
func (r *CLI) Run(args ...string) Result {
	return r.RunWithInput("", args...)
}

// RunWithInput is Run with stdin.
func (r *CLI) RunWithInput(stdin string, args ...string) Result {
	var out, errOut bytes.Buffer

	full := append([]string{"mmrando", "--cwd", r.Dir}, args...)
	code := Run(strings.NewReader(stdin), &out, &errOut, full, r.Env, nil)

	return Result{Stdout: out.String(), Stderr: errOut.String(), Code: code}
}

// MustRun fails the test unless the command exits 0, and returns trimmed
// stdout.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	res := r.Run(args...)
	if res.Code != 0 {
		r.t.Fatalf("mmrando %v: exit %d\nstderr: %s", args, res.Code, res.Stderr)
	}

	return strings.TrimSpace(res.Stdout)
}

// MustFail fails the test unless the command exits non-zero with nothing on
// stdout, and returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	res := r.Run(args...)

	switch {
	case res.Code == 0:
		r.t.Fatalf("mmrando %v: want failure, got exit 0\nstdout: %s", args, res.Stdout)
	case res.Stdout != "":
		r.t.Fatalf("mmrando %v: failed but wrote stdout: %s", args, res.Stdout)
	}

	return strings.TrimSpace(res.Stderr)
}

// Path returns name inside the working directory.
func (r *CLI) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// WriteFile writes content to name inside the working directory.
func (r *CLI) WriteFile(name string, content []byte) {
	r.t.Helper()

	if err := os.WriteFile(r.Path(name), content, 0o600); err != nil {
		r.t.Fatalf("write %s: %v", name, err)
	}
}

// WriteROM writes a copy of img's bytes to name.
func (r *CLI) WriteROM(name string, img *rom.Image) {
	r.t.Helper()

	r.WriteFile(name, img.Bytes())
}

// ReadROM loads name as an image.
func (r *CLI) ReadROM(name string) *rom.Image {
	r.t.Helper()

	img, err := rom.Load(r.Path(name))
	if err != nil {
		r.t.Fatalf("load %s: %v", name, err)
	}

	return img
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("missing %q in:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("unexpected %q in:\n%s", substr, content)
	}
}
