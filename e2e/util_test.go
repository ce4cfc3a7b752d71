package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"gotest.tools/v3/icmd"
)

var mergesortPath string

// goBuildMergesort compiles the engine binary once per test run into a
// scratch directory and returns a cleanup func that removes it.
func goBuildMergesort() func() {
	tmpdir, err := os.MkdirTemp("", "mergesort-e2e")
	if err != nil {
		panic(err)
	}

	mergesortPath = filepath.Join(tmpdir, "mergesort")

	workdir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	// 'go build' will change the working directory to the path where tests
	// reside; workdir should be the module root.
	workdir = filepath.Dir(workdir)

	cmd := exec.Command("go", "build", "-o", mergesortPath, "./cmd/mergesort")
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stdout
	cmd.Dir = workdir

	if err := cmd.Run(); err != nil {
		panic(fmt.Sprintf("failed to build mergesort binary: %s", err))
	}

	return func() { os.RemoveAll(tmpdir) }
}

// mergesort returns an icmd.Cmd invoking the compiled binary with args,
// run from dir.
func mergesort(dir string, args ...string) icmd.Cmd {
	cmd := icmd.Command(mergesortPath, args...)
	cmd.Dir = dir
	return cmd
}

func writeFile(t *testing.T, dir, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return b
}
