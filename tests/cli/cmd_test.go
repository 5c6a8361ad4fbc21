// SPDX-License-Identifier: MPL-2.0

// Package cli contains CLI integration tests using testscript. Every script
// runs the cauldron binary against bare git remotes created in its work
// directory.
package cli

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/rogpeppe/go-internal/testscript"
)

// binaryPath is the path to the built cauldron binary.
var binaryPath string

func TestMain(m *testing.M) {
	wd, err := os.Getwd()
	if err != nil {
		panic("failed to get working directory: " + err.Error())
	}

	projectRoot := wd
	for {
		if _, err := os.Stat(filepath.Join(projectRoot, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(projectRoot)
		if parent == projectRoot {
			panic("could not find project root (go.mod)")
		}
		projectRoot = parent
	}

	binDir, err := os.MkdirTemp("", "cauldron-cli")
	if err != nil {
		panic("failed to create bin directory: " + err.Error())
	}

	binaryName := "cauldron"
	if runtime.GOOS == "windows" {
		binaryName = "cauldron.exe"
	}
	binaryPath = filepath.Join(binDir, binaryName)

	cmd := exec.CommandContext(context.Background(), "go", "build", "-o", binaryPath, ".")
	cmd.Dir = projectRoot
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build cauldron: " + err.Error())
	}

	code := m.Run()
	_ = os.RemoveAll(binDir)
	os.Exit(code)
}

// TestCLI runs all testscript tests in the testdata directory.
func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			binDir := filepath.Dir(binaryPath)
			env.Setenv("PATH", binDir+string(os.PathListSeparator)+env.Getenv("PATH"))
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, ".config"))
			env.Setenv("XDG_CACHE_HOME", filepath.Join(env.WorkDir, ".cache"))
			env.Setenv("NO_COLOR", "1")
			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"initremote": cmdInitRemote,
		},
		ContinueOnError: true,
	})
}

// cmdInitRemote creates an empty bare git repository: initremote <dir>.
func cmdInitRemote(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! initremote")
	}
	if len(args) != 1 {
		ts.Fatalf("usage: initremote <dir>")
	}
	if _, err := git.PlainInit(ts.MkAbs(args[0]), true); err != nil {
		ts.Fatalf("initremote: %v", err)
	}
}
