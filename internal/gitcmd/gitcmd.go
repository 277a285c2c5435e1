// Package gitcmd shells out to the installed git binary.
package gitcmd

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
)

// Runner executes git with explicit arguments in a working directory and
// returns the combined stdout/stderr text. A non-zero exit status is an
// error carrying that same text.
type Runner interface {
	Run(dir string, args ...string) (string, error)
}

type execRunner struct{}

// New returns a Runner backed by the git executable on PATH.
func New() Runner {
	return execRunner{}
}

func (execRunner) Run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	combined := combine(stdout.String(), stderr.String())

	if runErr == nil {
		return combined, nil
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if combined == "" {
			return "", runErr
		}
		return "", errors.New(combined)
	}
	return "", runErr
}

func combine(stdout, stderr string) string {
	if strings.TrimSpace(stderr) == "" {
		return stdout
	}
	if strings.TrimSpace(stdout) == "" {
		return stderr
	}
	return stdout + "\n" + stderr
}
