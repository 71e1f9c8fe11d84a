package command

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

// LocalRunner executes commands on the machine blockprobe runs on.
type LocalRunner struct{}

func NewLocalRunner() LocalRunner {
	return LocalRunner{}
}

func (LocalRunner) Run(name string, args ...string) Result {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			res.Err = err
		}
	}

	log.WithFields(log.Fields{
		"command": name,
		"args":    strings.Join(args, " "),
		"exit":    res.ExitCode,
	}).Debug("ran local command")
	return res
}

func (r LocalRunner) CheckOutput(name string, args ...string) (string, error) {
	res := r.Run(name, args...)
	if res.Err != nil {
		return "", res.Err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s exited with status %d: %s",
			name, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}
