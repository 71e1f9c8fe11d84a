package command

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	runner := NewLocalRunner()

	t.Run("captures stdout, stderr and exit code", func(t *testing.T) {
		res := runner.Run("sh", "-c", "echo out; echo err 1>&2; exit 3")
		require.NoError(t, res.Err)
		assert.Equal(t, 3, res.ExitCode)
		assert.Equal(t, "out\n", res.Stdout)
		assert.Equal(t, "err\n", res.Stderr)
	})

	t.Run("zero exit on success", func(t *testing.T) {
		res := runner.Run("sh", "-c", "echo ok")
		require.NoError(t, res.Err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Equal(t, "ok\n", res.Stdout)
	})

	t.Run("missing binary sets Err", func(t *testing.T) {
		res := runner.Run("blockprobe-no-such-binary")
		require.Error(t, res.Err)
		assert.Equal(t, -1, res.ExitCode)
	})

	t.Run("CheckOutput returns stdout", func(t *testing.T) {
		out, err := runner.CheckOutput("sh", "-c", "echo ok")
		require.NoError(t, err)
		assert.Equal(t, "ok\n", out)
	})

	t.Run("CheckOutput fails on non-zero exit", func(t *testing.T) {
		_, err := runner.CheckOutput("sh", "-c", "echo broken 1>&2; exit 1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken")
	})
}

func TestShellJoin(t *testing.T) {
	assert.Equal(t, "blockdev --report /dev/sda1",
		shellJoin("blockdev", []string{"--report", "/dev/sda1"}))
	assert.Equal(t, "cat '/dev/my disk'",
		shellJoin("cat", []string{"/dev/my disk"}))
}
