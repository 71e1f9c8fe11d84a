package host

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gajzzs/blockprobe/internal/command"
)

type fakeRunner struct {
	osName string
	kernel string
	calls  int
}

func (f *fakeRunner) Run(name string, args ...string) command.Result {
	out, err := f.CheckOutput(name, args...)
	if err != nil {
		return command.Result{ExitCode: 1, Stderr: err.Error()}
	}
	return command.Result{Stdout: out}
}

func (f *fakeRunner) CheckOutput(name string, args ...string) (string, error) {
	f.calls++
	if name != "uname" {
		return "", fmt.Errorf("unexpected command %s", name)
	}
	if len(args) > 0 && args[0] == "-s" {
		return f.osName + "\n", nil
	}
	return f.kernel + "\n", nil
}

func TestParseKernelRelease(t *testing.T) {
	testCases := []struct {
		release string
		major   int
		minor   int
		wantErr bool
	}{
		{release: "5.15.0-52-generic", major: 5, minor: 15},
		{release: "4.18.0-1-generic", major: 4, minor: 18},
		{release: "6.2.0", major: 6, minor: 2},
		{release: "generic-5.15", wantErr: true},
		{release: "5.15", wantErr: true},
		{release: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.release, func(t *testing.T) {
			major, minor, err := ParseKernelRelease(tc.release)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.major, major)
			assert.Equal(t, tc.minor, minor)
		})
	}
}

func TestKernelVersionGE(t *testing.T) {
	testCases := []struct {
		kernel string
		major  int
		minor  int
		want   bool
	}{
		{kernel: "5.15.0-52-generic", major: 5, minor: 15, want: true},
		{kernel: "5.15.0-52-generic", major: 5, minor: 16, want: false},
		{kernel: "4.18.0-1-generic", major: 5, minor: 15, want: false},
		{kernel: "6.2.0-39-generic", major: 5, minor: 8, want: true},
		{kernel: "4.20.0-1-generic", major: 4, minor: 20, want: true},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s>=%d.%d", tc.kernel, tc.major, tc.minor), func(t *testing.T) {
			h := Remote(&fakeRunner{kernel: tc.kernel})
			got, err := h.KernelVersionGE(tc.major, tc.minor)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestKernelVersionGEMalformedRelease(t *testing.T) {
	h := Remote(&fakeRunner{kernel: "weird-kernel-string"})
	_, err := h.KernelVersionGE(5, 15)
	require.Error(t, err)
}

func TestRemoteOSDetection(t *testing.T) {
	runner := &fakeRunner{osName: "Linux"}
	h := Remote(runner)

	osName, err := h.OS()
	require.NoError(t, err)
	assert.Equal(t, "linux", osName)
}

func TestHostFactsCached(t *testing.T) {
	runner := &fakeRunner{osName: "Linux", kernel: "5.15.0-52-generic"}
	h := Remote(runner)

	for i := 0; i < 3; i++ {
		_, err := h.OS()
		require.NoError(t, err)
		_, err = h.KernelRelease()
		require.NoError(t, err)
	}
	assert.Equal(t, 2, runner.calls)
}
