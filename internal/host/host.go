package host

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	gopshost "github.com/shirou/gopsutil/v3/host"

	"github.com/gajzzs/blockprobe/internal/command"
)

// Host is an inspection target: the local machine or a remote one
// reached through a command.Runner. OS family and kernel release are
// looked up once and cached.
type Host struct {
	runner command.Runner
	local  bool

	os     string
	kernel string
}

// Local returns the machine blockprobe itself runs on.
func Local() *Host {
	return &Host{runner: command.NewLocalRunner(), local: true}
}

// Remote returns a host reached through the given runner.
func Remote(runner command.Runner) *Host {
	return &Host{runner: runner}
}

func (h *Host) Runner() command.Runner {
	return h.runner
}

// OS returns the host OS family, e.g. "linux" or "darwin".
func (h *Host) OS() (string, error) {
	if h.os != "" {
		return h.os, nil
	}
	if h.local {
		info, err := gopshost.Info()
		if err != nil {
			return "", fmt.Errorf("getting local host info: %w", err)
		}
		h.os = info.OS
		return h.os, nil
	}
	out, err := h.runner.CheckOutput("uname", "-s")
	if err != nil {
		return "", fmt.Errorf("detecting remote OS: %w", err)
	}
	h.os = strings.ToLower(strings.TrimSpace(out))
	return h.os, nil
}

// KernelRelease returns the kernel release string, e.g. "5.15.0-52-generic".
func (h *Host) KernelRelease() (string, error) {
	if h.kernel != "" {
		return h.kernel, nil
	}
	if h.local {
		rel, err := gopshost.KernelVersion()
		if err != nil {
			return "", fmt.Errorf("getting local kernel release: %w", err)
		}
		h.kernel = rel
		return h.kernel, nil
	}
	out, err := h.runner.CheckOutput("uname", "-r")
	if err != nil {
		return "", fmt.Errorf("getting remote kernel release: %w", err)
	}
	h.kernel = strings.TrimSpace(out)
	return h.kernel, nil
}

var kernelReleaseRe = regexp.MustCompile(`^(\d+)\.(\d+)\.`)

// ParseKernelRelease extracts the major and minor version from a kernel
// release string such as "5.15.0-52-generic".
func ParseKernelRelease(release string) (int, int, error) {
	m := kernelReleaseRe.FindStringSubmatch(release)
	if m == nil {
		return 0, 0, fmt.Errorf("unrecognized kernel release %q", release)
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, err
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}

// KernelVersionGE reports whether the host kernel is at least
// major.minor.
func (h *Host) KernelVersionGE(major, minor int) (bool, error) {
	release, err := h.KernelRelease()
	if err != nil {
		return false, err
	}
	haveMajor, haveMinor, err := ParseKernelRelease(release)
	if err != nil {
		return false, err
	}
	if haveMajor != major {
		return haveMajor > major, nil
	}
	return haveMinor >= minor, nil
}
