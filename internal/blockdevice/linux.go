package blockdevice

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/gajzzs/blockprobe/internal/command"
	"github.com/gajzzs/blockprobe/internal/host"
)

// reportHeader is the column header blockdev --report is expected to
// print; anything else means an incompatible blockdev.
var reportHeader = []string{"RO", "RA", "SSZ", "BSZ", "StartSec", "Size", "Device"}

type linuxFetcher struct {
	runner command.Runner
	host   *host.Host
}

func (f *linuxFetcher) fetch(path string) (*Snapshot, error) {
	res := f.runner.Run("blockdev", "--report", path)
	if res.Err != nil {
		return nil, &FetchError{Device: path, Reason: "running blockdev", Output: res.Err.Error()}
	}
	if res.ExitCode != 0 || res.Stderr != "" {
		return nil, &FetchError{Device: path, Reason: "blockdev failed", Output: strings.TrimSpace(res.Stderr)}
	}

	lines := strings.Split(strings.TrimRight(res.Stdout, "\n"), "\n")
	if len(lines) < 2 || lines[0] == "" {
		return nil, &FetchError{Device: path, Reason: "no data"}
	}
	if !equalFields(strings.Fields(lines[0]), reportHeader) {
		return nil, &FetchError{Device: path, Reason: "unknown blockdev output", Output: lines[0]}
	}

	fields := strings.Fields(lines[1])
	if len(fields) < 6 {
		return nil, &FetchError{Device: path, Reason: "truncated report line", Output: lines[1]}
	}

	snap := &Snapshot{
		RWMode:              fields[0],
		ZonedType:           ZonedNone,
		ZonedChunkSectors:   ZonedNone,
		ZonedNrZones:        ZonedNone,
		ZonedAppendMaxBytes: ZonedNone,
		ZonedMaxOpenZones:   ZonedNone,
		ZonedMaxActiveZones: ZonedNone,
	}
	for i, dst := range []*int64{
		&snap.ReadAhead, &snap.SectorSize, &snap.BlockSize, &snap.StartSector, &snap.Size,
	} {
		n, err := strconv.ParseInt(fields[i+1], 10, 64)
		if err != nil {
			return nil, &FetchError{Device: path, Reason: "non-numeric field in report line", Output: lines[1]}
		}
		*dst = n
	}

	if err := f.probeZoned(path, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// probeZoned fills the zoned fields of the snapshot, best effort. A
// missing sysfs attribute leaves its field at "none"; only a failed
// kernel version lookup is fatal, since it gates which attributes
// exist at all.
func (f *linuxFetcher) probeZoned(path string, snap *Snapshot) error {
	zonedType, ok := f.readQueueAttr(path, "zoned")
	if !ok || zonedType == "" {
		return nil
	}
	snap.ZonedType = zonedType

	if v, ok := f.readQueueAttr(path, "chunk_sectors"); ok {
		snap.ZonedChunkSectors = v
	}

	// nr_zones appeared in 4.20, zone_append_max_bytes in 5.8,
	// max_open_zones and max_active_zones in 5.9.
	ge, err := f.host.KernelVersionGE(4, 20)
	if err != nil {
		return err
	}
	if ge {
		if v, ok := f.readQueueAttr(path, "nr_zones"); ok {
			snap.ZonedNrZones = v
		}
	}
	if ge, err = f.host.KernelVersionGE(5, 8); err != nil {
		return err
	} else if ge {
		if v, ok := f.readQueueAttr(path, "zone_append_max_bytes"); ok {
			snap.ZonedAppendMaxBytes = v
		}
	}
	if ge, err = f.host.KernelVersionGE(5, 9); err != nil {
		return err
	} else if ge {
		if v, ok := f.readQueueAttr(path, "max_open_zones"); ok {
			snap.ZonedMaxOpenZones = v
		}
		if v, ok := f.readQueueAttr(path, "max_active_zones"); ok {
			snap.ZonedMaxActiveZones = v
		}
	}
	return nil
}

// readQueueAttr reads one /sys/block/<dev>/queue attribute through the
// runner, so it works on remote targets too.
func (f *linuxFetcher) readQueueAttr(path, attr string) (string, bool) {
	sysPath := fmt.Sprintf("/sys/block/%s/queue/%s", filepath.Base(path), attr)
	out, err := f.runner.CheckOutput("cat", sysPath)
	if err != nil {
		log.WithFields(log.Fields{
			"device": path,
			"attr":   attr,
		}).Debug("zoned attribute not readable")
		return "", false
	}
	return strings.TrimSpace(out), true
}

func equalFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
