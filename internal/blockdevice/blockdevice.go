// Package blockdevice reports properties of block storage devices on an
// inspection target by running blockdev --report and probing zoned
// device attributes from sysfs.
package blockdevice

import (
	"fmt"

	"github.com/gajzzs/blockprobe/internal/host"
)

// ZonedNone is the zoned type of a device without a zoned model, and
// the placeholder for zoned parameters that could not be probed.
const ZonedNone = "none"

// Snapshot holds the attributes of one device, gathered in a single
// fetch. Zoned sub-parameters stay raw strings as read from sysfs.
type Snapshot struct {
	RWMode      string
	ReadAhead   int64
	SectorSize  int64
	BlockSize   int64
	StartSector int64
	Size        int64

	ZonedType           string
	ZonedChunkSectors   string
	ZonedNrZones        string
	ZonedAppendMaxBytes string
	ZonedMaxOpenZones   string
	ZonedMaxActiveZones string
}

type fetcher interface {
	fetch(path string) (*Snapshot, error)
}

// Device is a handle on one block device of a target host. Attributes
// are fetched once on first access and cached for the handle lifetime.
type Device struct {
	Path string

	host     *host.Host
	fetcher  fetcher
	snapshot *Snapshot
}

// New returns a handle on the device at path. The fetcher is selected
// by the target host OS; only Linux targets are supported.
func New(h *host.Host, path string) (*Device, error) {
	osName, err := h.OS()
	if err != nil {
		return nil, err
	}
	switch osName {
	case "linux":
		return &Device{
			Path:    path,
			host:    h,
			fetcher: &linuxFetcher{runner: h.Runner(), host: h},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, osName)
	}
}

// data fetches the snapshot on first use. Only a successful fetch is
// cached; a failed one is reported and may be retried on next access.
func (d *Device) data() (*Snapshot, error) {
	if d.snapshot == nil {
		snap, err := d.fetcher.fetch(d.Path)
		if err != nil {
			return nil, err
		}
		d.snapshot = snap
	}
	return d.snapshot, nil
}

// Snapshot returns all attributes of the device.
func (d *Device) Snapshot() (*Snapshot, error) {
	return d.data()
}

// IsPartition reports whether the device is a partition rather than a
// whole device; partitions start at a non-zero sector.
func (d *Device) IsPartition() (bool, error) {
	snap, err := d.data()
	if err != nil {
		return false, err
	}
	return snap.StartSector > 0, nil
}

// Size returns the device size in bytes.
func (d *Device) Size() (int64, error) {
	snap, err := d.data()
	if err != nil {
		return 0, err
	}
	return snap.Size, nil
}

// SectorSize returns the logical sector size in bytes.
func (d *Device) SectorSize() (int64, error) {
	snap, err := d.data()
	if err != nil {
		return 0, err
	}
	return snap.SectorSize, nil
}

// BlockSize returns the block size in bytes.
func (d *Device) BlockSize() (int64, error) {
	snap, err := d.data()
	if err != nil {
		return 0, err
	}
	return snap.BlockSize, nil
}

// StartSector returns the sector where the device starts on its
// underlying device; zero for whole-device nodes.
func (d *Device) StartSector() (int64, error) {
	snap, err := d.data()
	if err != nil {
		return 0, err
	}
	return snap.StartSector, nil
}

// IsWritable reports whether the device is writable. Any mode other
// than "rw" or "ro" is an InvalidValueError.
func (d *Device) IsWritable() (bool, error) {
	snap, err := d.data()
	if err != nil {
		return false, err
	}
	switch snap.RWMode {
	case "rw":
		return true, nil
	case "ro":
		return false, nil
	default:
		return false, &InvalidValueError{Field: "rw", Value: snap.RWMode}
	}
}

// ReadAhead returns the device read-ahead in 512-byte sectors.
func (d *Device) ReadAhead() (int64, error) {
	snap, err := d.data()
	if err != nil {
		return 0, err
	}
	return snap.ReadAhead, nil
}

// Zoned reports whether the device exposes a zoned model.
func (d *Device) Zoned() (bool, error) {
	snap, err := d.data()
	if err != nil {
		return false, err
	}
	return snap.ZonedType != ZonedNone, nil
}

// ZonedType returns the zoned model, e.g. "host-managed", or "none".
func (d *Device) ZonedType() (string, error) {
	snap, err := d.data()
	if err != nil {
		return "", err
	}
	return snap.ZonedType, nil
}

// GetZonedParam returns the named zoned parameter. The second return
// is false for parameter names this module does not know; an unknown
// name is not an error.
func (d *Device) GetZonedParam(name string) (string, bool, error) {
	snap, err := d.data()
	if err != nil {
		return "", false, err
	}
	switch name {
	case "type":
		return snap.ZonedType, true, nil
	case "chunk_sectors":
		return snap.ZonedChunkSectors, true, nil
	case "nr_zones":
		return snap.ZonedNrZones, true, nil
	case "zone_append_max_bytes":
		return snap.ZonedAppendMaxBytes, true, nil
	case "max_open_zones":
		return snap.ZonedMaxOpenZones, true, nil
	case "max_active_zones":
		return snap.ZonedMaxActiveZones, true, nil
	default:
		return "", false, nil
	}
}

// KernelVersionGE reports whether the target host kernel is at least
// major.minor.
func (d *Device) KernelVersionGE(major, minor int) (bool, error) {
	return d.host.KernelVersionGE(major, minor)
}
