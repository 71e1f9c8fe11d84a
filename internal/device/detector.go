package device

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// BlockDevice describes one entry under /sys/block on the local machine.
type BlockDevice struct {
	Name       string
	DevPath    string
	SizeBytes  uint64
	Removable  bool
	Partitions []Partition
}

type Partition struct {
	Name       string
	DevPath    string
	MountPoint string
	FSType     string
}

// List enumerates local block devices from sysfs, attaching mount
// information from the partition table.
func List() ([]BlockDevice, error) {
	var devices []BlockDevice

	blockDevs, err := filepath.Glob("/sys/block/*")
	if err != nil {
		return devices, err
	}

	mounts := mountsByDevice()

	for _, blockDev := range blockDevs {
		devName := filepath.Base(blockDev)
		dev := BlockDevice{
			Name:      devName,
			DevPath:   "/dev/" + devName,
			Removable: readSysfsFlag(filepath.Join(blockDev, "removable")),
			SizeBytes: readSysfsSectors(filepath.Join(blockDev, "size")),
		}

		// Partitions live as subdirectories named after the device
		partDirs, _ := filepath.Glob(filepath.Join(blockDev, devName+"*"))
		for _, partDir := range partDirs {
			partName := filepath.Base(partDir)
			part := Partition{
				Name:    partName,
				DevPath: "/dev/" + partName,
			}
			if m, ok := mounts[part.DevPath]; ok {
				part.MountPoint = m.Mountpoint
				part.FSType = m.Fstype
			}
			dev.Partitions = append(dev.Partitions, part)
		}
		if m, ok := mounts[dev.DevPath]; ok && len(dev.Partitions) == 0 {
			dev.Partitions = append(dev.Partitions, Partition{
				Name:       devName,
				DevPath:    dev.DevPath,
				MountPoint: m.Mountpoint,
				FSType:     m.Fstype,
			})
		}

		devices = append(devices, dev)
	}

	return devices, nil
}

func mountsByDevice() map[string]disk.PartitionStat {
	mounts := make(map[string]disk.PartitionStat)
	partitions, err := disk.Partitions(false)
	if err != nil {
		return mounts
	}
	for _, p := range partitions {
		mounts[p.Device] = p
	}
	return mounts
}

func readSysfsFlag(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

// readSysfsSectors reads a sector count file and converts to bytes.
func readSysfsSectors(path string) uint64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	sectors, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}
	return sectors * 512
}
