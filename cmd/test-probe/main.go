package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/gajzzs/blockprobe/internal/blockdevice"
	"github.com/gajzzs/blockprobe/internal/device"
	"github.com/gajzzs/blockprobe/internal/host"
)

func main() {
	fmt.Printf("Testing blockprobe on %s\n", runtime.GOOS)

	fmt.Println("\n=== Local block devices ===")
	devices, err := device.List()
	if err != nil {
		log.Printf("Error listing devices: %v", err)
	} else {
		fmt.Printf("Found %d block devices:\n", len(devices))
		for i, dev := range devices {
			fmt.Printf("%d. %s (%d bytes, removable: %v, partitions: %d)\n",
				i+1, dev.DevPath, dev.SizeBytes, dev.Removable, len(dev.Partitions))
		}
	}

	if len(os.Args) < 2 {
		fmt.Println("\nPass a device path (e.g. /dev/sda) to fetch a report")
		return
	}

	fmt.Printf("\n=== Report for %s ===\n", os.Args[1])
	dev, err := blockdevice.New(host.Local(), os.Args[1])
	if err != nil {
		log.Fatalf("Error creating device handle: %v", err)
	}
	snap, err := dev.Snapshot()
	if err != nil {
		log.Fatalf("Error fetching report: %v", err)
	}
	fmt.Printf("mode=%s ra=%d ssz=%d bsz=%d start=%d size=%d zoned=%s\n",
		snap.RWMode, snap.ReadAhead, snap.SectorSize, snap.BlockSize,
		snap.StartSector, snap.Size, snap.ZonedType)
}
