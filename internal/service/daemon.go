package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gajzzs/blockprobe/internal/blockdevice"
	"github.com/gajzzs/blockprobe/internal/config"
	"github.com/gajzzs/blockprobe/internal/host"
)

// Daemon periodically re-inspects the configured devices and logs when
// their attributes drift from the last observed snapshot.
type Daemon struct {
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	last map[string]*blockdevice.Snapshot
}

func NewDaemon() *Daemon {
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		last:   make(map[string]*blockdevice.Snapshot),
	}
}

func (d *Daemon) Start() error {
	if d.running {
		return fmt.Errorf("daemon already running")
	}
	d.running = true

	cfg := config.GetConfig()
	log.WithFields(log.Fields{
		"devices":  cfg.WatchDevices,
		"interval": cfg.PollIntervalSec,
	}).Info("blockprobe daemon starting")

	go d.watchDevices(time.Duration(cfg.PollIntervalSec) * time.Second)
	return nil
}

func (d *Daemon) Stop() error {
	if !d.running {
		return fmt.Errorf("daemon not running")
	}
	log.Info("stopping blockprobe daemon")
	d.cancel()
	<-d.done
	d.running = false
	return nil
}

// Wait blocks until the daemon loop exits.
func (d *Daemon) Wait() {
	<-d.done
}

func (d *Daemon) watchDevices(interval time.Duration) {
	defer close(d.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.inspectAll()
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.inspectAll()
		}
	}
}

func (d *Daemon) inspectAll() {
	for _, path := range config.GetConfig().WatchDevices {
		// A fresh handle each round, snapshots are cached per handle
		dev, err := blockdevice.New(host.Local(), path)
		if err != nil {
			log.WithField("device", path).WithError(err).Error("cannot inspect device")
			continue
		}
		snap, err := dev.Snapshot()
		if err != nil {
			log.WithField("device", path).WithError(err).Warn("inspection failed")
			continue
		}
		d.reportDrift(path, snap)
		d.last[path] = snap
	}
}

func (d *Daemon) reportDrift(path string, snap *blockdevice.Snapshot) {
	prev, ok := d.last[path]
	if !ok {
		log.WithFields(log.Fields{
			"device": path,
			"size":   snap.Size,
			"rw":     snap.RWMode,
			"zoned":  snap.ZonedType,
		}).Info("device observed")
		return
	}
	if prev.RWMode != snap.RWMode {
		log.WithFields(log.Fields{
			"device": path,
			"was":    prev.RWMode,
			"now":    snap.RWMode,
		}).Warn("device read-write mode changed")
	}
	if prev.Size != snap.Size {
		log.WithFields(log.Fields{
			"device": path,
			"was":    prev.Size,
			"now":    snap.Size,
		}).Warn("device size changed")
	}
	if prev.ReadAhead != snap.ReadAhead {
		log.WithFields(log.Fields{
			"device": path,
			"was":    prev.ReadAhead,
			"now":    snap.ReadAhead,
		}).Info("device read-ahead changed")
	}
}
