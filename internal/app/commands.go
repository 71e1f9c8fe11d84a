package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gajzzs/blockprobe/internal/blockdevice"
	"github.com/gajzzs/blockprobe/internal/command"
	"github.com/gajzzs/blockprobe/internal/config"
	"github.com/gajzzs/blockprobe/internal/device"
	"github.com/gajzzs/blockprobe/internal/host"
	"github.com/gajzzs/blockprobe/internal/service"
)

// targetFlags selects the inspection target, local by default.
type targetFlags struct {
	ssh  string
	user string
	key  string
}

func addTargetFlags(cmd *cobra.Command, f *targetFlags) {
	cmd.Flags().StringVar(&f.ssh, "ssh", "", "inspect host[:port] over ssh instead of the local machine")
	cmd.Flags().StringVar(&f.user, "ssh-user", "", "ssh user (default from config)")
	cmd.Flags().StringVar(&f.key, "ssh-key", "", "ssh private key file (default from config)")
}

func (f *targetFlags) connect() (*host.Host, func(), error) {
	if f.ssh == "" {
		return host.Local(), func() {}, nil
	}
	cfg := config.GetConfig()
	user := f.user
	if user == "" {
		user = cfg.SSHUser
	}
	key := f.key
	if key == "" {
		key = cfg.SSHKeyFile
	}
	runner, err := command.DialSSH(f.ssh, user, key)
	if err != nil {
		return nil, nil, err
	}
	return host.Remote(runner), func() { runner.Close() }, nil
}

func NewReportCommand() *cobra.Command {
	flags := &targetFlags{}
	cmd := &cobra.Command{
		Use:   "report [device-path]",
		Short: "Report block device attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, closeTarget, err := flags.connect()
			if err != nil {
				return err
			}
			defer closeTarget()

			dev, err := blockdevice.New(target, args[0])
			if err != nil {
				return err
			}
			snap, err := dev.Snapshot()
			if err != nil {
				return err
			}

			writable, err := dev.IsWritable()
			if err != nil {
				return err
			}
			isPart, _ := dev.IsPartition()

			fmt.Printf("Device: %s\n", args[0])
			fmt.Printf("  writable:     %v\n", writable)
			fmt.Printf("  read-ahead:   %d sectors\n", snap.ReadAhead)
			fmt.Printf("  sector size:  %d bytes\n", snap.SectorSize)
			fmt.Printf("  block size:   %d bytes\n", snap.BlockSize)
			fmt.Printf("  start sector: %d\n", snap.StartSector)
			fmt.Printf("  size:         %d bytes\n", snap.Size)
			fmt.Printf("  partition:    %v\n", isPart)
			fmt.Printf("  zoned:        %s\n", snap.ZonedType)
			return nil
		},
	}
	addTargetFlags(cmd, flags)
	return cmd
}

var zonedParams = []string{
	"type", "chunk_sectors", "nr_zones",
	"zone_append_max_bytes", "max_open_zones", "max_active_zones",
}

func NewZonedCommand() *cobra.Command {
	flags := &targetFlags{}
	cmd := &cobra.Command{
		Use:   "zoned [device-path] [param]",
		Short: "Show zoned block device parameters",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, closeTarget, err := flags.connect()
			if err != nil {
				return err
			}
			defer closeTarget()

			dev, err := blockdevice.New(target, args[0])
			if err != nil {
				return err
			}

			if len(args) == 2 {
				value, known, err := dev.GetZonedParam(args[1])
				if err != nil {
					return err
				}
				if !known {
					return fmt.Errorf("unknown zoned parameter %q", args[1])
				}
				fmt.Println(value)
				return nil
			}

			for _, param := range zonedParams {
				value, _, err := dev.GetZonedParam(param)
				if err != nil {
					return err
				}
				fmt.Printf("  %-22s %s\n", param, value)
			}
			return nil
		},
	}
	addTargetFlags(cmd, flags)
	return cmd
}

func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List local block devices and partitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := device.List()
			if err != nil {
				return err
			}

			for _, dev := range devices {
				removable := ""
				if dev.Removable {
					removable = " (removable)"
				}
				fmt.Printf("%s  %d bytes%s\n", dev.DevPath, dev.SizeBytes, removable)
				for _, part := range dev.Partitions {
					mount := "(not mounted)"
					if part.MountPoint != "" {
						mount = fmt.Sprintf("%s %s", part.MountPoint, part.FSType)
					}
					fmt.Printf("  %s  %s\n", part.DevPath, mount)
				}
			}
			return nil
		},
	}
}

func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage devices the daemon re-inspects",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add [device-path]",
			Short: "Add a device to the watch list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return config.AddWatchDevice(args[0])
			},
		},
		&cobra.Command{
			Use:   "remove [device-path]",
			Short: "Remove a device from the watch list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return config.RemoveWatchDevice(args[0])
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Show the watch list",
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, dev := range config.GetConfig().WatchDevices {
					fmt.Println(dev)
				}
				return nil
			},
		},
	)

	return cmd
}

func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run or manage the device monitor service",
	}

	withManager := func(fn func(*service.ServiceManager) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			sm, err := service.NewServiceManager()
			if err != nil {
				return err
			}
			return fn(sm)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "install",
			Short: "Install the monitor as a system service",
			RunE:  withManager((*service.ServiceManager).Install),
		},
		&cobra.Command{
			Use:   "uninstall",
			Short: "Uninstall the system service",
			RunE:  withManager((*service.ServiceManager).Uninstall),
		},
		&cobra.Command{
			Use:   "start",
			Short: "Start the system service",
			RunE:  withManager((*service.ServiceManager).Start),
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop the system service",
			RunE:  withManager((*service.ServiceManager).Stop),
		},
		&cobra.Command{
			Use:   "run",
			Short: "Run the monitor in the foreground",
			RunE:  withManager((*service.ServiceManager).RunForeground),
		},
	)

	return cmd
}
