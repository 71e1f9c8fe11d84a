// Author @gajzzs
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gajzzs/blockprobe/internal/app"
	"github.com/gajzzs/blockprobe/internal/config"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "blockprobe",
	Short: "Block device inspection for local and remote hosts",
	Long:  "Blockprobe reports block device attributes (size, sector size, read-ahead, zoned parameters) by running blockdev and probing sysfs on the target host",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		log.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(
		app.NewReportCommand(),
		app.NewZonedCommand(),
		app.NewListCommand(),
		app.NewWatchCommand(),
		app.NewDaemonCommand(),
	)
}

func main() {
	config.InitConfig()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
