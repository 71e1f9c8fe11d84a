package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	SSHUser         string   `json:"ssh_user"`
	SSHKeyFile      string   `json:"ssh_key_file"`
	WatchDevices    []string `json:"watch_devices"`
	PollIntervalSec int      `json:"poll_interval_sec"`
	LogLevel        string   `json:"log_level"`
}

var (
	ConfigDir  = "/etc/blockprobe"
	ConfigFile = filepath.Join(ConfigDir, "config.json")
	config     *Config
)

func defaults() *Config {
	return &Config{
		WatchDevices:    []string{},
		PollIntervalSec: 60,
		LogLevel:        "info",
	}
}

// InitConfig loads the config file, creating it with defaults when it
// does not exist yet.
func InitConfig() error {
	config = defaults()

	if _, err := os.Stat(ConfigFile); err == nil {
		data, err := os.ReadFile(ConfigFile)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("config file %s is corrupted: %w", ConfigFile, err)
		}
		if config.PollIntervalSec <= 0 {
			config.PollIntervalSec = 60
		}
		return nil
	}

	return SaveConfig()
}

func GetConfig() *Config {
	if config == nil {
		config = defaults()
	}
	return config
}

func SaveConfig() error {
	if err := os.MkdirAll(ConfigDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigFile, data, 0600)
}

// AddWatchDevice registers a device path for the daemon to re-inspect.
func AddWatchDevice(path string) error {
	cfg := GetConfig()
	for _, dev := range cfg.WatchDevices {
		if dev == path {
			return nil
		}
	}
	cfg.WatchDevices = append(cfg.WatchDevices, path)
	return SaveConfig()
}

// RemoveWatchDevice unregisters a device path.
func RemoveWatchDevice(path string) error {
	cfg := GetConfig()
	kept := cfg.WatchDevices[:0]
	for _, dev := range cfg.WatchDevices {
		if dev != path {
			kept = append(kept, dev)
		}
	}
	cfg.WatchDevices = kept
	return SaveConfig()
}
