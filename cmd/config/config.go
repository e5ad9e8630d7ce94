// Package config loads the user's nm settings with viper and turns them into
// a service configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-nodemanager/pkg/persistence"
	"github.com/mattsolo1/grove-nodemanager/pkg/service"
	nmsync "github.com/mattsolo1/grove-nodemanager/pkg/sync"
)

// DefaultServerAddr is where `nm serve` listens when nothing is configured.
const DefaultServerAddr = "127.0.0.1:8188"

var cfgFile string

// InitConfig points viper at the config file and registers defaults.
func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "nm"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("NM")
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	viper.SetDefault("data_dir", filepath.Join(home, ".local", "share", "nm"))
	viper.SetDefault("backend", persistence.BackendFile)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("max_folder_depth", 3)
	viper.SetDefault("registry_file", "")
	viper.SetDefault("server.addr", DefaultServerAddr)
	viper.SetDefault("sync.debounce", nmsync.DefaultDebounce.String())
	viper.SetDefault("sync.save_timeout", nmsync.DefaultSaveTimeout.String())
	viper.SetDefault("sync.auto_save", true)
	viper.SetDefault("sync.watch", false)

	// A missing config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// NewLogger builds the stderr logger at the configured level.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}

// ServiceConfig reads the service settings.
func ServiceConfig() (*service.Config, error) {
	syncCfg, err := nmsync.DecodeConfig(map[string]interface{}{
		"debounce":     viper.GetString("sync.debounce"),
		"save_timeout": viper.GetString("sync.save_timeout"),
		"auto_save":    viper.GetBool("sync.auto_save"),
		"watch":        viper.GetBool("sync.watch"),
	})
	if err != nil {
		return nil, err
	}
	return &service.Config{
		DataDir:        viper.GetString("data_dir"),
		Backend:        viper.GetString("backend"),
		Persistence:    viper.GetStringMap("persistence"),
		RegistryFile:   viper.GetString("registry_file"),
		MaxFolderDepth: viper.GetInt("max_folder_depth"),
		Sync:           syncCfg,
	}, nil
}

// InitService builds the service from the loaded settings.
func InitService(cmd *cobra.Command) (*service.Service, error) {
	cfg, err := ServiceConfig()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	svc, err := service.New(cmd.Context(), cfg, service.WithLogger(NewLogger()))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize service: %w", err)
	}
	return svc, nil
}

// AddGlobalFlags registers flags shared by every command.
func AddGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/nm/config.yaml)")
	flags.String("data-dir", "", "directory holding the saved config")
	flags.String("backend", "", "persistence backend: file, sqlite, badger or http")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("registry", "", "node type registry file (YAML or JSON)")

	_ = viper.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("backend", flags.Lookup("backend"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("registry_file", flags.Lookup("registry"))
}
