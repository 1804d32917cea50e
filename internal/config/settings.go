package config

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Settings are operational toggles that may change while the process runs.
type Settings struct {
	// MaintenanceMode blocks all write operations at the API layer.
	// Set automatically for the duration of a restore.
	MaintenanceMode bool `mapstructure:"maintenanceMode"`
}

func DefaultSettings() Settings {
	return Settings{MaintenanceMode: false}
}

// SettingsHolder keeps the current Settings, reloading them when the
// optional settings file changes on disk. Restore flips maintenance mode
// in-process through EnterMaintenance/ExitMaintenance; a file-driven value
// of true always wins over the in-process switch being off.
type SettingsHolder struct {
	current     atomic.Value // holds Settings
	maintenance atomic.Bool
}

func NewSettingsHolder() (*SettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("settings")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/finbook")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FINBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &SettingsHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultSettings())
		return holder, nil
	}

	var cfg Settings
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Settings
		if err := v.Unmarshal(&updated); err != nil {
			log.Printf("[settings] reload failed: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[settings] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *SettingsHolder) Get() Settings {
	return h.current.Load().(Settings)
}

func (h *SettingsHolder) InMaintenance() bool {
	return h.maintenance.Load() || h.Get().MaintenanceMode
}

func (h *SettingsHolder) EnterMaintenance() {
	h.maintenance.Store(true)
}

func (h *SettingsHolder) ExitMaintenance() {
	h.maintenance.Store(false)
}
