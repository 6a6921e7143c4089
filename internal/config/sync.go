package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SyncConfig holds the defaults applied to catalogue sync runs when the
// caller does not override them per request.
type SyncConfig struct {
	Country  string   `mapstructure:"country"`
	Pages    int      `mapstructure:"pages"`
	PageSize int      `mapstructure:"pageSize"`
	Fields   []string `mapstructure:"fields"`
}

// DefaultSyncConfig mirrors the projection the upstream search endpoint is
// asked for. Keeping the field list explicit bounds payload size per page.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		Country:  "fr",
		Pages:    3,
		PageSize: 200,
		Fields: []string{
			"code", "product_name", "brands", "categories", "countries",
			"nutriscore_grade", "ecoscore_grade", "nova_group", "ecoscore_data",
			"environmental_score", "image_small_url", "image_front_small_url",
			"origins", "origins_tags", "manufacturing_places", "manufacturing_places_tags",
			"countries_tags", "additives_n", "additives_tags",
			"nutriments", "last_modified_t", "created_t", "quantity",
		},
	}
}

// SyncConfigHolder exposes the current sync defaults and hot-reloads them
// when the config file changes on disk.
type SyncConfigHolder struct {
	current atomic.Value // holds SyncConfig
}

func NewSyncConfigHolder() (*SyncConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("sync")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/offcache")
	v.AddConfigPath(".")

	v.SetEnvPrefix("OFFCACHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultSyncConfig()
		v.SetDefault("sync.country", defaults.Country)
		v.SetDefault("sync.pages", defaults.Pages)
		v.SetDefault("sync.pageSize", defaults.PageSize)
		v.SetDefault("sync.fields", defaults.Fields)
	}

	var cfg SyncConfig
	if err := v.UnmarshalKey("sync", &cfg); err != nil {
		return nil, err
	}
	if err := validateSyncConfig(cfg); err != nil {
		return nil, err
	}

	holder := &SyncConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SyncConfig
		if err := v.UnmarshalKey("sync", &updated); err != nil {
			log.Printf("[sync-config] reload failed: %v", err)
			return
		}
		if err := validateSyncConfig(updated); err != nil {
			log.Printf("[sync-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[sync-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// StaticSyncConfigHolder wraps fixed sync defaults without watching a file.
func StaticSyncConfigHolder(cfg SyncConfig) *SyncConfigHolder {
	holder := &SyncConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *SyncConfigHolder) Get() SyncConfig {
	return h.current.Load().(SyncConfig)
}

func validateSyncConfig(cfg SyncConfig) error {
	if cfg.Pages < 1 {
		return errors.New("sync.pages must be >= 1")
	}
	if cfg.PageSize < 1 || cfg.PageSize > 1000 {
		return errors.New("sync.pageSize must be between 1 and 1000")
	}
	if len(cfg.Fields) == 0 {
		return errors.New("sync.fields cannot be empty")
	}
	return nil
}
