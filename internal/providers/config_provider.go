package providers

import (
	"fmt"
	"path/filepath"
	"shiftwatch/internal/structures"
	"strings"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	v.SetDefault("monitor.title", "Borderlands 4")
	v.SetDefault("monitor.tableMarker", "SHiFT Codes")
	v.SetDefault("webhook.destination", "discord")
	v.SetDefault("webhook.timeout", "10s")
	v.SetDefault("webhook.workers", 1)
	v.SetDefault("http.timeout", "15s")
	v.SetDefault("http.userAgent", "shiftwatch/1.0")
	v.SetDefault("store.driver", "badger")
	v.SetDefault("cache.ttl", 30)

	v.BindEnv("logger.level", "SHIFTWATCH_LOG_LEVEL")
	v.BindEnv("monitor.live", "SHIFTWATCH_LIVE")
	v.BindEnv("monitor.backfillDays", "SHIFTWATCH_BACKFILL_DAYS")
	v.BindEnv("webhook.url", "SHIFTWATCH_WEBHOOK_URL")
	v.BindEnv("store.path", "SHIFTWATCH_STORE_PATH")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	applySourceEnv(v, &conf)

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "ShiftWatch"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

// applySourceEnv lets SHIFTWATCH_<ID>_URL override a configured source URL.
// Viper cannot bind env vars to slice elements, so this is done by hand.
func applySourceEnv(v *viper.Viper, conf *structures.Config) {
	for i := range conf.Monitor.Sources {
		key := "SHIFTWATCH_" + strings.ToUpper(conf.Monitor.Sources[i].ID) + "_URL"
		_ = v.BindEnv("sourceurl."+conf.Monitor.Sources[i].ID, key)
		if u := v.GetString("sourceurl." + conf.Monitor.Sources[i].ID); u != "" {
			conf.Monitor.Sources[i].URL = u
		}
	}
}
