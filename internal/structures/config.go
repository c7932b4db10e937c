package structures

import (
	"net/http"
	"time"
)

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type SourceConfig struct {
	ID      string `yaml:"id" validate:"required|in:feed,social,article,community"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type MonitorConfig struct {
	Title        string         `yaml:"title" validate:"required"`
	Interval     time.Duration  `yaml:"interval" validate:"required|min:1"`
	BackfillDays int            `yaml:"backfillDays" validate:"min:0"`
	Live         bool           `yaml:"live"`
	TableMarker  string         `yaml:"tableMarker"`
	Sources      []SourceConfig `yaml:"sources" validate:"required|slice"`
}

type WebhookConfig struct {
	URL           string        `yaml:"url"`
	Destination   string        `yaml:"destination"`
	Timeout       time.Duration `yaml:"timeout"`
	Workers       int           `yaml:"workers"`
	RatePerSecond float64       `yaml:"ratePerSecond"`
}

type StoreConfig struct {
	Driver       string        `yaml:"driver" validate:"required|in:badger,file,memory"`
	Path         string        `yaml:"path"`
	SaveInterval time.Duration `yaml:"saveInterval"`
}

type HTTPClientConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server           `yaml:"webServer"`
	Logger    LoggerConfig     `yaml:"logger"`
	Monitor   MonitorConfig    `yaml:"monitor"`
	Webhook   WebhookConfig    `yaml:"webhook"`
	Store     StoreConfig      `yaml:"store"`
	HTTP      HTTPClientConfig `yaml:"http"`
	Cache     CacheConfig      `yaml:"cache"`
	Metrics   MetricsConfig    `yaml:"metrics"`
}

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}
