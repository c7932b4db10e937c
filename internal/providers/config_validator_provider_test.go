package providers

import (
	"shiftwatch/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Monitor: structures.MonitorConfig{
			Title:    "Borderlands 4",
			Interval: 15 * time.Minute,
			Sources: []structures.SourceConfig{
				{ID: "feed", URL: "https://example.com/codes.json", Enabled: true},
				{ID: "article", Enabled: true},
			},
		},
		Store: structures.StoreConfig{
			Driver: "badger",
			Path:   "/tmp/shiftwatch",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_UnknownSource(t *testing.T) {
	c := validConfig()
	c.Monitor.Sources = append(c.Monitor.Sources, structures.SourceConfig{ID: "forum"})
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_DuplicateSource(t *testing.T) {
	c := validConfig()
	c.Monitor.Sources = append(c.Monitor.Sources, structures.SourceConfig{ID: "feed"})
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_BadWebhookURL(t *testing.T) {
	c := validConfig()
	c.Webhook.URL = "not a url"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_StorePathRequired(t *testing.T) {
	c := validConfig()
	c.Store.Path = ""
	assert.Error(t, NewCnfValidator(c).Validate())

	c.Store.Driver = "memory"
	assert.NoError(t, NewCnfValidator(c).Validate())
}
