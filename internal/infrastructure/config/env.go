package config

import (
	"os"
	"strconv"
)

// envPrefix starts every environment override.
const envPrefix = "INVENTORY_"

// envBinding maps one INVENTORY_* variable onto a Config field.
type envBinding struct {
	name string
	set  func(c *Config, v string)
}

// envBindings lists the supported overrides. Secrets belong here rather
// than in the YAML file.
var envBindings = []envBinding{
	{"SOURCE", func(c *Config, v string) { c.Inventory.Source = v }},
	{"DESTINATION", func(c *Config, v string) { c.Inventory.Destination = v }},
	{"SAVE_ON_SHUTDOWN", setBool(func(c *Config) *bool { return &c.Inventory.SaveOnShutdown })},

	{"DATABASE_ENABLED", setBool(func(c *Config) *bool { return &c.Database.Enabled })},
	{"DATABASE_PATH", func(c *Config, v string) { c.Database.Path = v }},

	{"MQTT_ENABLED", setBool(func(c *Config) *bool { return &c.MQTT.Enabled })},
	{"MQTT_HOST", func(c *Config, v string) { c.MQTT.Broker.Host = v }},
	{"MQTT_PORT", setInt(func(c *Config) *int { return &c.MQTT.Broker.Port })},
	{"MQTT_USERNAME", func(c *Config, v string) { c.MQTT.Auth.Username = v }},
	{"MQTT_PASSWORD", func(c *Config, v string) { c.MQTT.Auth.Password = v }},

	{"API_HOST", func(c *Config, v string) { c.API.Host = v }},
	{"API_PORT", setInt(func(c *Config) *int { return &c.API.Port })},

	{"INFLUXDB_ENABLED", setBool(func(c *Config) *bool { return &c.InfluxDB.Enabled })},
	{"INFLUXDB_URL", func(c *Config, v string) { c.InfluxDB.URL = v }},
	{"INFLUXDB_TOKEN", func(c *Config, v string) { c.InfluxDB.Token = v }},

	{"LOG_LEVEL", func(c *Config, v string) { c.Logging.Level = v }},
	{"LOG_FORMAT", func(c *Config, v string) { c.Logging.Format = v }},
}

// applyEnvOverrides applies every non-empty INVENTORY_* variable in
// envBindings. Unparsable numbers and booleans are ignored.
func applyEnvOverrides(cfg *Config) {
	for _, b := range envBindings {
		if v := os.Getenv(envPrefix + b.name); v != "" {
			b.set(cfg, v)
		}
	}
}

func setInt(field func(*Config) *int) func(*Config, string) {
	return func(c *Config, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			*field(c) = n
		}
	}
}

func setBool(field func(*Config) *bool) func(*Config, string) {
	return func(c *Config, v string) {
		if b, err := strconv.ParseBool(v); err == nil {
			*field(c) = b
		}
	}
}
