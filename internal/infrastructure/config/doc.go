// Package config loads the inventory service configuration.
//
// Values are layered: built-in defaults, then the YAML file, then the
// INVENTORY_* environment variables listed in env.go. Validate reports
// every problem at once rather than stopping at the first.
//
// Keep the MQTT password and InfluxDB token out of the YAML file and set
// them through INVENTORY_MQTT_PASSWORD and INVENTORY_INFLUXDB_TOKEN.
//
//	cfg, err := config.Load("configs/config.yaml")
package config
