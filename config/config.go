// Package config loads the immutable runtime configuration. It is set
// once at startup and read everywhere; nothing mutates it afterwards.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete daemon configuration.
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Display DisplayConfig `yaml:"display"`
	Listen  ListenConfig  `yaml:"listen"`
	Admin   AdminConfig   `yaml:"admin"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// DeviceConfig contains serial device settings.
type DeviceConfig struct {
	Port         string `yaml:"port"`
	Baud         int    `yaml:"baud"`
	TickMillis   int    `yaml:"tick_ms"`
	RetrySeconds int    `yaml:"retry_seconds"`
}

// DisplayConfig contains content formatting and rotation settings.
type DisplayConfig struct {
	Align           string `yaml:"align"`
	RotationSeconds int    `yaml:"rotation_seconds"`
	IPLookupURL     string `yaml:"ip_lookup_url"`
}

// ListenConfig contains ingestion settings for pushed content.
type ListenConfig struct {
	UDPPort          int        `yaml:"udp_port"`
	BindAll          bool       `yaml:"bind_all"`
	TTLSeconds       int        `yaml:"ttl_seconds"`
	Exclusive        bool       `yaml:"exclusive"`
	File             string     `yaml:"file"`
	FileStaleSeconds int        `yaml:"file_stale_seconds"`
	MQTT             MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig contains the optional MQTT push source settings.
type MQTTConfig struct {
	Enabled bool   `yaml:"enabled"`
	Broker  string `yaml:"broker"`
	Port    int    `yaml:"port"`
	Topic   string `yaml:"topic"`
}

// AdminConfig contains the admin HTTP interface settings. A zero port
// disables it.
type AdminConfig struct {
	HTTPPort    int    `yaml:"http_port"`
	BindAddress string `yaml:"bind_address"`
}

// UIConfig selects the console surface (headless or tview).
type UIConfig struct {
	Mode string `yaml:"mode"`
}

// LoggingConfig contains file logging settings.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Port:         "/dev/ttyUSB1",
			Baud:         9600,
			TickMillis:   500,
			RetrySeconds: 5,
		},
		Display: DisplayConfig{
			Align:           "left",
			RotationSeconds: 30,
		},
		Listen: ListenConfig{
			UDPPort:          5910,
			File:             "/tmp/vfd.txt",
			FileStaleSeconds: 60,
			MQTT: MQTTConfig{
				Port: 1883,
			},
		},
		Admin: AdminConfig{
			BindAddress: "127.0.0.1",
		},
		UI: UIConfig{
			Mode: "headless",
		},
		Logging: LoggingConfig{
			Dir:           "logs",
			RetentionDays: 7,
		},
	}
}

// Load reads configuration from a YAML file layered over the defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the daemon cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Device.Port) == "" {
		return fmt.Errorf("device.port must not be empty")
	}
	if c.Device.Baud <= 0 {
		return fmt.Errorf("device.baud must be positive")
	}
	if c.Device.TickMillis < 100 {
		return fmt.Errorf("device.tick_ms must be at least 100")
	}
	if c.Device.RetrySeconds <= 0 {
		return fmt.Errorf("device.retry_seconds must be positive")
	}
	if c.Display.RotationSeconds <= 0 {
		return fmt.Errorf("display.rotation_seconds must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(c.Display.Align)) {
	case "auto", "center", "centre", "left":
	default:
		return fmt.Errorf("display.align must be auto, center, or left (got %q)", c.Display.Align)
	}
	if c.Listen.UDPPort < 0 || c.Listen.UDPPort > 65535 {
		return fmt.Errorf("listen.udp_port out of range: %d", c.Listen.UDPPort)
	}
	if c.Listen.TTLSeconds < 0 {
		return fmt.Errorf("listen.ttl_seconds must not be negative")
	}
	if c.Listen.MQTT.Enabled {
		if strings.TrimSpace(c.Listen.MQTT.Broker) == "" {
			return fmt.Errorf("listen.mqtt.broker required when mqtt is enabled")
		}
		if strings.TrimSpace(c.Listen.MQTT.Topic) == "" {
			return fmt.Errorf("listen.mqtt.topic required when mqtt is enabled")
		}
		if c.Listen.MQTT.Port <= 0 || c.Listen.MQTT.Port > 65535 {
			return fmt.Errorf("listen.mqtt.port out of range: %d", c.Listen.MQTT.Port)
		}
	}
	return nil
}

// Print displays the configuration.
func (c *Config) Print() {
	fmt.Printf("Device: %s @ %d baud (tick %dms)\n", c.Device.Port, c.Device.Baud, c.Device.TickMillis)
	fmt.Printf("Display: align=%s rotation=%ds\n", c.Display.Align, c.Display.RotationSeconds)
	bind := "localhost"
	if c.Listen.BindAll {
		bind = "all interfaces"
	}
	fmt.Printf("UDP: port %d (%s), ttl=%ds\n", c.Listen.UDPPort, bind, c.Listen.TTLSeconds)
	if c.Listen.File != "" {
		fmt.Printf("File: %s (stale after %ds)\n", c.Listen.File, c.Listen.FileStaleSeconds)
	}
	if c.Listen.MQTT.Enabled {
		fmt.Printf("MQTT: %s:%d (topic: %s)\n", c.Listen.MQTT.Broker, c.Listen.MQTT.Port, c.Listen.MQTT.Topic)
	}
	if c.Admin.HTTPPort > 0 {
		fmt.Printf("Admin: http://%s:%d\n", c.Admin.BindAddress, c.Admin.HTTPPort)
	}
}
