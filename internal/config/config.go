package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/jmX86/TempSync-hardware/internal/record"
)

const (
	// DefaultDeviceAddress is where the thermostat's provisioning listener
	// accepts connections when it runs in setup mode.
	DefaultDeviceAddress = "192.168.8.10:35252"

	DefaultDialTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second

	DefaultHistoryTable = "provisioning"
)

type Config struct {
	Device Device `yaml:"device"`

	// Broker holds the settings to provision.
	// When nil, the settings are asked for interactively.
	Broker *Broker `yaml:"broker"`

	// History is the SurrealDB instance that provisioning attempts are recorded to.
	// Recording is disabled when History.URL is empty.
	History History `yaml:"history"`
}

type Device struct {
	// Address is the host:port of the device's provisioning listener.
	Address string `yaml:"address"`
	// DialTimeout bounds connecting to the device, e.g. "5s".
	DialTimeout string `yaml:"dial_timeout"`
	// WriteTimeout bounds sending the record once connected.
	WriteTimeout string `yaml:"write_timeout"`
}

type Broker struct {
	// UseIP selects dotted-decimal IPv4 addressing. Otherwise Address is a hostname.
	UseIP       bool         `yaml:"use_ip"`
	Address     string       `yaml:"address"`
	Port        int          `yaml:"port"`
	Credentials *Credentials `yaml:"credentials"`
}

type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type History struct {
	URL       string `yaml:"url"`
	User      string `yaml:"user"`
	Pass      string `yaml:"pass"`
	Namespace string `yaml:"namespace"`
	Database  string `yaml:"database"`
	Table     string `yaml:"table"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Device: Device{
			Address: DefaultDeviceAddress,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.Device.Address == "" {
		cfg.Device.Address = DefaultDeviceAddress
	}

	if _, err := cfg.Device.Timeouts(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Timeouts are the parsed dial and write timeouts of a Device.
type Timeouts struct {
	Dial  time.Duration
	Write time.Duration
}

func (d Device) Timeouts() (Timeouts, error) {
	t := Timeouts{Dial: DefaultDialTimeout, Write: DefaultWriteTimeout}

	if d.DialTimeout != "" {
		v, err := time.ParseDuration(d.DialTimeout)
		if err != nil {
			return t, fmt.Errorf("failed to parse dial timeout: %w", err)
		}
		t.Dial = v
	}

	if d.WriteTimeout != "" {
		v, err := time.ParseDuration(d.WriteTimeout)
		if err != nil {
			return t, fmt.Errorf("failed to parse write timeout: %w", err)
		}
		t.Write = v
	}

	return t, nil
}

// Record converts the broker section into the record sent to the device.
// The result is not validated; record.Encode does that.
func (b *Broker) Record() record.Record {
	r := record.Record{
		Mode:    record.ModeHostname,
		Address: b.Address,
		Port:    b.Port,
	}

	if b.UseIP {
		r.Mode = record.ModeIP
	}

	if b.Credentials != nil {
		r.HasCredentials = true
		r.Username = b.Credentials.Username
		r.Password = b.Credentials.Password
	}

	return r
}

// Enabled reports whether provisioning attempts should be recorded.
func (h History) Enabled() bool {
	return h.URL != ""
}

func (h History) TableName() string {
	if h.Table == "" {
		return DefaultHistoryTable
	}
	return h.Table
}
