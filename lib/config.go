package lib

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDetailType = "service_status"
	DefaultDetail     = `{"status":"ok"}`
)

// Config is read once at startup and handed to handler constructors.
type Config struct {
	TableName        string `yaml:"table_name"`
	PrimaryKey       string `yaml:"primary_key"`
	EventBusName     string `yaml:"event_bus_name"`
	EventSource      string `yaml:"event_source"`
	DetailType       string `yaml:"detail_type"`
	Detail           string `yaml:"detail"`
	ReplicaTable     string `yaml:"replica_table"`
	BatchConcurrency int    `yaml:"batch_concurrency"`
	Endpoint         string `yaml:"endpoint"`
	Region           string `yaml:"region"`
}

var configEnv = []struct {
	name  string
	field string
}{
	{"TABLE_NAME", "TableName"},
	{"PRIMARY_KEY", "PrimaryKey"},
	{"EVENT_BUS_NAME", "EventBusName"},
	{"EVENT_SOURCE", "EventSource"},
	{"DETAIL_TYPE", "DetailType"},
	{"DETAIL", "Detail"},
	{"REPLICA_TABLE", "ReplicaTable"},
	{"BATCH_CONCURRENCY", "BatchConcurrency"},
	{"AWS_ENDPOINT_URL", "Endpoint"},
	{"AWS_REGION", "Region"},
}

func ConfigFromEnv() (*Config, error) {
	return configFromLookup(os.Getenv)
}

func configFromLookup(getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	err := cfg.overlay(getenv)
	if err != nil {
		return nil, err
	}
	cfg.defaults()
	return cfg, nil
}

// ConfigFromFile loads yaml from path, then applies any non-empty
// environment values on top of it.
func ConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		Logger.Println("error:", err)
		return nil, err
	}
	cfg := &Config{}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		Logger.Println("error:", err)
		return nil, err
	}
	err = cfg.overlay(os.Getenv)
	if err != nil {
		return nil, err
	}
	cfg.defaults()
	return cfg, nil
}

func (c *Config) overlay(getenv func(string) string) error {
	for _, e := range configEnv {
		val := strings.TrimSpace(getenv(e.name))
		if val == "" {
			continue
		}
		if e.field == "BatchConcurrency" {
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				err := fmt.Errorf("%s must be a non-negative integer: %q", e.name, val)
				Logger.Println("error:", err)
				return err
			}
			c.BatchConcurrency = n
			continue
		}
		*c.field(e.field) = val
	}
	return nil
}

func (c *Config) defaults() {
	if c.DetailType == "" {
		c.DetailType = DefaultDetailType
	}
	if c.Detail == "" {
		c.Detail = DefaultDetail
	}
}

func (c *Config) field(name string) *string {
	switch name {
	case "TableName":
		return &c.TableName
	case "PrimaryKey":
		return &c.PrimaryKey
	case "EventBusName":
		return &c.EventBusName
	case "EventSource":
		return &c.EventSource
	case "DetailType":
		return &c.DetailType
	case "Detail":
		return &c.Detail
	case "ReplicaTable":
		return &c.ReplicaTable
	case "Endpoint":
		return &c.Endpoint
	case "Region":
		return &c.Region
	default:
		return nil
	}
}

// Require returns an error naming every listed field that is empty.
func (c *Config) Require(fields ...string) error {
	var missing []string
	for _, name := range fields {
		ptr := c.field(name)
		if ptr == nil {
			return fmt.Errorf("unknown config field: %s", name)
		}
		if *ptr == "" {
			missing = append(missing, envName(name))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func envName(field string) string {
	for _, e := range configEnv {
		if e.field == field {
			return e.name
		}
	}
	return field
}

// MustConfig loads config from the environment and exits when any of the
// required fields are absent.
func MustConfig(required ...string) *Config {
	cfg, err := ConfigFromEnv()
	if err != nil {
		Logger.Fatal("error: ", err)
	}
	err = cfg.Require(required...)
	if err != nil {
		Logger.Fatal("error: ", err)
	}
	return cfg
}

// CLIConfig loads path when given, else the environment.
func CLIConfig(path string) (*Config, error) {
	if path != "" {
		return ConfigFromFile(path)
	}
	return ConfigFromEnv()
}
