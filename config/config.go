// Package config loads service settings from an optional .env file, an optional YAML
// config file and the process environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverArangoDB = "arangodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds everything the monitor needs at startup.
type Config struct {
	Port string `mapstructure:"port"`

	StoreDriver string `mapstructure:"store_driver"`
	DatabaseDSN string `mapstructure:"database_dsn"`

	ArangoHost string `mapstructure:"arango_host"`
	ArangoPort string `mapstructure:"arango_port"`
	ArangoUser string `mapstructure:"arango_user"`
	ArangoPass string `mapstructure:"arango_pass"`
	ArangoURL  string `mapstructure:"arango_url"`
	ArangoDB   string `mapstructure:"arango_db"`

	OSVURL    string `mapstructure:"osv_url"`
	NVDURL    string `mapstructure:"nvd_url"`
	NVDAPIKey string `mapstructure:"nvd_api_key"`

	SchedulerEnabled bool   `mapstructure:"scheduler_enabled"`
	RefreshSchedule  string `mapstructure:"refresh_schedule"`

	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`

	KafkaIngestTopic string `mapstructure:"kafka_ingest_topic"`
	KafkaGroupID     string `mapstructure:"kafka_group_id"`
	KafkaAPIKey      string `mapstructure:"kafka_api_key"`
	KafkaAPISecret   string `mapstructure:"kafka_api_secret"`

	LogLevel string `mapstructure:"log_level"`
}

// environment variable names for each key; keys without an entry use their upper-cased name
var envNames = map[string]string{
	"port": "MS_PORT",
}

var defaults = map[string]any{
	"port":               "8080",
	"store_driver":       DriverArangoDB,
	"database_dsn":       "",
	"arango_host":        "localhost",
	"arango_port":        "8529",
	"arango_user":        "root",
	"arango_pass":        "mypassword",
	"arango_url":         "",
	"arango_db":          "components",
	"osv_url":            "https://api.osv.dev/v1/query",
	"nvd_url":            "https://services.nvd.nist.gov/rest/json",
	"nvd_api_key":        "",
	"scheduler_enabled":  true,
	"refresh_schedule":   "0 3 * * *",
	"kafka_brokers":      "",
	"kafka_topic":        "component-vulnerabilities",
	"kafka_ingest_topic": "",
	"kafka_group_id":     "component-monitor",
	"kafka_api_key":      "",
	"kafka_api_secret":   "",
	"log_level":          "info",
}

// New returns a viper instance with defaults and environment bindings registered.
func New() *viper.Viper {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
		env := envNames[key]
		if env == "" {
			env = strings.ToUpper(key)
		}
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads .env, the optional config file and the environment into a Config.
// An explicitly named config file that cannot be read is an error; a missing default one is not.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.KafkaBrokers = trimList(cfg.KafkaBrokers)

	if cfg.ArangoURL == "" {
		cfg.ArangoURL = "http://" + cfg.ArangoHost + ":" + cfg.ArangoPort
	}
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	switch cfg.StoreDriver {
	case DriverArangoDB, DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
	return &cfg, nil
}

func trimList(in []string) []string {
	var out []string
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
