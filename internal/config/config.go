package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          string        `yaml:"port"`
	DBDriver      string        `yaml:"db_driver"` // sqlite | pgx
	DBDSN         string        `yaml:"db_dsn"`
	LogFile       string        `yaml:"log_file"`
	BaseURL       string        `yaml:"base_url"`
	SeedDemo      bool          `yaml:"seed_demo"`
	KafkaBrokers  []string      `yaml:"kafka_brokers"`
	KafkaTopic    string        `yaml:"kafka_topic"`
	ActivationTTL time.Duration `yaml:"activation_ttl"`
	NotifyTimeout time.Duration `yaml:"notify_timeout"`
	BcryptCost    int           `yaml:"bcrypt_cost"`
	SecureCookies bool          `yaml:"secure_cookies"`
}

func Defaults() Config {
	return Config{
		Port:          "8080",
		DBDriver:      "sqlite",
		DBDSN:         "ecomapp.db", // sqlite file in project root
		LogFile:       "./ecomapp.log",
		BaseURL:       "http://127.0.0.1:8080",
		KafkaTopic:    "ecomapp.notifications",
		ActivationTTL: 24 * time.Hour,
		NotifyTimeout: 10 * time.Second,
		BcryptCost:    12,
	}
}

// Load applies, in order: defaults, the YAML file named by CONFIG_FILE, env vars.
func Load() Config {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			log.Printf("[warn] could not read config file %s: %v", path, err)
		}
	}
	applyEnv(&cfg)

	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s LOG_FILE=%s BASE_URL=%s KAFKA=%v",
		cfg.Port, cfg.DBDriver, redactDSN(cfg.DBDSN), cfg.LogFile, cfg.BaseURL, cfg.KafkaBrokers)
	return cfg
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.DBDriver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DBDSN = v
	}
	if v, ok := os.LookupEnv("LOG_FILE"); ok {
		cfg.LogFile = v // empty disables file logging
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("SEED_DEMO"); v != "" {
		cfg.SeedDemo = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		cfg.SecureCookies = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.KafkaTopic = v
	}
	if v := os.Getenv("ACTIVATION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ActivationTTL = d
		} else {
			log.Printf("[warn] ignoring ACTIVATION_TTL=%q", v)
		}
	}
	if v := os.Getenv("NOTIFY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.NotifyTimeout = d
		} else {
			log.Printf("[warn] ignoring NOTIFY_TIMEOUT=%q", v)
		}
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 4 && n <= 31 {
			cfg.BcryptCost = n
		} else {
			log.Printf("[warn] ignoring BCRYPT_COST=%q", v)
		}
	}
}

// redactDSN hides the password part of a postgres URL.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		return dsn[:scheme+3] + creds[:i] + ":***" + dsn[at:]
	}
	return dsn
}
