package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Storage define el backend de persistencia.
type Storage string

const (
	StorageAuto     Storage = ""
	StorageMemory   Storage = "memory"
	StoragePostgres Storage = "postgres"
	StorageRedis    Storage = "redis"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Port string

	Storage   Storage
	DBDSN     string
	RedisAddr string

	AMQPURL       string
	AMQPExchange  string
	WebhookURL    string
	WebhookAPIKey string

	JWTSecret string

	ReminderHour     int
	DispatchInterval time.Duration
	RotavirusPolicy  string
	Timezone         string
	Location         *time.Location

	// ReminderFiring: "worker" (el dispatcher entrega) o "notifier" (el
	// servicio externo dispara lo programado). Nunca los dos.
	ReminderFiring string
	// DispatchInAPI corre el dispatcher dentro de cmd/api. Va en false cuando
	// cmd/worker corre aparte contra el mismo storage.
	DispatchInAPI  bool

	LogLevel  string
	LogFormat string
	AppName   string
}

// keys coinciden con los nombres de env (PORT, DB_DSN, ...) vía AutomaticEnv.
var defaults = map[string]any{
	"port":               "8080",
	"storage":            "",
	"db_dsn":             "",
	"redis_addr":         "",
	"amqp_url":           "",
	"amqp_exchange":      "vaccine-reminders",
	"notify_webhook_url": "",
	"notify_webhook_key": "",
	"jwt_secret":         "",
	"reminder_hour":      9,
	"dispatch_interval":  "1m",
	"reminder_firing":    "worker",
	"dispatch_in_api":    true,
	"rotavirus_policy":   "by_age",
	"timezone":           "America/Mexico_City",
	"log_level":          "info",
	"log_format":         "text",
	"app_name":           "childcare-vaccines",
}

// New devuelve un viper con defaults y env binding.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load lee y valida la configuración. Si file != "" se lee además ese archivo
// (YAML/JSON/TOML según extensión); env sigue teniendo prioridad.
func Load(v *viper.Viper, file string) (Config, error) {
	if v == nil {
		v = New()
	}
	if strings.TrimSpace(file) != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := Config{
		Port:             strings.TrimSpace(v.GetString("port")),
		Storage:          Storage(strings.ToLower(strings.TrimSpace(v.GetString("storage")))),
		DBDSN:            strings.TrimSpace(v.GetString("db_dsn")),
		RedisAddr:        strings.TrimSpace(v.GetString("redis_addr")),
		AMQPURL:          strings.TrimSpace(v.GetString("amqp_url")),
		AMQPExchange:     strings.TrimSpace(v.GetString("amqp_exchange")),
		WebhookURL:       strings.TrimSpace(v.GetString("notify_webhook_url")),
		WebhookAPIKey:    strings.TrimSpace(v.GetString("notify_webhook_key")),
		JWTSecret:        v.GetString("jwt_secret"),
		ReminderHour:     v.GetInt("reminder_hour"),
		DispatchInterval: v.GetDuration("dispatch_interval"),
		ReminderFiring:   strings.ToLower(strings.TrimSpace(v.GetString("reminder_firing"))),
		DispatchInAPI:    v.GetBool("dispatch_in_api"),
		RotavirusPolicy:  strings.ToLower(strings.TrimSpace(v.GetString("rotavirus_policy"))),
		Timezone:         strings.TrimSpace(v.GetString("timezone")),
		LogLevel:         v.GetString("log_level"),
		LogFormat:        v.GetString("log_format"),
		AppName:          v.GetString("app_name"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	switch cfg.Storage {
	case StorageAuto:
		cfg.Storage = resolveStorage(cfg)
	case StorageMemory:
	case StoragePostgres:
		if cfg.DBDSN == "" {
			return Config{}, fmt.Errorf("%w: STORAGE=postgres requires DB_DSN", ErrInvalidConfig)
		}
	case StorageRedis:
		if cfg.RedisAddr == "" {
			return Config{}, fmt.Errorf("%w: STORAGE=redis requires REDIS_ADDR", ErrInvalidConfig)
		}
	default:
		return Config{}, fmt.Errorf("%w: unknown STORAGE %q", ErrInvalidConfig, cfg.Storage)
	}

	if cfg.ReminderHour < 0 || cfg.ReminderHour > 23 {
		return Config{}, fmt.Errorf("%w: REMINDER_HOUR must be 0-23", ErrInvalidConfig)
	}
	if cfg.DispatchInterval < 0 {
		return Config{}, fmt.Errorf("%w: DISPATCH_INTERVAL must not be negative", ErrInvalidConfig)
	}

	switch cfg.ReminderFiring {
	case "":
		cfg.ReminderFiring = "worker"
	case "worker", "notifier":
	default:
		return Config{}, fmt.Errorf("%w: REMINDER_FIRING must be worker or notifier", ErrInvalidConfig)
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("%w: TIMEZONE: %v", ErrInvalidConfig, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// resolveStorage: postgres si hay DSN, si no redis, si no memoria (modo dev).
func resolveStorage(cfg Config) Storage {
	switch {
	case cfg.DBDSN != "":
		return StoragePostgres
	case cfg.RedisAddr != "":
		return StorageRedis
	default:
		return StorageMemory
	}
}
