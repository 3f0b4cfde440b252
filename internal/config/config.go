package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"

	CatalogHTTP  = "http"
	CatalogMySQL = "mysql"
)

type Config struct {
	Env      string  `yaml:"env" env:"APP_ENV" env-default:"local"`
	LogLevel string  `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	HTTP     HTTP    `yaml:"http"`
	GRPC     GRPC    `yaml:"grpc"`
	Redis    Redis   `yaml:"redis"`
	MySQL    MySQL   `yaml:"mysql"`
	Catalog  Catalog `yaml:"catalog"`
	Cart     Cart    `yaml:"cart"`
}

type HTTP struct {
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:":8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"5s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"5s"`
	SecureCookie    bool          `yaml:"secure_cookie" env:"HTTP_SECURE_COOKIE" env-default:"false"`
}

type GRPC struct {
	Port string `yaml:"port" env:"GRPC_PORT" env-default:":50051"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	PoolSize int    `yaml:"pool_size" env-default:"100"`
}

type MySQL struct {
	DSN             string        `yaml:"dsn" env:"MYSQL_DSN" env-default:"root:root@tcp(localhost:3306)/storefront?parseTime=true"`
	MaxOpenConns    int           `yaml:"max_open_conns" env-default:"50"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env-default:"5m"`
}

type Catalog struct {
	// Mode selects the catalog and stock source: "http" or "mysql".
	Mode    string        `yaml:"mode" env:"CATALOG_MODE" env-default:"http"`
	BaseURL string        `yaml:"base_url" env:"CATALOG_URL" env-default:"http://localhost:3333"`
	Timeout time.Duration `yaml:"timeout" env-default:"3s"`
}

type Cart struct {
	// Store selects where carts are kept: "redis" or "memory".
	Store     string        `yaml:"store" env:"CART_STORE" env-default:"redis"`
	KeyPrefix string        `yaml:"key_prefix" env-default:"cart:"`
	TTL       time.Duration `yaml:"ttl" env:"CART_TTL" env-default:"720h"`

	// IdleTimeout is how long an unused session keeps its cart in memory.
	IdleTimeout   time.Duration `yaml:"idle_timeout" env:"CART_IDLE_TIMEOUT" env-default:"30m"`
	EvictInterval time.Duration `yaml:"evict_interval" env-default:"1m"`
}

// Load reads the YAML file at path, then applies env overrides and defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/local.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return cfg
}

func (c *Config) validate() error {
	switch c.Cart.Store {
	case StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("cart.store: unknown store %q", c.Cart.Store)
	}

	switch c.Catalog.Mode {
	case CatalogHTTP:
		if c.Catalog.BaseURL == "" {
			return fmt.Errorf("catalog.base_url is required in http mode")
		}
	case CatalogMySQL:
	default:
		return fmt.Errorf("catalog.mode: unknown mode %q", c.Catalog.Mode)
	}

	if c.Cart.IdleTimeout <= 0 || c.Cart.EvictInterval <= 0 {
		return fmt.Errorf("cart.idle_timeout and cart.evict_interval must be positive")
	}

	return nil
}
