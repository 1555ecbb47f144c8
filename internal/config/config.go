package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	TokenTTL    time.Duration     `yaml:"token_ttl" env-default:"12h"`
	HTTP        HTTPConfig        `yaml:"http"`
	Admin       AdminConfig       `yaml:"admin"`
	Session     SessionConfig     `yaml:"session"`
	FileStorage FileStorageConfig `yaml:"file_storage"`
	Database    DatabaseConfig    `yaml:"database"`
	Cache       CacheConfig       `yaml:"cache"`
	Redis       RedisConf         `yaml:"redis"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            string        `yaml:"port" env:"PORT" env-default:"3001"`
	BodyLimit       string        `yaml:"body_limit" env-default:"50M"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type AdminConfig struct {
	Username    string `yaml:"username" env:"ADMIN_USERNAME" env-default:"admin"`
	Password    string `yaml:"password" env:"ADMIN_PASSWORD" env-default:"admin123"`
	TokenSecret string `yaml:"token_secret" env:"ADMIN_TOKEN_SECRET" env-default:"change-me"`
	// ProtectAPI requires a token or an admin session on every write route.
	ProtectAPI bool `yaml:"protect_api" env:"ADMIN_PROTECT_API" env-default:"false"`
}

type SessionConfig struct {
	Secret string `yaml:"secret" env:"SESSION_SECRET" env-default:"floral-session"`
	MaxAge int    `yaml:"max_age" env-default:"86400"`
}

type FileStorageConfig struct {
	BaseDir  string `yaml:"base_dir" env:"UPLOADS_DIR" env-default:"uploads"`
	BaseURL  string `yaml:"base_url" env:"UPLOADS_BASE_URL"`
	MaxSize  int64  `yaml:"max_size" env-default:"5242880"`
	MaxFiles int    `yaml:"max_files" env-default:"10"`
}

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DATABASE_DRIVER" env-default:"file"`
	Path   string `yaml:"path" env:"DATABASE_PATH" env-default:"database.json"`
	DSN    string `yaml:"dsn" env:"DATABASE_DSN"`
}

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

type CacheConfig struct {
	Driver string        `yaml:"driver" env:"CACHE_DRIVER" env-default:"memory"`
	TTL    time.Duration `yaml:"ttl" env-default:"5m"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redispassword" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env-default:"0"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		var cfg Config
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			panic("cannot read config from env: " + err.Error())
		}

		return &cfg
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
