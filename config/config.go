package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Env      string
	LogDir   string
	LogLevel string
	Scraping ScrapingConfig
	HTTP     HTTPConfig
	Cache    CacheConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	S3       S3Config
	SMTP     SMTPConfig
	RunsDB   string
	APIAddr  string
	Schedule []ScheduleEntry
}

type ScrapingConfig struct {
	SearchDelay time.Duration
	ScrapeDelay time.Duration
	FetchMode      string // http or browser
	BrowserDataDir string
	HeadersFile    string
	FiltersDir     string
}

type HTTPConfig struct {
	ProxyURL string
	Timeout  time.Duration
}

type CacheConfig struct {
	Backend       string // redis or sqlite
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SQLitePath    string
}

// PostgresConfig keeps separate databases for production and test/dev runs.
type PostgresConfig struct {
	URL    string
	DevURL string
}

func (c PostgresConfig) URLFor(prod bool) string {
	if !prod && c.DevURL != "" {
		return c.DevURL
	}
	return c.URL
}

type MongoConfig struct {
	URI         string
	Database    string
	DevDatabase string
}

func (c MongoConfig) DatabaseFor(prod bool) string {
	if !prod && c.DevDatabase != "" {
		return c.DevDatabase
	}
	return c.Database
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

type SMTPConfig struct {
	Address  string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

func (c SMTPConfig) Enabled() bool {
	return c.Address != "" && c.To != ""
}

type ScheduleEntry struct {
	Job        string `toml:"job"`
	Portal     string `toml:"portal"`
	Category   string `toml:"category"`
	Mode       int    `toml:"mode"`
	Cron       string `toml:"cron"`
	ClearCache *bool  `toml:"clear_cache"`
}

// fileConfig mirrors config.toml. Secrets never live there.
type fileConfig struct {
	Env     string `toml:"env"`
	Logging struct {
		Dir   string `toml:"dir"`
		Level string `toml:"level"`
	} `toml:"logging"`
	Scraping struct {
		SearchDelay string `toml:"search_delay"`
		ScrapeDelay string `toml:"scrape_delay"`
		FetchMode      string `toml:"fetch_mode"`
		BrowserDataDir string `toml:"browser_data_dir"`
		HeadersFile    string `toml:"headers_file"`
		FiltersDir     string `toml:"filters_dir"`
	} `toml:"scraping"`
	HTTP struct {
		Timeout string `toml:"timeout"`
	} `toml:"http"`
	Cache struct {
		Backend    string `toml:"backend"`
		RedisAddr  string `toml:"redis_addr"`
		RedisDB    int    `toml:"redis_db"`
		SQLitePath string `toml:"sqlite_path"`
	} `toml:"cache"`
	Mongo struct {
		Database    string `toml:"database"`
		DevDatabase string `toml:"dev_database"`
	} `toml:"mongo"`
	S3 struct {
		Bucket   string `toml:"bucket"`
		Region   string `toml:"region"`
		Endpoint string `toml:"endpoint"`
		Prefix   string `toml:"prefix"`
	} `toml:"s3"`
	RunsDB   string          `toml:"runs_db"`
	APIAddr  string          `toml:"api_addr"`
	Schedule []ScheduleEntry `toml:"schedule"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	path := getEnv("CONFIG_FILE", "conf/config.toml")
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Env:      "local",
		LogDir:   "logs",
		LogLevel: "info",
		Scraping: ScrapingConfig{
			SearchDelay: 2 * time.Second,
			ScrapeDelay: 5 * time.Second,
			FetchMode:      "http",
			BrowserDataDir: "browser_data",
			HeadersFile:    "conf/headers.yaml",
			FiltersDir:     "conf/filters",
		},
		HTTP: HTTPConfig{Timeout: 30 * time.Second},
		Cache: CacheConfig{
			Backend:    "redis",
			RedisAddr:  "localhost:6379",
			SQLitePath: "cache.db",
		},
		Mongo: MongoConfig{
			Database:    "rea",
			DevDatabase: "rea_dev",
		},
		S3:      S3Config{Prefix: "offers"},
		SMTP:    SMTPConfig{Port: 587},
		RunsDB:  "runs.db",
		APIAddr: ":8080",
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	setString(&c.Env, fc.Env)
	setString(&c.LogDir, fc.Logging.Dir)
	setString(&c.LogLevel, fc.Logging.Level)
	setDuration(&c.Scraping.SearchDelay, fc.Scraping.SearchDelay)
	setDuration(&c.Scraping.ScrapeDelay, fc.Scraping.ScrapeDelay)
	setString(&c.Scraping.FetchMode, fc.Scraping.FetchMode)
	setString(&c.Scraping.BrowserDataDir, fc.Scraping.BrowserDataDir)
	setString(&c.Scraping.HeadersFile, fc.Scraping.HeadersFile)
	setString(&c.Scraping.FiltersDir, fc.Scraping.FiltersDir)
	setDuration(&c.HTTP.Timeout, fc.HTTP.Timeout)
	setString(&c.Cache.Backend, fc.Cache.Backend)
	setString(&c.Cache.RedisAddr, fc.Cache.RedisAddr)
	if fc.Cache.RedisDB != 0 {
		c.Cache.RedisDB = fc.Cache.RedisDB
	}
	setString(&c.Cache.SQLitePath, fc.Cache.SQLitePath)
	setString(&c.Mongo.Database, fc.Mongo.Database)
	setString(&c.Mongo.DevDatabase, fc.Mongo.DevDatabase)
	setString(&c.S3.Bucket, fc.S3.Bucket)
	setString(&c.S3.Region, fc.S3.Region)
	setString(&c.S3.Endpoint, fc.S3.Endpoint)
	setString(&c.S3.Prefix, fc.S3.Prefix)
	setString(&c.RunsDB, fc.RunsDB)
	setString(&c.APIAddr, fc.APIAddr)
	c.Schedule = fc.Schedule

	return nil
}

func (c *Config) applyEnv() {
	c.Env = getEnv("ENV_NAME", c.Env)
	c.LogDir = getEnv("LOG_DIR", c.LogDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Scraping.FetchMode = getEnv("FETCH_MODE", c.Scraping.FetchMode)
	c.HTTP.ProxyURL = getEnv("PROXY_URL", c.HTTP.ProxyURL)

	c.Cache.Backend = getEnv("CACHE_BACKEND", c.Cache.Backend)
	c.Cache.RedisAddr = getEnv("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnv("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvInt("REDIS_DB", c.Cache.RedisDB)

	c.Postgres.URL = getEnv("DATABASE_URL", c.Postgres.URL)
	c.Postgres.DevURL = getEnv("DATABASE_URL_DEV", c.Postgres.DevURL)

	c.Mongo.URI = getEnv("MONGODB_URI", c.Mongo.URI)

	c.S3.Bucket = getEnv("S3_BUCKET", c.S3.Bucket)
	c.S3.Region = getEnv("S3_REGION", c.S3.Region)
	c.S3.Endpoint = getEnv("S3_ENDPOINT", c.S3.Endpoint)
	c.S3.AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	c.S3.SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")

	c.SMTP.Address = getEnv("SMTP_ADDRESS", c.SMTP.Address)
	c.SMTP.Port = getEnvInt("SMTP_PORT", c.SMTP.Port)
	c.SMTP.Username = os.Getenv("SENDER_EMAIL_ADDRESS")
	c.SMTP.Password = os.Getenv("SENDER_EMAIL_PASSWORD")
	c.SMTP.From = c.SMTP.Username
	c.SMTP.To = os.Getenv("RECEIVER_EMAIL_ADDRESS")
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) {
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
