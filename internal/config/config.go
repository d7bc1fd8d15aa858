package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Cron    CronConfig    `mapstructure:"cron"`
	Trigger TriggerConfig `mapstructure:"trigger"`
	Sync    SyncConfig    `mapstructure:"sync"`
	API     APIConfig     `mapstructure:"api"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
	// RunOnce runs a single crawl at startup and exits without serving HTTP.
	RunOnce bool `mapstructure:"run_once"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

// StoreConfig selects the document store backend: postgres, redis or memory.
type StoreConfig struct {
	Backend      string `mapstructure:"backend"`
	Collection   string `mapstructure:"collection"`
	MaxBatchSize int    `mapstructure:"max_batch_size"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type FeedConfig struct {
	URL       string        `mapstructure:"url"`
	CORSRelay string        `mapstructure:"cors_relay"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type CronConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	CrawlEvents string `mapstructure:"crawl_events"`
	TimeZone    string `mapstructure:"time_zone"`
}

type TriggerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Header  string `mapstructure:"header"`
	Secret  string `mapstructure:"secret"`
}

type SyncConfig struct {
	AbortOnNG    bool `mapstructure:"abort_on_ng"`
	SingleFlight bool `mapstructure:"single_flight"`
}

type APIConfig struct {
	RequireBearer bool `mapstructure:"require_bearer"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.run_once", false)
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 2)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("store.backend", "postgres")
	v.SetDefault("store.collection", "events")
	v.SetDefault("store.max_batch_size", 500)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "eventsync:")
	v.SetDefault("feed.url", "https://api.itsukaralink.jp/events.json")
	v.SetDefault("feed.cors_relay", "")
	v.SetDefault("feed.timeout", "30s")
	v.SetDefault("feed.user_agent", "eventsync/1.0")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.crawl_events", "0 0 */4 * * *")
	v.SetDefault("cron.time_zone", "Asia/Tokyo")
	v.SetDefault("trigger.enabled", true)
	v.SetDefault("trigger.header", "X-CRON-PASSWORD")
	v.SetDefault("trigger.secret", "")
	v.SetDefault("sync.abort_on_ng", true)
	v.SetDefault("sync.single_flight", true)
	v.SetDefault("api.require_bearer", false)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
