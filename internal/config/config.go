package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Cron   CronConfig   `mapstructure:"cron"`

	Trading     TradingConfig     `mapstructure:"trading"`
	Projections ProjectionsConfig `mapstructure:"projections"`
	Admin       AdminConfig       `mapstructure:"admin"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
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

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type CronConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CalendarRefresh   string `mapstructure:"calendar_refresh"`
	SubscriptionSweep string `mapstructure:"subscription_sweep"`
}

// TradingConfig holds the session/day risk-limit rules.
type TradingConfig struct {
	SessionLossLimit  int           `mapstructure:"session_loss_limit"`
	BlockCooldown     time.Duration `mapstructure:"block_cooldown"`
	MaxSessionsPerDay int           `mapstructure:"max_sessions_per_day"`
}

// ProjectionsConfig are the fixed conservative assumptions used by the
// standalone projections endpoint.
type ProjectionsConfig struct {
	Winrate     float64 `mapstructure:"winrate"`
	RiskPercent float64 `mapstructure:"risk_percent"`
	OpsPerDay   int     `mapstructure:"ops_per_day"`
}

// AdminConfig drives the capability override: when Bypass is set and the
// caller's email matches Email, plan gates resolve to unlimited.
type AdminConfig struct {
	Email  string `mapstructure:"email"`
	Bypass bool   `mapstructure:"bypass"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.calendar_refresh", "0 10 0 * * *")
	v.SetDefault("cron.subscription_sweep", "0 0 * * * *")
	v.SetDefault("trading.session_loss_limit", 2)
	v.SetDefault("trading.block_cooldown", "24h")
	v.SetDefault("trading.max_sessions_per_day", 3)
	v.SetDefault("projections.winrate", 0.60)
	v.SetDefault("projections.risk_percent", 2.0)
	v.SetDefault("projections.ops_per_day", 5)
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.bypass", false)

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
