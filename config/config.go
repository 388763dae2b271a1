package config

import (
	"strings"
	"time"

	"github.com/saifurrahmanctg/micro-earn-server/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	S3       S3Config       `mapstructure:"s3"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string `mapstructure:"port"`
	Env            string `mapstructure:"env"`
	ReqTimeoutSec  int    `mapstructure:"req_timeout_sec"`
	MaxBodyBytes   int64  `mapstructure:"max_body_bytes"`
	TrustedProxies string `mapstructure:"trusted_proxies"`
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Name           string `mapstructure:"name"`
	Params         string `mapstructure:"params"`
	DSN            string `mapstructure:"dsn"`
	TLS            string `mapstructure:"tls"`
	TLSCAPath      string `mapstructure:"tls_ca_path"`
	ConnectRetries int    `mapstructure:"connect_retries"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns"`
	ConnMaxLifeSec int    `mapstructure:"conn_max_life_sec"`
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
	// token lifetime in minutes, original issued 1h tokens
	ExpiryMin int `mapstructure:"expiry_min"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	From string `mapstructure:"from"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	Currency  string `mapstructure:"currency"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	PublicURL string `mapstructure:"public_url"`
}

type CORSConfig struct {
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

type NotifyConfig struct {
	SweepIntervalSec int `mapstructure:"sweep_interval_sec"`
	Workers          int `mapstructure:"workers"`
	MaxAttempts      int `mapstructure:"max_attempts"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
	File   string `mapstructure:"file"`
}

func (n NotifyConfig) SweepInterval() time.Duration {
	return time.Duration(n.SweepIntervalSec) * time.Second
}

// Load reads config.yaml (optional) and environment variables. Env wins:
// keys map as jwt.secret -> JWT_SECRET, database.host -> DATABASE_HOST.
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/micro-earn")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.req_timeout_sec", 10)
	viper.SetDefault("server.max_body_bytes", 1<<20)
	viper.SetDefault("server.trusted_proxies", "")
	viper.SetDefault("database.host", "127.0.0.1")
	viper.SetDefault("database.port", "3306")
	viper.SetDefault("database.user", "root")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.name", "micro_earn")
	viper.SetDefault("database.params", "charset=utf8mb4&parseTime=True&loc=Local")
	viper.SetDefault("database.tls", "false")
	viper.SetDefault("database.connect_retries", 5)
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 25)
	viper.SetDefault("database.conn_max_life_sec", 3600)
	viper.SetDefault("jwt.expiry_min", 60)
	viper.SetDefault("jwt.issuer", "micro-earn-server")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("smtp.port", "587")
	viper.SetDefault("stripe.currency", "usd")
	viper.SetDefault("s3.region", "auto")
	viper.SetDefault("cors.allowed_origins", "http://localhost:5173,http://localhost:5174")
	viper.SetDefault("notify.sweep_interval_sec", 30)
	viper.SetDefault("notify.workers", 8)
	viper.SetDefault("notify.max_attempts", 5)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("no config file loaded, using env/defaults: %v", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Fatal("unable to decode config: %v", err)
	}
	return &cfg
}
