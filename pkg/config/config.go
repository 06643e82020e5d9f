package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Telemetry     TelemetryConfig     `mapstructure:"telemetry"`
	CommentClient CommentClientConfig `mapstructure:"comment_client"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name      string `mapstructure:"name"`
	Version   string `mapstructure:"version"`
	JWTSecret string `mapstructure:"jwt_secret"`
	LogLevel  string `mapstructure:"log_level"`
	Storage   string `mapstructure:"storage"` // postgres | memory
	MachineID int64  `mapstructure:"machine_id"`
	RateLimit int    `mapstructure:"rate_limit"` // 每分钟每个IP可创建的评论数，0 表示不限
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
}

// HTTPConfig HTTP服务配置
type HTTPConfig struct {
	Network string        `mapstructure:"network"`
	Addr    string        `mapstructure:"addr"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	MongoDB    MongoDBConfig    `mapstructure:"mongodb"`
	PostgreSQL PostgreSQLConfig `mapstructure:"postgresql"`
}

// MongoDBConfig MongoDB配置
type MongoDBConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"db_name"`
}

// PostgreSQLConfig PostgreSQL配置
type PostgreSQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// TelemetryConfig 链路追踪配置
type TelemetryConfig struct {
	Exporter   string  `mapstructure:"exporter"` // stdout | none
	SampleRate float64 `mapstructure:"sample_rate"`
}

// CommentClientConfig 后台访问评论服务的配置
type CommentClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// 服务默认端口
var defaultPorts = map[string]string{
	"comment-service": "21010",
	"comment-admin":   "21011",
}

// 环境变量与配置项的对应关系
var envBindings = map[string]string{
	"server.http.port":         "HTTP_PORT",
	"app.jwt_secret":           "JWT_SECRET",
	"app.log_level":            "LOG_LEVEL",
	"app.storage":              "STORAGE",
	"app.machine_id":           "MACHINE_ID",
	"app.rate_limit":           "RATE_LIMIT",
	"database.postgresql.dsn":  "POSTGRESQL_DSN",
	"database.mongodb.uri":     "MONGODB_URI",
	"database.mongodb.db_name": "MONGODB_DB",
	"redis.addr":               "REDIS_ADDR",
	"redis.password":           "REDIS_PASSWORD",
	"redis.db":                 "REDIS_DB",
	"kafka.brokers":            "KAFKA_BROKERS",
	"kafka.topic":              "KAFKA_TOPIC",
	"telemetry.exporter":       "OTEL_EXPORTER",
	"telemetry.sample_rate":    "OTEL_SAMPLE_RATE",
	"comment_client.base_url":  "COMMENT_SERVICE_URL",
	"comment_client.token":     "COMMENT_SERVICE_TOKEN",
	"comment_client.timeout":   "COMMENT_SERVICE_TIMEOUT",
}

// LoadConfig 加载配置：默认值 < 配置文件(CONFIG_FILE) < 环境变量
func LoadConfig(serviceName string) (*Config, error) {
	port, ok := defaultPorts[serviceName]
	if !ok {
		return nil, fmt.Errorf("未知的服务名称: %s，支持的服务名称: comment-service, comment-admin", serviceName)
	}

	v := viper.New()
	setDefaults(v, serviceName, port)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	if err := v.BindEnv("config_file", "CONFIG_FILE"); err != nil {
		return nil, fmt.Errorf("bind env CONFIG_FILE: %w", err)
	}

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.App.Name = serviceName
	cfg.Server.HTTP.Addr = ":" + v.GetString("server.http.port")
	cfg.Kafka.Brokers = splitList(v.GetStringSlice("kafka.brokers"))

	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper, serviceName, port string) {
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.jwt_secret", "blog-moderation")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.storage", "postgres")
	v.SetDefault("app.machine_id", 1)
	v.SetDefault("app.rate_limit", 30)

	v.SetDefault("server.http.network", "tcp")
	v.SetDefault("server.http.port", port)
	v.SetDefault("server.http.timeout", "30s")

	v.SetDefault("database.mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongodb.db_name", "blog_moderation")
	v.SetDefault("database.postgresql.dsn", "host=localhost user=postgres password=postgres dbname=blog_comments port=5432 sslmode=disable TimeZone=Asia/Shanghai")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "5m")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "comment-events")

	v.SetDefault("telemetry.exporter", "stdout")
	v.SetDefault("telemetry.sample_rate", 1.0)

	v.SetDefault("comment_client.base_url", "http://localhost:"+defaultPorts["comment-service"])
	v.SetDefault("comment_client.token", "")
	v.SetDefault("comment_client.timeout", "30s")
}

// splitList 兼容 "a,b" 形式的环境变量
func splitList(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}
