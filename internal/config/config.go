package config

import (
	"time"

	pkgconfig "github.com/mnkvreels/vreels-backend/pkg/config"
	"github.com/mnkvreels/vreels-backend/pkg/database"
	"github.com/mnkvreels/vreels-backend/pkg/pubsub"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	PubSub     pubsub.Config `mapstructure:"pubsub"`
	Notify     NotifyConfig
	Reconciler ReconcilerConfig
	Auth       AuthConfig
	Feed       FeedConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	AdminPort int    `mapstructure:"admin_port"`
	GRPCPort  int    `mapstructure:"grpc_port"`
	Mode      string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

// ToDatabase converts to the shared database package config.
func (d DatabaseConfig) ToDatabase() *database.Config {
	return &database.Config{
		Driver:          d.Driver,
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		DBName:          d.DBName,
		SSLMode:         d.SSLMode,
		FilePath:        d.FilePath,
		MaxIdleConns:    d.MaxIdleConns,
		MaxOpenConns:    d.MaxOpenConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		LogLevel:        d.LogLevel,
	}
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CountTTL time.Duration `mapstructure:"count_ttl"`
}

// KafkaConfig configures the users-table CDC consumer. An empty broker list
// disables it.
type KafkaConfig struct {
	Brokers   string `mapstructure:"brokers"`
	UserTopic string `mapstructure:"user_topic"`
	GroupID   string `mapstructure:"group_id"`
}

type NotifyConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type ReconcilerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	TopN     int           `mapstructure:"top_n"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type FeedConfig struct {
	DefaultLimit       int `mapstructure:"default_limit"`
	MaxLimit           int `mapstructure:"max_limit"`
	DefaultSuggestions int `mapstructure:"default_suggestions"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func Load(configPath string) (*Config, error) {
	v, err := pkgconfig.Load(configPath, "config")
	if err != nil {
		return nil, err
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8095)
	v.SetDefault("server.admin_port", 9095)
	v.SetDefault("server.grpc_port", 50095)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/social-graph.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.count_ttl", "10m")
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.user_topic", "dbserver1.public.users")
	v.SetDefault("kafka.group_id", "social-graph-service")
	v.SetDefault("pubsub.driver", "redis")
	v.SetDefault("pubsub.redis.address", "localhost:6379")
	v.SetDefault("pubsub.redis.pool_size", 10)
	v.SetDefault("pubsub.redis.read_timeout", "3s")
	v.SetDefault("pubsub.redis.write_timeout", "3s")
	v.SetDefault("pubsub.kafka.partitions", 4)
	v.SetDefault("notify.timeout", "2s")
	v.SetDefault("reconciler.enabled", false)
	v.SetDefault("reconciler.interval", "60s")
	v.SetDefault("reconciler.top_n", 100)
	v.SetDefault("auth.issuer", "")
	v.SetDefault("feed.default_limit", 10)
	v.SetDefault("feed.max_limit", 100)
	v.SetDefault("feed.default_suggestions", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	err = pkgconfig.BindEnvs(v, map[string]string{
		"server.port":             "PORT",
		"server.admin_port":       "ADMIN_PORT",
		"server.grpc_port":        "GRPC_PORT",
		"server.mode":             "GIN_MODE",
		"database.driver":         "DB_DRIVER",
		"database.host":           "DB_HOST",
		"database.port":           "DB_PORT",
		"database.user":           "DB_USER",
		"database.password":       "DB_PASSWORD",
		"database.dbname":         "DB_NAME",
		"database.sslmode":        "DB_SSLMODE",
		"database.file_path":      "DB_FILE_PATH",
		"database.max_idle_conns": "DB_MAX_IDLE_CONNS",
		"database.max_open_conns": "DB_MAX_OPEN_CONNS",
		"database.log_level":      "DB_LOG_LEVEL",
		"redis.address":           "REDIS_ADDRESS",
		"redis.password":          "REDIS_PASSWORD",
		"redis.db":                "REDIS_DB",
		"kafka.brokers":           "KAFKA_BROKERS",
		"kafka.user_topic":        "KAFKA_USER_TOPIC",
		"kafka.group_id":          "KAFKA_GROUP_ID",
		"pubsub.driver":           "PUBSUB_DRIVER",
		"pubsub.redis.address":    "PUBSUB_REDIS_ADDRESS",
		"pubsub.kafka.brokers":    "PUBSUB_KAFKA_BROKERS",
		"reconciler.enabled":      "RECONCILER_ENABLED",
		"reconciler.interval":     "RECONCILER_INTERVAL",
		"reconciler.top_n":        "RECONCILER_TOP_N",
		"auth.jwt_secret":         "JWT_SECRET",
		"auth.issuer":             "JWT_ISSUER",
		"log.level":               "LOG_LEVEL",
	})
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
