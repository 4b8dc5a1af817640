package config

import (
	"time"

	pkgconfig "github.com/weiawesome/ward-rooms/pkg/config"
	"github.com/weiawesome/ward-rooms/pkg/database"
	"github.com/weiawesome/ward-rooms/pkg/log"
	"github.com/weiawesome/ward-rooms/pkg/pubsub"
	"github.com/weiawesome/ward-rooms/pkg/storage"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

type Config struct {
	Server    ServerConfig
	Database  database.Config
	Redis     RedisConfig
	Cache     CacheConfig
	Storage   storage.Config
	Image     ImageConfig
	PubSub    pubsub.Config `mapstructure:"pubsub"`
	Auth      AuthConfig
	Directory DirectoryConfig
	Options   OptionsConfig
	Log       log.Config
}

type ServerConfig struct {
	Host string
	Port int
	Mode string
	// StaticPath is the URL prefix local storage files are served under.
	StaticPath string `mapstructure:"static_path"`
}

// IsDevelopment reports whether internal error details may be exposed.
func (s ServerConfig) IsDevelopment() bool {
	return s.Mode == ModeDevelopment
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Prefix  string        `mapstructure:"prefix"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type ImageConfig struct {
	MaxCount    int    `mapstructure:"max_count"`
	MaxBytes    int64  `mapstructure:"max_bytes"`
	MaxWidth    int    `mapstructure:"max_width"`
	MaxHeight   int    `mapstructure:"max_height"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`
	KeyPrefix   string `mapstructure:"key_prefix"`
}

type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type DirectoryConfig struct {
	BranchesURL string        `mapstructure:"branches_url"`
	FloorsURL   string        `mapstructure:"floors_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RetryCount  int           `mapstructure:"retry_count"`
}

// OptionsConfig lists the values offered to room forms.
type OptionsConfig struct {
	RoomCategories []string `mapstructure:"room_categories" json:"roomCategories"`
	WingBuildings  []string `mapstructure:"wing_buildings" json:"wingBuildings"`
	Facilities     []string `mapstructure:"facilities" json:"facilities"`
	PackageTypes   []string `mapstructure:"package_types" json:"packageTypes"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", ModeProduction)
	v.SetDefault("server.static_path", "/uploads")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "room_management")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.filepath", "./data/rooms.db")
	v.SetDefault("database.maxidleconns", 10)
	v.SetDefault("database.maxopenconns", 100)
	v.SetDefault("database.connmaxlifetime", 60)
	v.SetDefault("database.loglevel", "warn")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.prefix", "rooms")
	v.SetDefault("cache.ttl", "60s")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local.base_path", "./data/uploads")
	v.SetDefault("storage.local.public_url", "http://localhost:5000/uploads")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.use_path_style", false)

	v.SetDefault("image.max_count", 5)
	v.SetDefault("image.max_bytes", 10<<20)
	v.SetDefault("image.max_width", 800)
	v.SetDefault("image.max_height", 600)
	v.SetDefault("image.jpeg_quality", 85)
	v.SetDefault("image.key_prefix", "room-management/rooms")

	v.SetDefault("pubsub.driver", "none")
	v.SetDefault("pubsub.redis.address", "localhost:6379")
	v.SetDefault("pubsub.redis.pool_size", 10)
	v.SetDefault("pubsub.redis.read_timeout", "3s")
	v.SetDefault("pubsub.redis.write_timeout", "3s")
	v.SetDefault("pubsub.kafka.brokers", "localhost:9092")
	v.SetDefault("pubsub.kafka.partitions", 3)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.issuer", "ward-rooms")

	v.SetDefault("directory.branches_url", "https://configurations.dev-hmis.yanthralabs.com/api/v1/entity/values/active/public?entityCategory=2&tenantKey=bcfdb3c7-ff4f-11ef-891d-028579933a83")
	v.SetDefault("directory.floors_url", "https://configurations.dev-hmis.yanthralabs.com/api/v1/entity/values/active/public?entityCategory=31&tenantKey=bcfdb3c7-ff4f-11ef-891d-028579933a83")
	v.SetDefault("directory.timeout", "10s")
	v.SetDefault("directory.retry_count", 2)

	v.SetDefault("options.room_categories", []string{
		"General Ward", "Private Room", "Semi-Private", "ICU", "Daycare", "Isolation", "Maternity",
	})
	v.SetDefault("options.wing_buildings", []string{
		"Block 1 - South Wing", "Block 1 - North Wing", "Block 2 - East Wing", "Block 2 - West Wing",
	})
	v.SetDefault("options.facilities", []string{
		"AC", "WiFi", "TV", "Bathroom", "Balcony", "Refrigerator", "Cupboard", "Telephone", "Intercom", "Emergency Bell",
	})
	v.SetDefault("options.package_types", []string{
		"Daily", "Weekly", "Monthly", "Per Visit", "Per Procedure",
	})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "room-service")

	// Bind environment variables
	err = pkgconfig.BindEnvs(v, map[string]string{
		"server.port":                  "PORT",
		"server.mode":                  "APP_ENV",
		"database.driver":              "DB_DRIVER",
		"database.host":                "DB_HOST",
		"database.port":                "DB_PORT",
		"database.user":                "DB_USER",
		"database.password":            "DB_PASSWORD",
		"database.dbname":              "DB_NAME",
		"database.sslmode":             "DB_SSLMODE",
		"database.filepath":            "DB_FILE_PATH",
		"redis.address":                "REDIS_ADDRESS",
		"redis.password":               "REDIS_PASSWORD",
		"cache.enabled":                "CACHE_ENABLED",
		"storage.driver":               "STORAGE_DRIVER",
		"storage.local.base_path":      "STORAGE_LOCAL_PATH",
		"storage.local.public_url":     "STORAGE_PUBLIC_URL",
		"storage.s3.endpoint":          "S3_ENDPOINT",
		"storage.s3.region":            "S3_REGION",
		"storage.s3.bucket":            "S3_BUCKET",
		"storage.s3.access_key_id":     "S3_ACCESS_KEY_ID",
		"storage.s3.secret_access_key": "S3_SECRET_ACCESS_KEY",
		"storage.s3.use_path_style":    "S3_USE_PATH_STYLE",
		"storage.s3.public_url":        "S3_PUBLIC_URL",
		"pubsub.driver":                "PUBSUB_DRIVER",
		"pubsub.redis.address":         "PUBSUB_REDIS_ADDRESS",
		"pubsub.kafka.brokers":         "KAFKA_BROKERS",
		"auth.enabled":                 "AUTH_ENABLED",
		"auth.jwt_secret":              "AUTH_JWT_SECRET",
		"directory.branches_url":       "DIRECTORY_BRANCHES_URL",
		"directory.floors_url":         "DIRECTORY_FLOORS_URL",
		"log.level":                    "LOG_LEVEL",
		"log.pretty":                   "LOG_PRETTY",
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
