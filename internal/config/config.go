// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Source    SourceConfig
	Proposal  ProposalConfig
	Storage   StorageConfig
	Scheduler SchedulerConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port            string
	Mode            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	AllowedOrigins  []string
}

type DatabaseConfig struct {
	Enabled         bool
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConcurrentTx int64
}

// DSN returns URL when set, otherwise a lib/pq keyword connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ImpactTTLSeconds int
}

const (
	SourceNone  = "none"
	SourceREST  = "rest"
	SourceFile  = "file"
	SourceDrive = "drive"
)

type SourceConfig struct {
	Kind                 string
	RESTBaseURL          string
	RESTToken            string
	RESTInventoryPath    string
	RESTProductsPath     string
	RESTSuppliersPath    string
	RESTTimeoutSeconds   int
	FileDir              string
	DriveFolderID        string
	DriveFolderPath      string
	DriveCredentialsJSON string
}

type ProposalConfig struct {
	MOQMinQty       int64
	MOQStep         int64
	UnitCostRatio   float64
	SupplierRouting string
}

type StorageConfig struct {
	Enabled      bool
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	UseSSL       bool
	ExportPrefix string
}

type SchedulerConfig struct {
	GenerateCron   string
	TimeoutSeconds int
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads .env and the environment once per process.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		instance = load(viper.New())
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "autopo")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MAX_CONCURRENT_TX", 10)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_IMPACT_TTL_SECONDS", 300)

	v.SetDefault("SOURCE_KIND", SourceNone)
	v.SetDefault("SOURCE_REST_BASE_URL", "")
	v.SetDefault("SOURCE_REST_TOKEN", "")
	v.SetDefault("SOURCE_REST_INVENTORY_PATH", "/inventory")
	v.SetDefault("SOURCE_REST_PRODUCTS_PATH", "/products")
	v.SetDefault("SOURCE_REST_SUPPLIERS_PATH", "/suppliers")
	v.SetDefault("SOURCE_REST_TIMEOUT_SECONDS", 15)
	v.SetDefault("SOURCE_FILE_DIR", "./data/snapshot")
	v.SetDefault("SOURCE_DRIVE_FOLDER_ID", "")
	v.SetDefault("SOURCE_DRIVE_FOLDER_PATH", "")
	v.SetDefault("GOOGLE_CREDENTIALS_JSON", "")

	v.SetDefault("PROPOSAL_MOQ_MIN_QTY", 50)
	v.SetDefault("PROPOSAL_MOQ_STEP", 10)
	v.SetDefault("PROPOSAL_UNIT_COST_RATIO", 0.5)
	v.SetDefault("PROPOSAL_SUPPLIER_ROUTING", "global")

	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "autopo-exports")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("STORAGE_EXPORT_PREFIX", "proposals")

	v.SetDefault("SCHEDULER_GENERATE_CRON", "")
	v.SetDefault("SCHEDULER_TIMEOUT_SECONDS", 120)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

func load(v *viper.Viper) *Config {
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			Mode:            v.GetString("SERVER_MODE"),
			ReadTimeout:     v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetInt("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetInt("SERVER_SHUTDOWN_TIMEOUT"),
			AllowedOrigins:  splitList(v.GetStringSlice("SERVER_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DB_ENABLED") || v.GetString("DATABASE_URL") != "",
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxConcurrentTx: v.GetInt64("DB_MAX_CONCURRENT_TX"),
		},
		Cache: CacheConfig{
			Enabled:          v.GetBool("CACHE_ENABLED"),
			RedisURL:         v.GetString("REDIS_URL"),
			RedisHost:        v.GetString("REDIS_HOST"),
			RedisPort:        v.GetString("REDIS_PORT"),
			RedisPassword:    v.GetString("REDIS_PASSWORD"),
			RedisDB:          v.GetInt("REDIS_DB"),
			ImpactTTLSeconds: v.GetInt("CACHE_IMPACT_TTL_SECONDS"),
		},
		Source: SourceConfig{
			Kind:                 strings.ToLower(strings.TrimSpace(v.GetString("SOURCE_KIND"))),
			RESTBaseURL:          v.GetString("SOURCE_REST_BASE_URL"),
			RESTToken:            v.GetString("SOURCE_REST_TOKEN"),
			RESTInventoryPath:    v.GetString("SOURCE_REST_INVENTORY_PATH"),
			RESTProductsPath:     v.GetString("SOURCE_REST_PRODUCTS_PATH"),
			RESTSuppliersPath:    v.GetString("SOURCE_REST_SUPPLIERS_PATH"),
			RESTTimeoutSeconds:   v.GetInt("SOURCE_REST_TIMEOUT_SECONDS"),
			FileDir:              v.GetString("SOURCE_FILE_DIR"),
			DriveFolderID:        v.GetString("SOURCE_DRIVE_FOLDER_ID"),
			DriveFolderPath:      v.GetString("SOURCE_DRIVE_FOLDER_PATH"),
			DriveCredentialsJSON: v.GetString("GOOGLE_CREDENTIALS_JSON"),
		},
		Proposal: ProposalConfig{
			MOQMinQty:       v.GetInt64("PROPOSAL_MOQ_MIN_QTY"),
			MOQStep:         v.GetInt64("PROPOSAL_MOQ_STEP"),
			UnitCostRatio:   v.GetFloat64("PROPOSAL_UNIT_COST_RATIO"),
			SupplierRouting: strings.ToLower(strings.TrimSpace(v.GetString("PROPOSAL_SUPPLIER_ROUTING"))),
		},
		Storage: StorageConfig{
			Enabled:      v.GetBool("STORAGE_ENABLED"),
			Endpoint:     v.GetString("STORAGE_ENDPOINT"),
			AccessKey:    v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:    v.GetString("STORAGE_SECRET_KEY"),
			Bucket:       v.GetString("STORAGE_BUCKET"),
			Region:       v.GetString("STORAGE_REGION"),
			UseSSL:       v.GetBool("STORAGE_USE_SSL"),
			ExportPrefix: strings.Trim(v.GetString("STORAGE_EXPORT_PREFIX"), "/"),
		},
		Scheduler: SchedulerConfig{
			GenerateCron:   strings.TrimSpace(v.GetString("SCHEDULER_GENERATE_CRON")),
			TimeoutSeconds: v.GetInt("SCHEDULER_TIMEOUT_SECONDS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
	}
}

// splitList accepts both repeated values and a single comma separated env value.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Duration converts a seconds setting, falling back when it is not positive.
func Duration(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
