package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	AI        AIConfig        `yaml:"ai"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Workers   WorkersConfig   `yaml:"workers"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadSize   int64         `yaml:"max_upload_size"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	ParseTime          bool          `yaml:"parse_time"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
}

type RedisConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	PoolSize    int    `yaml:"pool_size"`
	ImportQueue string `yaml:"import_queue"`
	DLQSuffix   string `yaml:"dlq_suffix"`
	// RevokedPrefix namespaces revoked session ids.
	RevokedPrefix string `yaml:"revoked_prefix"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix"`
}

type AuthConfig struct {
	AdminPassword string        `yaml:"admin_password"`
	SigningKey    string        `yaml:"signing_key"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	Issuer        string        `yaml:"issuer"`
}

type AIConfig struct {
	Enabled           bool          `yaml:"enabled"`
	BaseURL           string        `yaml:"base_url"`
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"api_key"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	MaxContextRecords int           `yaml:"max_context_records"`
}

type DashboardConfig struct {
	DefaultPageSize int           `yaml:"default_page_size"`
	ColumnWidth     int           `yaml:"column_width"`
	MinColumnWidth  int           `yaml:"min_column_width"`
	PartNumberLimit int           `yaml:"part_number_limit"`
	ViewerTTL       time.Duration `yaml:"viewer_ttl"`
	ViewerCleanup   time.Duration `yaml:"viewer_cleanup"`
	ArchiveUploads  bool          `yaml:"archive_uploads"`
	RefreshTimeout  time.Duration `yaml:"refresh_timeout"`
}

type WorkersConfig struct {
	Import ImportWorkerConfig `yaml:"import"`
}

type ImportWorkerConfig struct {
	Count     int `yaml:"count"`
	QueueSize int `yaml:"queue_size"`
	// MetricsPort serves /metrics from the worker process. 0 disables it.
	MetricsPort int `yaml:"metrics_port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML, applies secret overrides from the environment and
// fills defaults.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"ADMIN_PASSWORD":   &c.Auth.AdminPassword,
		"AUTH_SIGNING_KEY": &c.Auth.SigningKey,
		"AI_API_KEY":       &c.AI.APIKey,
		"DB_PASSWORD":      &c.Database.Password,
		"S3_SECRET_KEY":    &c.Storage.S3.SecretKey,
		"REDIS_PASSWORD":   &c.Redis.Password,
	}
	for env, target := range overrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*target = v
		}
	}
}

// Validate fills defaults and rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Server.MaxUploadSize == 0 {
		c.Server.MaxUploadSize = 32 << 20
	}

	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Database.Loc == "" {
		c.Database.Loc = "Local"
	}

	if c.Redis.ImportQueue == "" {
		c.Redis.ImportQueue = "aos:imports"
	}
	if c.Redis.DLQSuffix == "" {
		c.Redis.DLQSuffix = ":dlq"
	}
	if c.Redis.RevokedPrefix == "" {
		c.Redis.RevokedPrefix = "aos:revoked:"
	}

	if c.Storage.S3.Prefix == "" {
		c.Storage.S3.Prefix = "uploads"
	}

	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 24 * time.Hour
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "dash-aos"
	}
	if c.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}

	if c.AI.Timeout == 0 {
		c.AI.Timeout = 30 * time.Second
	}
	if c.AI.RequestsPerMinute == 0 {
		c.AI.RequestsPerMinute = 10
	}
	if c.AI.MaxContextRecords == 0 {
		c.AI.MaxContextRecords = 200
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-1.5-flash"
	}

	if c.Dashboard.DefaultPageSize == 0 {
		c.Dashboard.DefaultPageSize = 10
	}
	if c.Dashboard.ColumnWidth == 0 {
		c.Dashboard.ColumnWidth = 150
	}
	if c.Dashboard.MinColumnWidth == 0 {
		c.Dashboard.MinColumnWidth = 80
	}
	if c.Dashboard.PartNumberLimit == 0 {
		c.Dashboard.PartNumberLimit = 50
	}
	if c.Dashboard.ViewerTTL == 0 {
		c.Dashboard.ViewerTTL = 12 * time.Hour
	}
	if c.Dashboard.ViewerCleanup == 0 {
		c.Dashboard.ViewerCleanup = 30 * time.Minute
	}
	if c.Dashboard.RefreshTimeout == 0 {
		c.Dashboard.RefreshTimeout = 30 * time.Second
	}

	if c.Workers.Import.Count == 0 {
		c.Workers.Import.Count = 2
	}
	if c.Workers.Import.QueueSize == 0 {
		c.Workers.Import.QueueSize = 100
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, c.Database.ParseTime, c.Database.Loc)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
