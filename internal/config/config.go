package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App           AppConfig           `yaml:"app"`
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Storage       StorageConfig       `yaml:"storage"`
	WhatsApp      WhatsAppConfig      `yaml:"whatsapp"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Import        ImportConfig        `yaml:"import"`
	Workers       WorkersConfig       `yaml:"workers"`
	Logging       LoggingConfig       `yaml:"logging"`
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
}

type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
}

type RedisConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	Password          string        `yaml:"password"`
	DB                int           `yaml:"db"`
	PoolSize          int           `yaml:"pool_size"`
	NotificationQueue string        `yaml:"notification_queue"`
	DLQSuffix         string        `yaml:"dlq_suffix"`
	SessionPrefix     string        `yaml:"session_prefix"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
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
}

// WhatsAppConfig points at a Twilio-compatible messaging API.
type WhatsAppConfig struct {
	BaseURL    string        `yaml:"base_url"`
	AccountSID string        `yaml:"account_sid"`
	AuthToken  string        `yaml:"auth_token"`
	From       string        `yaml:"from"`
	Timeout    time.Duration `yaml:"timeout"`
}

type NotificationsConfig struct {
	Driver         string `yaml:"driver"` // whatsapp, queue or log
	BatchCap       int    `yaml:"batch_cap"`
	WelcomeMessage string `yaml:"welcome_message"`
	Signature      string `yaml:"signature"`
	MaxAttempts    int    `yaml:"max_attempts"`
}

type ImportConfig struct {
	DefaultAcademicYear string `yaml:"default_academic_year"`
	DefaultBoard        string `yaml:"default_board"`
	MaxUploadBytes      int64  `yaml:"max_upload_bytes"`
}

type WorkersConfig struct {
	Notify NotifyWorkerConfig `yaml:"notify"`
}

type NotifyWorkerConfig struct {
	Count int `yaml:"count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const DefaultWelcomeMessage = "Welcome to GradePulse! Reply with:\n1 → English\n2 → हिंदी\n3 → தமிழ்\n4 → ಕನ್ನಡ"

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	return LoadFile(configPath)
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "gradepulse"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Database.Loc == "" {
		c.Database.Loc = "UTC" // dates are stored as UTC civil days
	}
	if c.Redis.NotificationQueue == "" {
		c.Redis.NotificationQueue = "gradepulse:notifications"
	}
	if c.Redis.DLQSuffix == "" {
		c.Redis.DLQSuffix = ":dlq"
	}
	if c.Redis.SessionPrefix == "" {
		c.Redis.SessionPrefix = "gradepulse:upload:"
	}
	if c.Redis.SessionTTL == 0 {
		c.Redis.SessionTTL = time.Hour
	}
	if c.WhatsApp.BaseURL == "" {
		c.WhatsApp.BaseURL = "https://api.twilio.com"
	}
	if c.WhatsApp.Timeout == 0 {
		c.WhatsApp.Timeout = 15 * time.Second
	}
	if c.Notifications.Driver == "" {
		c.Notifications.Driver = "log"
	}
	if c.Notifications.BatchCap == 0 {
		c.Notifications.BatchCap = 10
	}
	if c.Notifications.WelcomeMessage == "" {
		c.Notifications.WelcomeMessage = DefaultWelcomeMessage
	}
	if c.Notifications.Signature == "" {
		c.Notifications.Signature = "GradePulse Team"
	}
	if c.Notifications.MaxAttempts == 0 {
		c.Notifications.MaxAttempts = 3
	}
	if c.Import.DefaultAcademicYear == "" {
		c.Import.DefaultAcademicYear = "2024-2025"
	}
	if c.Import.DefaultBoard == "" {
		c.Import.DefaultBoard = "CBSE"
	}
	if c.Import.MaxUploadBytes == 0 {
		c.Import.MaxUploadBytes = 10 << 20
	}
	if c.Workers.Notify.Count == 0 {
		c.Workers.Notify.Count = 2
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	switch c.Notifications.Driver {
	case "whatsapp", "queue", "log":
	default:
		return fmt.Errorf("invalid notifications.driver %q (want whatsapp, queue or log)", c.Notifications.Driver)
	}
	if c.Notifications.BatchCap < 0 {
		return fmt.Errorf("notifications.batch_cap must not be negative")
	}
	if c.Notifications.Driver == "whatsapp" && (c.WhatsApp.AccountSID == "" || c.WhatsApp.From == "") {
		return fmt.Errorf("whatsapp.account_sid and whatsapp.from are required for the whatsapp driver")
	}
	return nil
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
// parseTime is always on; date and timestamp columns scan into time.Time.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true&loc=%s&multiStatements=true",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, c.Database.Loc)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
