package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Provider      ProviderConfig      `yaml:"provider"`
	Payment       PaymentConfig       `yaml:"payment"`
	Auth          AuthConfig          `yaml:"auth"`
	Session       SessionConfig       `yaml:"session"`
	SMTP          SMTPConfig          `yaml:"smtp"`
	Log           LogConfig           `yaml:"log"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	PaymentEventsTopic string   `yaml:"payment_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

// ProviderConfig points at the flight inventory provider. SharedURL serves
// authentication, AirURL everything else.
type ProviderConfig struct {
	SharedURL string        `yaml:"shared_url"`
	AirURL    string        `yaml:"air_url"`
	ClientID  string        `yaml:"client_id"`
	UserName  string        `yaml:"user_name"`
	Password  string        `yaml:"password"`
	Timeout   time.Duration `yaml:"timeout"`
}

type PaymentConfig struct {
	BaseURL     string        `yaml:"base_url"`
	MerchantID  string        `yaml:"merchant_id"`
	SaltKey     string        `yaml:"salt_key"`
	SaltIndex   int           `yaml:"salt_index"`
	RedirectURL string        `yaml:"redirect_url"`
	CallbackURL string        `yaml:"callback_url"`
	Amount      int64         `yaml:"amount"`
	Timeout     time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	TokenCacheTTL time.Duration `yaml:"token_cache_ttl"`
}

type SessionConfig struct {
	TraceTTL     time.Duration `yaml:"trace_ttl"`
	CookieDomain string        `yaml:"cookie_domain"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

func (s SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NotificationsConfig selects how ticket emails leave the API process:
// "kafka" hands them to the worker, "direct" sends over SMTP in-request.
type NotificationsConfig struct {
	Mode string `yaml:"mode"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate fills defaults and rejects configs the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 90 * time.Second
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 5 * time.Second
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 30 * time.Second
	}
	if c.Payment.Timeout == 0 {
		c.Payment.Timeout = 15 * time.Second
	}
	if c.Payment.Amount == 0 {
		c.Payment.Amount = 100
	}
	if c.Payment.SaltIndex == 0 {
		c.Payment.SaltIndex = 1
	}
	if c.Session.TraceTTL == 0 {
		c.Session.TraceTTL = 15 * time.Hour
	}
	if c.Notifications.Mode == "" {
		c.Notifications.Mode = "kafka"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	var errs []error
	if c.Provider.SharedURL == "" || c.Provider.AirURL == "" {
		errs = append(errs, errors.New("provider.shared_url and provider.air_url are required"))
	}
	if c.Provider.ClientID == "" || c.Provider.UserName == "" || c.Provider.Password == "" {
		errs = append(errs, errors.New("provider credentials are required"))
	}
	if c.Payment.BaseURL == "" || c.Payment.MerchantID == "" || c.Payment.SaltKey == "" {
		errs = append(errs, errors.New("payment.base_url, payment.merchant_id and payment.salt_key are required"))
	}
	switch c.Notifications.Mode {
	case "kafka", "direct":
	default:
		errs = append(errs, fmt.Errorf("notifications.mode %q must be kafka or direct", c.Notifications.Mode))
	}
	return errors.Join(errs...)
}
