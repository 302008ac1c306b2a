package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/hamed0406/pagemonitor/internal/domain"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type Config struct {
	EndpointsFile string      `mapstructure:"endpoints_file"` // JSON or YAML list of pages
	Log           LogConfig   `mapstructure:"log"`
	Check         CheckConfig `mapstructure:"check"`
	Alert         AlertConfig `mapstructure:"alert"`
}

type LogConfig struct {
	Dir   string `mapstructure:"dir"`
	Level string `mapstructure:"level"`
}

type CheckConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	Concurrency   int           `mapstructure:"concurrency"`    // 1 keeps the pass strictly sequential
	RetryAttempts int           `mapstructure:"retry_attempts"` // 1 means no retry
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
}

type AlertConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Kafka      KafkaConfig   `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Webhook reports the alert webhook URL and whether one is configured. The
// URL is not validated: alerting is best-effort, so an unusable URL surfaces
// as a delivery failure at send time.
func (a AlertConfig) Webhook() (string, bool) {
	u := strings.TrimSpace(a.WebhookURL)
	return u, u != ""
}

// Load reads configuration from defaults, an optional monitor.yaml (./config
// or the working directory, or file when non-empty) and the environment.
// Every failure wraps domain.ErrConfiguration.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("monitor")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: read config: %v", domain.ErrConfiguration, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decode config: %v", domain.ErrConfiguration, err)
	}
	cfg.Alert.Kafka.Brokers = splitBrokers(cfg.Alert.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoints_file", "urls.json")

	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.level", LogLevelInfo)

	v.SetDefault("check.timeout", "8s")
	v.SetDefault("check.concurrency", 1)
	v.SetDefault("check.retry_attempts", 1)
	v.SetDefault("check.retry_backoff", "0s")

	// Empty defaults make the keys visible to Unmarshal so env overrides apply.
	v.SetDefault("alert.webhook_url", "")
	v.SetDefault("alert.timeout", "5s")
	v.SetDefault("alert.kafka.brokers", []string{})
	v.SetDefault("alert.kafka.topic", "monitor-alerts")
}

// splitBrokers accepts both list values and a single comma-separated entry.
func splitBrokers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, b := range strings.Split(item, ",") {
			if b = strings.TrimSpace(b); b != "" {
				out = append(out, b)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.EndpointsFile, validation.Required),
		validation.Field(&c.Log,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LogConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LogConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Dir, validation.Required),
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Check,
			validation.By(func(value interface{}) error {
				cc, ok := value.(CheckConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a CheckConfig")
				}
				return validation.ValidateStruct(&cc,
					validation.Field(&cc.Timeout, validation.Required, validation.Min(time.Millisecond)),
					validation.Field(&cc.Concurrency, validation.Required, validation.Min(1)),
					validation.Field(&cc.RetryAttempts, validation.Required, validation.Min(1)),
					validation.Field(&cc.RetryBackoff, validation.Min(time.Duration(0))),
				)
			}),
		),
		validation.Field(&c.Alert,
			validation.By(func(value interface{}) error {
				ac, ok := value.(AlertConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an AlertConfig")
				}
				return validation.ValidateStruct(&ac,
					validation.Field(&ac.Timeout, validation.Required, validation.Min(time.Millisecond)),
				)
			}),
		),
	)
}
