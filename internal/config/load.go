package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config.yaml next to the binary or in /etc/mnemos.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/mnemos")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; environment and defaults cover it.
	}

	// Environment variables: MNEMOS_SERVER_PORT, MNEMOS_DATABASE_URL, ...
	v.SetEnvPrefix("MNEMOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers the default value for every setting so a bare
// environment still yields a runnable configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")

	v.SetDefault("scheduler.failed_retry_step_minutes", 0)
	v.SetDefault("scheduler.max_interval_days", 0)

	v.SetDefault("notification.sweep_interval", "30s")
	v.SetDefault("notification.sweep_concurrency", 4)
	v.SetDefault("notification.delivery_workers", 2)
	v.SetDefault("notification.delivery_queue_size", 128)
	v.SetDefault("notification.reminder_batch_limit", 10)
	v.SetDefault("notification.reminder_expiry", "24h")
}

// validate runs struct-tag validation over the loaded configuration and
// converts validator errors into a readable message.
func validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
	}

	return fmt.Errorf("failed to validate config: %w", err)
}
