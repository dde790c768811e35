package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Notification NotificationConfig `mapstructure:"notification" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL selects the in-memory queue store and disables durable
// card persistence; useful for local development and tests.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// SchedulerConfig overrides review scheduling parameters. Zero values
// keep the algorithm defaults.
type SchedulerConfig struct {
	FailedRetryStepMinutes int `mapstructure:"failed_retry_step_minutes" validate:"gte=0"`
	MaxIntervalDays        int `mapstructure:"max_interval_days" validate:"gte=0"`
}

// NotificationConfig tunes the notification queue manager, the periodic
// sweep and the delivery worker pool.
type NotificationConfig struct {
	// SweepInterval is how often the periodic sweep delivers due
	// notifications for active users.
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required"`

	// SweepConcurrency bounds how many users one sweep pass processes
	// in parallel.
	SweepConcurrency int `mapstructure:"sweep_concurrency" validate:"required,gt=0"`

	// DeliveryWorkers is the number of goroutines draining the channel
	// delivery queue.
	DeliveryWorkers int `mapstructure:"delivery_workers" validate:"required,gt=0"`

	// DeliveryQueueSize buffers outbound channel sends; when the buffer
	// is full further sends in that pass are dropped and logged.
	DeliveryQueueSize int `mapstructure:"delivery_queue_size" validate:"required,gt=0"`

	// ReminderBatchLimit caps review reminders emitted per generation
	// pass when the user's preferences do not set their own cap.
	ReminderBatchLimit int `mapstructure:"reminder_batch_limit" validate:"required,gt=0"`

	// ReminderExpiry is how long a generated review reminder stays
	// relevant before lazy expiry retires it.
	ReminderExpiry time.Duration `mapstructure:"reminder_expiry" validate:"required"`
}
