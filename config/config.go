// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	seedAdmin         = pflag.Bool("seed-admin", false, "Creates the initial admin account from the config and exits")
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"sqlite", "postgres"}
)

// SeedAdmin reports whether the server was started only to create the
// initial admin account.
func SeedAdmin() bool {
	return *seedAdmin
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.frontend_url", "host_frontend_url")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.expiry_hours", "jwt_expiry_hours")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.dsn", "storage_dsn")

	v.BindEnv("smtp.host", "smtp_host")
	v.BindEnv("smtp.port", "smtp_port")
	v.BindEnv("smtp.from", "smtp_from")
	v.BindEnv("smtp.password", "smtp_password")

	v.BindEnv("otp.ttl_minutes", "otp_ttl_minutes")
	v.BindEnv("reset.ttl_minutes", "reset_ttl_minutes")

	v.BindEnv("borrow.period_days", "borrow_period_days")
	v.BindEnv("borrow.fine_per_day", "borrow_fine_per_day")

	v.BindEnv("reminder.cron", "reminder_cron")
	v.BindEnv("cleanup.interval_minutes", "cleanup_interval_minutes")
	v.BindEnv("cleanup.grace_minutes", "cleanup_grace_minutes")

	v.BindEnv("admin.name", "admin_name")
	v.BindEnv("admin.email", "admin_email")
	v.BindEnv("admin.password", "admin_password")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.frontend_url", "http://localhost:5173")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("jwt.expiry_hours", 72)

	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.dsn", "library.db")

	v.SetDefault("otp.ttl_minutes", 15)
	v.SetDefault("reset.ttl_minutes", 15)

	v.SetDefault("borrow.period_days", 7)
	v.SetDefault("borrow.fine_per_day", 0.5)

	v.SetDefault("reminder.cron", "*/30 * * * *")
	v.SetDefault("cleanup.interval_minutes", 60)
	v.SetDefault("cleanup.grace_minutes", 60)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if v.GetInt("jwt.expiry_hours") <= 0 {
		return errors.New("jwt.expiry_hours must be bigger than 0")
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetString("storage.dsn") == "" {
		return errors.New("storage dsn can't be empty")
	}

	if v.GetString("smtp.host") == "" {
		return errors.New("smtp host can't be empty")
	}

	if v.GetInt("smtp.port") <= 0 {
		return errors.New("invalid smtp port provided")
	}

	if v.GetString("smtp.from") == "" {
		return errors.New("smtp sender address can't be empty")
	}

	if v.GetInt("otp.ttl_minutes") <= 0 {
		return errors.New("otp.ttl_minutes must be bigger than 0")
	}

	if v.GetInt("reset.ttl_minutes") <= 0 {
		return errors.New("reset.ttl_minutes must be bigger than 0")
	}

	if v.GetInt("borrow.period_days") <= 0 {
		return errors.New("borrow.period_days must be bigger than 0")
	}

	if v.GetFloat64("borrow.fine_per_day") < 0 {
		return errors.New("borrow.fine_per_day can't be negative")
	}

	if v.GetString("reminder.cron") == "" {
		return errors.New("reminder.cron can't be empty")
	}

	if v.GetInt("cleanup.grace_minutes") < 0 {
		return errors.New("cleanup.grace_minutes can't be negative")
	}

	return nil
}
