package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	serverConfig struct {
		Address                   string
		DebugAddress              string
		CookieName                string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		SessionResolveTimeout     time.Duration
		ShutdownTimeout           time.Duration
		FormRateLimit             float64 // requests per second, per client IP
		FormRateBurst             int
	}

	databaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	emailConfig struct {
		APIKey       string
		StaffAddress string
		DigestWindow time.Duration
	}

	Config struct {
		Env      string
		Build    string
		Debug    bool
		TestMode bool
		WorkDir  string

		AppName                   string
		AppURL                    string
		SecretKey                 string
		PasswordResetTimeoutDelta time.Duration
		RollbarToken              string

		Server   serverConfig
		Database databaseConfig
		Email    emailConfig
	}
)

func (dbc databaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

// StaffEmail is where contact form digests are delivered.
func (ec emailConfig) StaffEmail() mail.Address {
	return mail.Address{Name: Meta.Name, Address: ec.StaffAddress}
}

// NewConfig loads the configuration for the environment named by $ENV (DEV by default).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("app_name", Meta.Name)
	v.SetDefault("app_url", Meta.URL)
	v.SetDefault("secret_key", "h7(k$2b!lobito=corner@q9w+ze4u%x1m&8n0r-s#t3v5y")
	v.SetDefault("password_reset_timeout_delta", 3*24*time.Hour)
	v.SetDefault("rollbar_token", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debug_address", ":4000")
	v.SetDefault("server.cookie_name", "lobito_session")
	v.SetDefault("server.jwt_expiration_delta", 7*24*time.Hour)
	v.SetDefault("server.jwt_refresh_expiration_delta", 30*24*time.Hour)
	v.SetDefault("server.session_resolve_timeout", 2*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.form_rate_limit", 0.2)
	v.SetDefault("server.form_rate_burst", 5)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "lobito")
	v.SetDefault("database.user", "lobito")
	v.SetDefault("database.password", "")
	v.SetDefault("database.admin_user", "postgres")
	v.SetDefault("database.admin_password", "")
	v.SetDefault("database.disable_tls", true)

	v.SetDefault("email.api_key", "")
	v.SetDefault("email.staff_address", "team@lobitocorner.com")
	v.SetDefault("email.digest_window", 5*time.Minute)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("test_mode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:      env,
		Build:    v.GetString("build"),
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("test_mode"),
		WorkDir:  wd,

		AppName:                   v.GetString("app_name"),
		AppURL:                    strings.TrimSuffix(v.GetString("app_url"), "/"),
		SecretKey:                 v.GetString("secret_key"),
		PasswordResetTimeoutDelta: v.GetDuration("password_reset_timeout_delta"),
		RollbarToken:              v.GetString("rollbar_token"),

		Server: serverConfig{
			Address:                   v.GetString("server.address"),
			DebugAddress:              v.GetString("server.debug_address"),
			CookieName:                v.GetString("server.cookie_name"),
			JWTExpirationDelta:        v.GetDuration("server.jwt_expiration_delta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwt_refresh_expiration_delta"),
			SessionResolveTimeout:     v.GetDuration("server.session_resolve_timeout"),
			ShutdownTimeout:           v.GetDuration("server.shutdown_timeout"),
			FormRateLimit:             v.GetFloat64("server.form_rate_limit"),
			FormRateBurst:             v.GetInt("server.form_rate_burst"),
		},
		Database: databaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.admin_user"),
			AdminPassword: v.GetString("database.admin_password"),
			DisableTLS:    v.GetBool("database.disable_tls"),
		},
		Email: emailConfig{
			APIKey:       v.GetString("email.api_key"),
			StaffAddress: v.GetString("email.staff_address"),
			DigestWindow: v.GetDuration("email.digest_window"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: no files or environment are read.
func NewTestConfig() *Config {
	return &Config{
		Env:                       "TEST",
		Build:                     "test",
		TestMode:                  true,
		WorkDir:                   Getwd(),
		AppName:                   Meta.Name,
		AppURL:                    Meta.URL,
		SecretKey:                 "test-secret",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: serverConfig{
			CookieName:                "lobito_session",
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			SessionResolveTimeout:     time.Second,
			ShutdownTimeout:           time.Second,
			FormRateLimit:             100,
			FormRateBurst:             100,
		},
		Email: emailConfig{
			StaffAddress: "team@test.ao",
			DigestWindow: 50 * time.Millisecond,
		},
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("%s (env=%s build=%s debug=%t)", c.AppName, c.Env, c.Build, c.Debug)
}
