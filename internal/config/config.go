// Package config loads runtime settings from environment variables (prefix
// UAT_) with an optional config.yaml next to the binary.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime knob of the portal.
type Config struct {
	Port   string
	DBPath string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
	FromEmail    string
	FromName     string
	NotifyEmail  string

	TeamsWebhookURL string

	LoginMaxFailures int
	LoginCooldown    time.Duration

	AdminUsername string
	AdminPassword string
}

// Load reads the configuration, applying defaults for anything unset.
func Load() *Config {
	v := viper.New()
	v.SetDefault("port", "8008")
	v.SetDefault("db.path", "uat-portal.db")
	v.SetDefault("jwt.secret", "development-insecure-secret-change-me")
	v.SetDefault("jwt.issuer", "uat-portal-api")
	v.SetDefault("jwt.audience", "uat-portal-clients")
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.tls", true)
	v.SetDefault("smtp.from_email", "uat-portal@localhost")
	v.SetDefault("smtp.from_name", "UAT Portal")
	v.SetDefault("notify.email", "")
	v.SetDefault("notify.teams_webhook_url", "")
	v.SetDefault("login.max_failures", 5)
	v.SetDefault("login.cooldown", "15m")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "change-me-on-first-login")

	v.SetEnvPrefix("UAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // config file is optional

	return &Config{
		Port:             v.GetString("port"),
		DBPath:           v.GetString("db.path"),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTIssuer:        v.GetString("jwt.issuer"),
		JWTAudience:      v.GetString("jwt.audience"),
		SMTPHost:         v.GetString("smtp.host"),
		SMTPPort:         v.GetInt("smtp.port"),
		SMTPUsername:     v.GetString("smtp.username"),
		SMTPPassword:     v.GetString("smtp.password"),
		SMTPUseTLS:       v.GetBool("smtp.tls"),
		FromEmail:        v.GetString("smtp.from_email"),
		FromName:         v.GetString("smtp.from_name"),
		NotifyEmail:      v.GetString("notify.email"),
		TeamsWebhookURL:  v.GetString("notify.teams_webhook_url"),
		LoginMaxFailures: v.GetInt("login.max_failures"),
		LoginCooldown:    v.GetDuration("login.cooldown"),
		AdminUsername:    v.GetString("admin.username"),
		AdminPassword:    v.GetString("admin.password"),
	}
}
