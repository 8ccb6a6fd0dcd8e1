package main

import (
	"log"
	"time"

	"uat-portal-api/internal/auth"
	"uat-portal-api/internal/cache"
	"uat-portal-api/internal/config"
	"uat-portal-api/internal/cooldown"
	"uat-portal-api/internal/database"
	"uat-portal-api/internal/handlers"
	"uat-portal-api/internal/notify"
	"uat-portal-api/internal/realtime"
	"uat-portal-api/internal/routes"
)

func main() {
	cfg := config.Load()

	auth.Configure(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)

	database.InitDB(cfg.DBPath)
	database.SeedAdmin(cfg.AdminUsername, cfg.AdminPassword)

	// Login cooldown over an injectable TTL store
	store := cache.NewTTLStore[string, int](time.Now)
	handlers.SetLoginLimiter(cooldown.NewLimiter(store, cfg.LoginMaxFailures, cfg.LoginCooldown))

	// Post-commit notification sinks; unconfigured sinks are skipped
	sinks := []notify.Sink{notify.NewHubSink(realtime.GetHub())}
	if email := notify.NewEmailSink(notify.EmailConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		UseTLS:    cfg.SMTPUseTLS,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
		To:        cfg.NotifyEmail,
	}); email != nil {
		sinks = append(sinks, email)
	}
	if webhook := notify.NewWebhookSink(cfg.TeamsWebhookURL); webhook != nil {
		sinks = append(sinks, webhook)
	}
	notify.Init(notify.NewDispatcher(sinks...))

	ginRoutes := routes.SetupRoutes()

	port := ":" + cfg.Port
	log.Printf("Server starting on port %s", port)
	if err := ginRoutes.Run(port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
