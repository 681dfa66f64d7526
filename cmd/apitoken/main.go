package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"store-monitor/internal/config"
	"store-monitor/internal/pkg/jwt"
)

func main() {
	subject := flag.String("subject", "", "token subject, e.g. the calling service name")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to API_TOKEN_TTL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if cfg.Auth.APITokenSecret == "" {
		logrus.Fatal("API_TOKEN_SECRET is not set")
	}

	expires := cfg.Auth.APITokenTTL
	if *ttl > 0 {
		expires = *ttl
	}

	tok, err := jwt.NewHMACService(cfg.Auth.APITokenSecret, expires, cfg.App.AppName).GenerateAPIToken(*subject)
	if err != nil {
		logrus.Fatalf("generate token: %v", err)
	}
	fmt.Println(tok)
	logrus.WithFields(logrus.Fields{
		"subject":    *subject,
		"expires_at": time.Now().Add(expires).UTC().Format(time.RFC3339),
	}).Info("token issued")
}
