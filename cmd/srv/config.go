package main

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/readmegen-lab/backend/config"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDurationEnv(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		panic(err)
	}
	return d
}

func (s *srv) loadConfig() {
	// Ignore the error, production deploys configure the process
	// environment directly.
	_ = godotenv.Load()

	s.configs = &config.Configs{
		Env: getEnv("ENV", "dev"),
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			User:     getEnv("MYSQL_USER", "readmegen"),
			Password: getEnv("MYSQL_PASSWORD", "readmegen"),
			Database: getEnv("MYSQL_DATABASE", "readmegen"),
		},
		ApiServer: config.ServerConfigs{
			Host: getEnv("HOST", "localhost"),
			Port: getEnv("PORT", "8080"),
			Cert: getEnv("SERVER_CERT", ""),
			Key:  getEnv("SERVER_KEY", ""),
		},
		Auth: config.AuthConfigs{
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Secret:     getEnv("ACCESS_TOKEN_SECRET", "token-secret"),
				Expiration: getDurationEnv("ACCESS_TOKEN_DURATION", "15m"),
			},
			RefreshToken: config.TokenConfigs{
				Name:       "refresh_token",
				Secret:     getEnv("REFRESH_TOKEN_SECRET", "refresh-token-secret"),
				Expiration: getDurationEnv("REFRESH_TOKEN_DURATION", "336h"),
			},
			TokenCipherSecret: getEnv("TOKEN_CIPHER_SECRET", "token-cipher-secret"),
			GitHub: config.OAuth2Configs{
				Name:         "github",
				ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
				ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
				CallbackURL:  getEnv("GITHUB_CALLBACK_URL", "http://localhost:8080/auth/github/callback"),
				Scopes:       strings.Split(getEnv("GITHUB_SCOPES", "read:user,user:email"), ","),
			},
		},
		Session: config.SessionConfigs{
			Secret: getEnv("AUTH_SESSION_SECRET", "secret"),
			Name:   "auth_session",
		},
		Frontend: config.FrontendConfigs{
			URL:           getEnv("FRONTEND_URL", "http://localhost:3000"),
			LoginPath:     getEnv("FRONTEND_LOGIN_PATH", "/login"),
			DashboardPath: getEnv("FRONTEND_DASHBOARD_PATH", "/dashboard"),
		},
	}
}
