package config

import "orderhub/pkg/config"

type ServiceConfig struct {
	config.Config
}

func Load() ServiceConfig {
	cfg := config.Load("auth")

	config.MustHave("DATABASE_URL", cfg.DatabaseURL)
	config.MustHaveBytes("JWT_HS256_SECRET", cfg.JWTSecret)
	config.MustHave("USER_URL", cfg.UserURL)

	return ServiceConfig{Config: cfg}
}
