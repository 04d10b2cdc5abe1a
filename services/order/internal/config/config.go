package config

import "orderhub/pkg/config"

type ServiceConfig struct {
	config.Config
}

func Load() ServiceConfig {
	cfg := config.Load("order")

	config.MustHave("DATABASE_URL", cfg.DatabaseURL)
	config.MustHave("USER_URL", cfg.UserURL)

	return ServiceConfig{Config: cfg}
}
