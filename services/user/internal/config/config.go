package config

import "orderhub/pkg/config"

type ServiceConfig struct {
	config.Config
}

func Load() ServiceConfig {
	cfg := config.Load("user")

	config.MustHave("DATABASE_URL", cfg.DatabaseURL)

	return ServiceConfig{Config: cfg}
}
