package config

import (
	"os"

	pkgconfig "orderhub/pkg/config"
)

type Config struct {
	ListenAddr string
	LogLevel   string
	AuthURL    string
	UserURL    string
	OrderURL   string
	JWTSecret  []byte
}

func Load() *Config {
	base := pkgconfig.Load("gateway")

	cfg := &Config{
		ListenAddr: pkgconfig.EnvDefault("GATEWAY_ADDR", ":8080"),
		LogLevel:   base.LogLevel,
		AuthURL:    os.Getenv("AUTH_URL"),
		UserURL:    os.Getenv("USER_URL"),
		OrderURL:   os.Getenv("ORDER_URL"),
		JWTSecret:  []byte(os.Getenv("JWT_HS256_SECRET")),
	}

	pkgconfig.MustHave("AUTH_URL", cfg.AuthURL)
	pkgconfig.MustHave("USER_URL", cfg.UserURL)
	pkgconfig.MustHave("ORDER_URL", cfg.OrderURL)
	pkgconfig.MustHaveBytes("JWT_HS256_SECRET", cfg.JWTSecret)

	return cfg
}
