package config

import (
	"log/slog"
	"os"

	"github.com/altamart/orders/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// requiredEnvs must be present before the app is allowed to boot.
var requiredEnvs = []string{
	"ORDERS_PG_HOST",
	"ORDERS_PG_PORT",
	"ORDERS_PG_USER",
	"ORDERS_PG_PASSWORD",
	"ORDERS_PG_DB",
	"RABBITMQ_DEFAULT_USER",
	"RABBITMQ_DEFAULT_PASS",
}

func MustInit() {
	if err := godotenv.Load("./.env"); err != nil {
		panic("error while loading .env file: " + err.Error())
	}

	for _, env := range requiredEnvs {
		if os.Getenv(env) == "" {
			panic("config validation error: " + env + " is not set")
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/orders-svc")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}
	SetupLogger()
}

func SetupLogger() {
	handler := logger.NewHandler(nil)
	log := slog.New(handler)
	slog.SetDefault(log)
}
