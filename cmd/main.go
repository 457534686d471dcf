package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	thunderbet "thunderbet_pix_back"
	"thunderbet_pix_back/internal/deposit"
	"thunderbet_pix_back/pkg/handler"
	"thunderbet_pix_back/pkg/pixclient"
	"thunderbet_pix_back/pkg/repository"
	"thunderbet_pix_back/pkg/service"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.Infoln("starting server")
	if err := godotenv.Load(); err != nil {
		logrus.Infof("failed to load .env: %s", err)
	}

	if err := InitConfig(); err != nil {
		logrus.Fatalf("failed to read yaml config: %s", err.Error())
	}
	logrus.Infoln("yaml config loaded")

	db, err := repository.NewPostgresDB(repository.Config{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   viper.GetString("db.dbname"),
		SSLMode:  viper.GetString("db.sslmode"),
	})
	if err != nil {
		logrus.Fatalf("failed to connect to database: %s", err.Error())
	}
	logrus.Info("database connected")

	gateway := pixclient.NewPixHTTPClient(
		viper.GetString("gateway.base_url"),
		os.Getenv("PIX_API_KEY"),
		viper.GetDuration("gateway.timeout"),
	)

	repos := repository.NewRepository(db)
	services := service.NewService(repos, gateway, service.Config{
		Deposit: deposit.Config{
			MinimumAmount:        mustDecimal("pix.deposit_minimum"),
			CodePollInterval:     viper.GetDuration("pix.code_poll_interval"),
			CodePollMaxAttempts:  viper.GetInt("pix.code_poll_max_attempts"),
			StatusPollInterval:   viper.GetDuration("pix.status_poll_interval"),
			MaxTransientFailures: viper.GetInt("pix.max_transient_failures"),
		},
		WithdrawMinimum: mustDecimal("pix.withdraw_minimum"),
		StatusCacheTTL:  viper.GetDuration("pix.status_cache_ttl"),
	})
	handlers := handler.NewHandler(services)

	srv := new(thunderbet.Server)
	if err := srv.Run(os.Getenv("PORT"), handlers.InitRoute()); err != nil {
		logrus.Fatalf("failed to run server: %s", err)
	}
}

func InitConfig() error {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	viper.SetDefault("gateway.timeout", 15*time.Second)
	viper.SetDefault("pix.deposit_minimum", "1.00")
	viper.SetDefault("pix.withdraw_minimum", "50.00")
	viper.SetDefault("pix.code_poll_interval", 2*time.Second)
	viper.SetDefault("pix.code_poll_max_attempts", 10)
	viper.SetDefault("pix.status_poll_interval", 4*time.Second)
	viper.SetDefault("pix.max_transient_failures", 15)
	viper.SetDefault("pix.status_cache_ttl", 3*time.Second)
	return viper.ReadInConfig()
}

func mustDecimal(key string) decimal.Decimal {
	value, err := decimal.NewFromString(viper.GetString(key))
	if err != nil {
		logrus.Fatalf("invalid decimal in config key %s: %s", key, err.Error())
	}
	return value
}
