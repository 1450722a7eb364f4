/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the payment-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort             string `mapstructure:"SERVER_PORT"`
	DatabaseURL            string `mapstructure:"DATABASE_URL"`
	RedisURL               string `mapstructure:"REDIS_URL"`
	RedisSessionPrefix     string `mapstructure:"REDIS_SESSION_PREFIX"`
	RabbitMQURL            string `mapstructure:"RABBITMQ_URL"`
	PaystackAPIBaseURL     string `mapstructure:"PAYSTACK_API_BASE_URL"`
	PaystackSecretKey      string `mapstructure:"PAYSTACK_SECRET_KEY"`
	PaystackWebhookSecret  string `mapstructure:"PAYSTACK_WEBHOOK_SECRET"`
	ClerkJWKSURL           string `mapstructure:"CLERK_JWKS_URL"`
	USSDSessionTTLMinutes  int    `mapstructure:"USSD_SESSION_TTL_MINUTES"`
	RentMinKES             int64  `mapstructure:"RENT_MIN_KES"`
	RentMaxKES             int64  `mapstructure:"RENT_MAX_KES"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_SESSION_PREFIX", "ussd-session")
	viper.SetDefault("PAYSTACK_API_BASE_URL", "https://api.paystack.co")
	viper.SetDefault("USSD_SESSION_TTL_MINUTES", 15)
	viper.SetDefault("RENT_MIN_KES", 1)
	viper.SetDefault("RENT_MAX_KES", 150000)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_SESSION_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("PAYSTACK_API_BASE_URL")
	_ = viper.BindEnv("PAYSTACK_SECRET_KEY")
	_ = viper.BindEnv("PAYSTACK_WEBHOOK_SECRET", "PAYSTACK_WEBHOOK_SECRET", "PAYSTACK_SECRET_KEY")
	_ = viper.BindEnv("CLERK_JWKS_URL")
	_ = viper.BindEnv("USSD_SESSION_TTL_MINUTES")
	_ = viper.BindEnv("RENT_MIN_KES")
	_ = viper.BindEnv("RENT_MAX_KES")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisSessionPrefix = strings.TrimSpace(config.RedisSessionPrefix)
	if config.RedisSessionPrefix == "" {
		config.RedisSessionPrefix = "ussd-session"
	}
	config.PaystackAPIBaseURL = strings.TrimRight(strings.TrimSpace(config.PaystackAPIBaseURL), "/")

	// Paystack signs webhook bodies with the account secret key unless a
	// dedicated webhook secret is configured.
	config.PaystackWebhookSecret = strings.TrimSpace(config.PaystackWebhookSecret)
	if config.PaystackWebhookSecret == "" {
		config.PaystackWebhookSecret = strings.TrimSpace(config.PaystackSecretKey)
	}

	if config.USSDSessionTTLMinutes <= 0 {
		config.USSDSessionTTLMinutes = 15
	}
	if config.RentMinKES <= 0 {
		log.Printf("level=warn component=config msg=\"invalid rent minimum configured; using 1\" rent_min_kes=%d", config.RentMinKES)
		config.RentMinKES = 1
	}
	if config.RentMaxKES <= 0 {
		config.RentMaxKES = 150000
	}
	if config.RentMaxKES < config.RentMinKES {
		log.Printf("level=warn component=config msg=\"rent maximum below minimum; swapping bounds\" rent_min_kes=%d rent_max_kes=%d", config.RentMinKES, config.RentMaxKES)
		config.RentMinKES, config.RentMaxKES = config.RentMaxKES, config.RentMinKES
	}

	return
}
