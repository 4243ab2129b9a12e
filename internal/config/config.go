// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек всех процессов платформы.
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	SMTPConnection          `yaml:"smtp"`
	PaymentProvider         `yaml:"payment_provider"`
	GoogleOAuth             `yaml:"google_oauth"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" env-default:"50"`
	RateLimitBurst int           `yaml:"rate_limit_burst" env-default:"100"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ структура для настройки подключения к брокеру уведомлений.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"rabbitmq_url"`
	RabbitMQMaxRetries int           `yaml:"rabbitmq_max_retries"`
	RabbitMQRetryDelay time.Duration `yaml:"rabbitmq_retry_delay"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// SMTPConnection структура для отправки почты.
type SMTPConnection struct {
	Host             string `yaml:"host"`
	Port             string `yaml:"port"`
	User             string `yaml:"user"`
	Password         string `yaml:"password"`
	PasswordResetURL string `yaml:"password_reset_url"`
}

// PaymentProvider реквизиты платёжного шлюза.
type PaymentProvider struct {
	APIURL    string `yaml:"api_url"`
	SecretKey string `yaml:"secret_key"`
}

// GoogleOAuth параметры проверки Google ID-токенов.
type GoogleOAuth struct {
	ClientID string `yaml:"client_id"`
}

// MustLoad загружает конфиг из файла, указанного в CONFIG_PATH.
// Завершает процесс при любой ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
