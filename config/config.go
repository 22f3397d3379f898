package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	TransportCloud     = "cloud"
	TransportEvolution = "evolution"
)

type Config struct {
	Port      string
	BaseURL   string
	LogFormat string
	LogLevel  string

	DatabaseURL string

	AdminEmail    string
	AdminName     string
	AdminPassword string

	Notify    NotifyConfig
	WhatsApp  WhatsAppConfig
	Evolution EvolutionConfig

	ConfirmRateLimit float64
	ConfirmRateBurst int

	ElasticsearchURL string
	OSS              OSSConfig
	JaegerEnabled    bool
}

type NotifyConfig struct {
	Transport   string
	CountryCode string
	Timeout     time.Duration
}

type WhatsAppConfig struct {
	APIURL        string
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	AppSecret     string
}

type EvolutionConfig struct {
	APIURL   string
	APIKey   string
	Instance string
}

type OSSConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

func (c OSSConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != ""
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("no .env file loaded, using process environment only")
	}
	return FromEnv()
}

func FromEnv() *Config {
	return &Config{
		Port:      env("PORT", "8080"),
		BaseURL:   strings.TrimRight(env("BASE_URL", "http://localhost:5000"), "/"),
		LogFormat: env("LOG_FORMAT", "text"),
		LogLevel:  env("LOG_LEVEL", "info"),

		DatabaseURL: env("DATABASE_URL", "sqlite:///primor.db"),

		AdminEmail:    env("ADMIN_EMAIL", "admin@primor.com"),
		AdminName:     env("ADMIN_NAME", "Administrador"),
		AdminPassword: env("ADMIN_PASSWORD", "admin123"),

		Notify: NotifyConfig{
			Transport:   strings.ToLower(env("NOTIFY_TRANSPORT", TransportCloud)),
			CountryCode: env("COUNTRY_CODE", "55"),
			Timeout:     envDuration("NOTIFY_TIMEOUT", 30*time.Second),
		},
		WhatsApp: WhatsAppConfig{
			APIURL:        strings.TrimRight(env("WHATSAPP_API_URL", "https://graph.facebook.com/v19.0"), "/"),
			AccessToken:   os.Getenv("WHATSAPP_ACCESS_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("WHATSAPP_VERIFY_TOKEN"),
			AppSecret:     os.Getenv("WHATSAPP_APP_SECRET"),
		},
		Evolution: EvolutionConfig{
			APIURL:   strings.TrimRight(env("EVOLUTION_API_URL", "http://localhost:8080"), "/"),
			APIKey:   os.Getenv("EVOLUTION_API_KEY"),
			Instance: env("EVOLUTION_INSTANCE", "primor"),
		},

		ConfirmRateLimit: envFloat("CONFIRM_RATE_LIMIT", 5),
		ConfirmRateBurst: envInt("CONFIRM_RATE_BURST", 10),

		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
		OSS: OSSConfig{
			Endpoint:  os.ExpandEnv(os.Getenv("OSS_ENDPOINT")),
			AccessKey: os.Getenv("OSS_ACCESS_KEY"),
			SecretKey: os.Getenv("OSS_SECRET_KEY"),
			Bucket:    env("OSS_BUCKET", "primor"),
		},
		JaegerEnabled: os.Getenv("JAEGER_AGENT_HOST") != "" || os.Getenv("JAEGER_ENDPOINT") != "",
	}
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("invalid %s %q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logrus.Warnf("invalid %s %q, using default %v", key, v, fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.Warnf("invalid %s %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
