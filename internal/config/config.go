package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
}

// ProvidersConfig holds the credentials for the external vision and pricing
// services. Any key may be empty: the pipeline skips unconfigured providers
// and falls back to its local heuristics.
type ProvidersConfig struct {
	GeminiAPIKey    string
	OpenAIAPIKey    string
	ImaggaAPIKey    string
	ImaggaAPISecret string
	KBBAPIKey       string
	EdmundsAPIKey   string
}

// PipelineConfig tunes the analysis pipeline.
type PipelineConfig struct {
	ProviderTimeout time.Duration
	RunDeadline     time.Duration
	PriceCacheTTL   time.Duration
	LaborRateBody   float64
	LaborRatePaint  float64
	MaxPhotos       int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Storage     StorageConfig
	Providers   ProvidersConfig
	Pipeline    PipelineConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Storage: StorageConfig{
			AccountID:       v.GetString("R2_ACCOUNT_ID"),
			AccessKeyID:     v.GetString("R2_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("R2_SECRET_ACCESS_KEY"),
			Bucket:          v.GetString("R2_BUCKET"),
			PublicBaseURL:   v.GetString("R2_PUBLIC_BASE_URL"),
		},
		Providers: ProvidersConfig{
			GeminiAPIKey:    v.GetString("GEMINI_API_KEY"),
			OpenAIAPIKey:    v.GetString("OPENAI_API_KEY"),
			ImaggaAPIKey:    v.GetString("IMAGGA_API_KEY"),
			ImaggaAPISecret: v.GetString("IMAGGA_API_SECRET"),
			KBBAPIKey:       v.GetString("KBB_API_KEY"),
			EdmundsAPIKey:   v.GetString("EDMUNDS_API_KEY"),
		},
		Pipeline: PipelineConfig{
			ProviderTimeout: v.GetDuration("PROVIDER_TIMEOUT"),
			RunDeadline:     v.GetDuration("ANALYSIS_RUN_DEADLINE"),
			PriceCacheTTL:   v.GetDuration("PRICE_CACHE_TTL"),
			LaborRateBody:   v.GetFloat64("LABOR_RATE_BODY"),
			LaborRatePaint:  v.GetFloat64("LABOR_RATE_PAINT"),
			MaxPhotos:       v.GetInt("MAX_PHOTOS_PER_VEHICLE"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Pipeline.ProviderTimeout == 0 {
		cfg.Pipeline.ProviderTimeout = 15 * time.Second
	}
	if cfg.Pipeline.RunDeadline == 0 {
		cfg.Pipeline.RunDeadline = 2 * time.Minute
	}
	if cfg.Pipeline.PriceCacheTTL == 0 {
		cfg.Pipeline.PriceCacheTTL = time.Hour
	}
	if cfg.Pipeline.LaborRateBody == 0 {
		cfg.Pipeline.LaborRateBody = 85
	}
	if cfg.Pipeline.LaborRatePaint == 0 {
		cfg.Pipeline.LaborRatePaint = 75
	}
	if cfg.Pipeline.MaxPhotos == 0 {
		cfg.Pipeline.MaxPhotos = 20
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
