package config

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"webshot/internal/log"
)

const (
	IS_DEV                = "IS_DEV"
	SERVER_ADDR           = "SERVER_ADDR"
	METRICS_ADDR          = "METRICS_ADDR"
	BASIC_AUTH_USER       = "BASIC_AUTH_USER"
	BASIC_AUTH_PASS       = "BASIC_AUTH_PASS"
	INFERENCE_BASE_URL    = "INFERENCE_BASE_URL"
	INFERENCE_API_KEY     = "INFERENCE_API_KEY"
	INFERENCE_MODEL       = "INFERENCE_MODEL"
	INFERENCE_MAX_TOKENS  = "INFERENCE_MAX_TOKENS"
	INFERENCE_TEMPERATURE = "INFERENCE_TEMPERATURE"
	INFERENCE_TOP_P       = "INFERENCE_TOP_P"
	INFERENCE_TOP_K       = "INFERENCE_TOP_K"
	CAPTURE_WORKERS       = "CAPTURE_WORKERS"
	ANALYSIS_WORKERS      = "ANALYSIS_WORKERS"
	SETTLE_DELAY_SECONDS  = "SETTLE_DELAY_SECONDS"
)

type Config struct {
	IsDev                string  `mapstructure:"IS_DEV"`
	ServerAddr           string  `mapstructure:"SERVER_ADDR"`
	MetricsAddr          string  `mapstructure:"METRICS_ADDR"`
	BasicAuthUser        string  `mapstructure:"BASIC_AUTH_USER"`
	BasicAuthPass        string  `mapstructure:"BASIC_AUTH_PASS"`
	InferenceBaseURL     string  `mapstructure:"INFERENCE_BASE_URL"`
	InferenceAPIKey      string  `mapstructure:"INFERENCE_API_KEY"`
	InferenceModel       string  `mapstructure:"INFERENCE_MODEL"`
	InferenceMaxTokens   int     `mapstructure:"INFERENCE_MAX_TOKENS"`
	InferenceTemperature float64 `mapstructure:"INFERENCE_TEMPERATURE"`
	InferenceTopP        float64 `mapstructure:"INFERENCE_TOP_P"`
	InferenceTopK        int     `mapstructure:"INFERENCE_TOP_K"`
	CaptureWorkers       int     `mapstructure:"CAPTURE_WORKERS"`
	AnalysisWorkers      int     `mapstructure:"ANALYSIS_WORKERS"`
	SettleDelaySeconds   int     `mapstructure:"SETTLE_DELAY_SECONDS"`
}

var AppConfig *Config

func LoadEnv() {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		log.Logger.Warn(".env file not found, using environment only")
	}

	v.AutomaticEnv()

	v.SetDefault(IS_DEV, "false")
	v.SetDefault(SERVER_ADDR, ":8080")
	v.SetDefault(METRICS_ADDR, ":8081")
	v.SetDefault(BASIC_AUTH_USER, "")
	v.SetDefault(BASIC_AUTH_PASS, "")
	v.SetDefault(INFERENCE_BASE_URL, "https://api.studio.nebius.com/v1")
	v.SetDefault(INFERENCE_API_KEY, "")
	v.SetDefault(INFERENCE_MODEL, "google/gemma-3-27b-it")
	v.SetDefault(INFERENCE_MAX_TOKENS, 512)
	v.SetDefault(INFERENCE_TEMPERATURE, 0.5)
	v.SetDefault(INFERENCE_TOP_P, 0.9)
	v.SetDefault(INFERENCE_TOP_K, 50)
	v.SetDefault(CAPTURE_WORKERS, 5)
	v.SetDefault(ANALYSIS_WORKERS, 5)
	v.SetDefault(SETTLE_DELAY_SECONDS, 2)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Logger.Fatal("Failed to unmarshal config", zap.Error(err))
	}

	AppConfig = &cfg

	if AppConfig.InferenceAPIKey == "" {
		log.Logger.Warn("INFERENCE_API_KEY is not set; screenshot analysis will be unavailable")
	}
}
