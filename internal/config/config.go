package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Periodos soportados para el ancla de versión de cada corrida.
const (
	PeriodDaily  = "daily"
	PeriodWeekly = "weekly"
)

// Config centraliza la configuración del job de predicción.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`

	LLMAPIKey      string `env:"LLM_API_KEY,required"`
	LLMBaseURL     string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel       string `env:"LLM_MODEL" envDefault:"gpt-4.1"`
	LLMVisionModel string `env:"LLM_VISION_MODEL" envDefault:"gpt-4.1"`

	MixpanelToken   string `env:"MIXPANEL_TOKEN"`
	MixpanelBaseURL string `env:"MIXPANEL_BASE_URL" envDefault:"https://api.mixpanel.com"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	ConfidenceThreshold float64       `env:"CONFIDENCE_THRESHOLD" envDefault:"0.6"`
	MinTaskCount        int           `env:"MIN_TASK_COUNT" envDefault:"10"`
	SummaryTopK         int           `env:"SUMMARY_TOP_K" envDefault:"10"`
	ActivityWindowDays  int           `env:"ACTIVITY_WINDOW_DAYS" envDefault:"7"`
	VersionPeriod       string        `env:"VERSION_PERIOD" envDefault:"daily"`
	Workers             int           `env:"WORKERS" envDefault:"1"`
	ExternalCallTimeout time.Duration `env:"EXTERNAL_CALL_TIMEOUT" envDefault:"60s"`
	DryRun              bool          `env:"DRY_RUN" envDefault:"true"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.VersionPeriod != PeriodDaily && cfg.VersionPeriod != PeriodWeekly {
		return nil, fmt.Errorf("invalid VERSION_PERIOD %q", cfg.VersionPeriod)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &cfg, nil
}
